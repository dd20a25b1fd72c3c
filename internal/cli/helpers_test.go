package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig disables the interpreter fallback so module lookups stay on the
// project search path.
const testConfig = `python:
  interpreter: ""
watch:
  debounce_ms: 50
scan:
  workers: 2
`

// newTestProject creates a project root with a .pydecl/config.yml and the given files.
func newTestProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	writeTestFile(t, root, filepath.Join(".pydecl", "config.yml"), testConfig)
	for rel, content := range files {
		writeTestFile(t, root, rel, content)
	}
	return root
}

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// runCLI executes the root command against root and captures its output.
func runCLI(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--root", root}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// testWriter forwards writes to t.Log.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
