package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kluctl/go-embed-python/python"
	"github.com/mvp-joe/pydecl/internal/extraction"
)

// findSpecScript asks the import system where a module lives without
// importing the module itself (parent packages are still imported).
const findSpecScript = `import importlib.util, json, sys
try:
    spec = importlib.util.find_spec(sys.argv[1])
except (ImportError, ValueError):
    spec = None
if spec is None:
    print(json.dumps({"found": False}))
else:
    print(json.dumps({"found": True, "origin": spec.origin or "", "has_location": bool(spec.has_location)}))
`

// CommandFactory builds an interpreter invocation for the given arguments.
type CommandFactory func(ctx context.Context, args ...string) (*exec.Cmd, error)

// SystemInterpreter runs the interpreter found at path (or on PATH).
func SystemInterpreter(path string, pythonPath []string) CommandFactory {
	return func(ctx context.Context, args ...string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Env = withPythonPath(os.Environ(), pythonPath)
		return cmd, nil
	}
}

// EmbeddedInterpreter extracts the bundled CPython runtime into runtimeDir
// (reused across runs) and runs commands against it.
func EmbeddedInterpreter(runtimeDir string, pythonPath []string) (CommandFactory, error) {
	ep, err := python.NewEmbeddedPythonWithTmpDir(runtimeDir, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded Python: %w", err)
	}
	for _, p := range pythonPath {
		ep.AddPythonPath(p)
	}

	return func(ctx context.Context, args ...string) (*exec.Cmd, error) {
		base, err := ep.PythonCmd(args...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Python command: %w", err)
		}
		// Rebuild with ctx so resolution honours caller deadlines.
		cmd := exec.CommandContext(ctx, base.Path, base.Args[1:]...)
		cmd.Env = base.Env
		cmd.Dir = base.Dir
		return cmd, nil
	}, nil
}

// InterpreterResolver resolves modules through a live Python import system.
type InterpreterResolver struct {
	command CommandFactory
}

// NewInterpreterResolver creates a resolver backed by command.
func NewInterpreterResolver(command CommandFactory) *InterpreterResolver {
	return &InterpreterResolver{command: command}
}

type specResult struct {
	Found       bool   `json:"found"`
	Origin      string `json:"origin"`
	HasLocation bool   `json:"has_location"`
}

// Resolve implements ModuleResolver.
func (r *InterpreterResolver) Resolve(ctx context.Context, name string) (string, error) {
	if err := validateModuleName(name); err != nil {
		return "", err
	}

	cmd, err := r.command(ctx, "-c", findSpecScript, name)
	if err != nil {
		return "", err
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("python interpreter failed resolving %q: %w", name, err)
		}
		return "", fmt.Errorf("python interpreter failed resolving %q: %w: %s", name, err, msg)
	}

	var spec specResult
	if err := json.Unmarshal(lastLine(stdout.Bytes()), &spec); err != nil {
		return "", fmt.Errorf("failed to decode module spec for %q: %w", name, err)
	}

	return specToPath(name, spec)
}

// specToPath applies the source-file rules to an import spec: built-in and
// frozen modules and compiled extensions have no source; bytecode maps to the
// sibling .py file.
func specToPath(name string, spec specResult) (string, error) {
	if !spec.Found {
		return "", fmt.Errorf("module %q: %w", name, extraction.ErrNotFound)
	}
	if !spec.HasLocation || spec.Origin == "" || spec.Origin == "built-in" || spec.Origin == "frozen" {
		return "", fmt.Errorf("module %q (%s): %w", name, spec.Origin, extraction.ErrNoSource)
	}

	origin := spec.Origin
	if strings.HasSuffix(origin, ".pyc") {
		origin = strings.TrimSuffix(origin, "c")
	}
	if filepath.Ext(origin) != ".py" {
		return "", fmt.Errorf("module %q (%s): %w", name, origin, extraction.ErrNoSource)
	}
	return origin, nil
}

func lastLine(out []byte) []byte {
	out = bytes.TrimSpace(out)
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		return out[i+1:]
	}
	return out
}

func withPythonPath(env []string, pythonPath []string) []string {
	if len(pythonPath) == 0 {
		return env
	}

	joined := strings.Join(pythonPath, string(os.PathListSeparator))
	for i, kv := range env {
		if strings.HasPrefix(kv, "PYTHONPATH=") {
			existing := strings.TrimPrefix(kv, "PYTHONPATH=")
			if existing != "" {
				joined = joined + string(os.PathListSeparator) + existing
			}
			out := append([]string(nil), env...)
			out[i] = "PYTHONPATH=" + joined
			return out
		}
	}
	return append(append([]string(nil), env...), "PYTHONPATH="+joined)
}
