package analysis

// Test Plan for the public API:
// - Each query kind works from source, file, and module with identical results
// - Documented scenarios: classes, functions, methods, not-found
// - File queries fail with ErrNotFound for missing files
// - Module queries fail with ErrNotFound / ErrNoSource from the resolver
// - Syntax errors propagate as ErrSyntax from every entry point
// - Class count equals the number of class statements at every depth
// - Concurrent calls on different inputs are independent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModule = `"""Sample module."""
import functools


class MyClass:
    '''A class with various methods.'''

    def __init__(self, value):
        self.value = value

    def instance_method(self, x):
        return self.value + x

    @classmethod
    def class_method(cls, x):
        return cls(x)

    @staticmethod
    def static_method(x, y):
        return x + y

    @property
    def my_property(self):
        return self.value

    async def async_method(self):
        pass


class AnotherClass(MyClass):
    def other_method(self):
        pass


def simple_function():
    pass


@functools.lru_cache(maxsize=None)
async def cached(*args, **kwargs):
    pass
`

func writeModule(t *testing.T, root, module, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.Join(strings.Split(module, ".")...)+".py")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScenario_Classes(t *testing.T) {
	t.Parallel()

	classes, err := ListClassesFromSource("class A:\n    pass\n\nclass B(A):\n    pass\n")
	require.NoError(t, err)

	assert.Equal(t, []ClassRecord{
		{Name: "A", Line: 1, Bases: []string{}, Decorators: []string{}},
		{Name: "B", Line: 4, Bases: []string{"A"}, Decorators: []string{}},
	}, classes)
}

func TestScenario_Functions(t *testing.T) {
	t.Parallel()

	functions, err := ListFunctionsFromSource("def f(a, b):\n    return a+b\n\nasync def g():\n    pass\n")
	require.NoError(t, err)
	require.Len(t, functions, 2)

	assert.Equal(t, "f", functions[0].Name)
	assert.Equal(t, 1, functions[0].Line)
	assert.Equal(t, []string{"a", "b"}, functions[0].Parameters)
	assert.False(t, functions[0].IsAsync)

	assert.Equal(t, "g", functions[1].Name)
	assert.Equal(t, 4, functions[1].Line)
	assert.Equal(t, []string{}, functions[1].Parameters)
	assert.True(t, functions[1].IsAsync)
}

func TestScenario_Methods(t *testing.T) {
	t.Parallel()

	methods, err := ListMethodsFromSource(sampleModule, "MyClass")
	require.NoError(t, err)
	require.Len(t, methods, 6)

	kinds := make([]string, 0, len(methods))
	for _, m := range methods {
		kinds = append(kinds, m.Name+":"+m.Kind())
	}
	assert.Equal(t, []string{
		"__init__:method",
		"instance_method:method",
		"class_method:classmethod",
		"static_method:staticmethod",
		"my_property:property",
		"async_method:method",
	}, kinds)
	assert.True(t, methods[5].IsAsync)
}

func TestScenario_ClassNotFound(t *testing.T) {
	t.Parallel()

	methods, err := ListMethodsFromSource(sampleModule, "DoesNotExist")
	require.Error(t, err)
	assert.Nil(t, methods)
	assert.ErrorIs(t, err, ErrNotFound)

	var notFound *ClassNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestThreeInputModesAgree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeModule(t, root, "pkg.sample", sampleModule)
	resolver := SearchPathResolver(root)
	ctx := context.Background()

	fromSource, err := ListClassesFromSource(sampleModule)
	require.NoError(t, err)
	fromFile, err := ListClassesFromFile(path)
	require.NoError(t, err)
	fromModule, err := ListClassesFromModule(ctx, resolver, "pkg.sample")
	require.NoError(t, err)
	assert.Equal(t, fromSource, fromFile)
	assert.Equal(t, fromSource, fromModule)

	fnSource, err := ListFunctionsFromSource(sampleModule)
	require.NoError(t, err)
	fnFile, err := ListFunctionsFromFile(path)
	require.NoError(t, err)
	fnModule, err := ListFunctionsFromModule(ctx, resolver, "pkg.sample")
	require.NoError(t, err)
	assert.Equal(t, fnSource, fnFile)
	assert.Equal(t, fnSource, fnModule)
	require.Len(t, fnSource, 2)
	assert.Equal(t, []string{"*args", "**kwargs"}, fnSource[1].Parameters)
	assert.Equal(t, []string{"functools.lru_cache"}, fnSource[1].Decorators)

	mSource, err := ListMethodsFromSource(sampleModule, "AnotherClass")
	require.NoError(t, err)
	mFile, err := ListMethodsFromFile(path, "AnotherClass")
	require.NoError(t, err)
	mModule, err := ListMethodsFromModule(ctx, resolver, "pkg.sample", "AnotherClass")
	require.NoError(t, err)
	assert.Equal(t, mSource, mFile)
	assert.Equal(t, mSource, mModule)

	summarySource, err := AnalyzeSource(sampleModule)
	require.NoError(t, err)
	summaryFile, err := AnalyzeFile(path)
	require.NoError(t, err)
	summaryModule, err := AnalyzeModule(ctx, resolver, "pkg.sample")
	require.NoError(t, err)
	assert.Equal(t, summarySource.Classes, summaryFile.Classes)
	assert.Equal(t, summaryFile, summaryModule)
	assert.Equal(t, path, summaryFile.Origin)
}

func TestFileErrors(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.py")

	_, err := ListClassesFromFile(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ListFunctionsFromFile(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ListMethodsFromFile(missing, "A")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = AnalyzeFile(missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModuleErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ext.so"), nil, 0644))
	resolver := SearchPathResolver(root)
	ctx := context.Background()

	_, err := ListClassesFromModule(ctx, resolver, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ListFunctionsFromModule(ctx, resolver, "ext")
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestSyntaxErrorsPropagate(t *testing.T) {
	t.Parallel()

	broken := "class Broken(:\n    pass\n"
	path := writeModule(t, t.TempDir(), "broken", broken)

	_, err := ListClassesFromSource(broken)
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ListFunctionsFromFile(path)
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ListMethodsFromSource(broken, "Broken")
	assert.ErrorIs(t, err, ErrSyntax, "syntax errors win over class lookup")

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "<string>", syntaxErr.Origin)
}

func TestClassCountMatchesClassStatements(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	expected := 0
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "class Top%d:\n", i)
		fmt.Fprintf(&b, "    class Mid%d:\n", i)
		fmt.Fprintf(&b, "        def m(self):\n")
		fmt.Fprintf(&b, "            class Deep%d: pass\n", i)
		expected += 3
	}

	classes, err := ListClassesFromSource(b.String())
	require.NoError(t, err)
	assert.Len(t, classes, expected)

	for i := 1; i < len(classes); i++ {
		assert.Less(t, classes[i-1].Line, classes[i].Line, "records must be in source order")
	}
}

func TestConcurrentCalls(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	counts := make([]int, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var b strings.Builder
			for j := 0; j <= i; j++ {
				fmt.Fprintf(&b, "def f%d(): pass\n", j)
			}
			functions, err := ListFunctionsFromSource(b.String())
			errs[i] = err
			counts[i] = len(functions)
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, i+1, counts[i])
	}
}
