package parsers

// Test Plan for PythonParser:
// - Classes: top-level and nested classes, bases rendered verbatim, keyword args excluded
// - Functions: module-level and nested plain functions, async flag, methods never leak
// - Methods: direct members only, modifier flags from decorator final segments
// - Missing class reports ClassNotFoundError, empty class returns empty slice
// - Parameter order: positional, default, *args, keyword-only, **kwargs; separators skipped
// - Typed and typed-default parameters keep only their names
// - Decorators: call decorators keep only the callee, attribute chains are dotted
// - Decorators: chained calls reduce to the innermost callee, other expressions keep their text
// - Line numbers point at the def/class keyword even when decorated
// - Definitions inside if/try blocks stay in their enclosing scope
// - Invalid syntax fails with SyntaxError and no records
// - Python 2 print/exec statements fail with SyntaxError; print() calls still parse
// - Empty source yields empty (non-nil) slices
// - Repeated and concurrent parses return identical results

import (
	"errors"
	"sync"
	"testing"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) *Declarations {
	t.Helper()

	decls, err := NewPythonParser().Parse([]byte(src), "<test>")
	require.NoError(t, err)
	require.NotNil(t, decls)
	return decls
}

func TestPythonParser_Classes(t *testing.T) {
	t.Parallel()

	decls := parseSource(t, "class A:\n    pass\n\nclass B(A):\n    pass\n")

	assert.Equal(t, []extraction.ClassRecord{
		{Name: "A", Line: 1, Bases: []string{}, Decorators: []string{}},
		{Name: "B", Line: 4, Bases: []string{"A"}, Decorators: []string{}},
	}, decls.Classes())
}

func TestPythonParser_ClassBasesVerbatim(t *testing.T) {
	t.Parallel()

	src := `import abc
from typing import Generic, TypeVar

T = TypeVar("T")

class Box(Generic[T], abc.ABC, metaclass=abc.ABCMeta):
    pass

class Empty():
    pass
`
	classes := parseSource(t, src).Classes()
	require.Len(t, classes, 2)

	assert.Equal(t, "Box", classes[0].Name)
	assert.Equal(t, 6, classes[0].Line)
	assert.Equal(t, []string{"Generic[T]", "abc.ABC"}, classes[0].Bases)

	assert.Equal(t, "Empty", classes[1].Name)
	assert.NotNil(t, classes[1].Bases)
	assert.Empty(t, classes[1].Bases)
}

func TestPythonParser_NestedClassesAtEveryDepth(t *testing.T) {
	t.Parallel()

	src := `class Outer:
    class Inner:
        class Deepest:
            pass

def factory():
    class Local:
        pass
    return Local
`
	classes := parseSource(t, src).Classes()

	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Outer", "Inner", "Deepest", "Local"}, names)
	assert.Equal(t, []int{1, 2, 3, 7}, []int{classes[0].Line, classes[1].Line, classes[2].Line, classes[3].Line})
}

func TestPythonParser_DecoratedClass(t *testing.T) {
	t.Parallel()

	src := `from dataclasses import dataclass

@dataclass(frozen=True)
@register
class Point:
    x: int
    y: int
`
	classes := parseSource(t, src).Classes()
	require.Len(t, classes, 1)

	assert.Equal(t, 5, classes[0].Line, "line should be the class keyword, not the first decorator")
	assert.Equal(t, []string{"dataclass", "register"}, classes[0].Decorators)
}

func TestPythonParser_Functions(t *testing.T) {
	t.Parallel()

	decls := parseSource(t, "def f(a, b):\n    return a+b\n\nasync def g():\n    pass\n")

	assert.Equal(t, []extraction.FunctionRecord{
		{Name: "f", Line: 1, Parameters: []string{"a", "b"}, Decorators: []string{}, IsAsync: false},
		{Name: "g", Line: 4, Parameters: []string{}, Decorators: []string{}, IsAsync: true},
	}, decls.Functions())
}

func TestPythonParser_FunctionsExcludeMethods(t *testing.T) {
	t.Parallel()

	src := `def top():
    def inner():
        pass
    return inner

class Service:
    def method(self):
        def helper():
            pass
        return helper

    @staticmethod
    def build():
        pass

def after():
    pass
`
	functions := parseSource(t, src).Functions()

	names := make([]string, 0, len(functions))
	for _, f := range functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"top", "inner", "after"}, names)
}

func TestPythonParser_Methods(t *testing.T) {
	t.Parallel()

	src := `class MyClass:
    def __init__(self):
        pass

    def instance_method(self, x):
        return x * 2

    @staticmethod
    def static_method():
        pass
`
	methods, err := parseSource(t, src).Methods("MyClass")
	require.NoError(t, err)
	require.Len(t, methods, 3)

	assert.Equal(t, "__init__", methods[0].Name)
	assert.Equal(t, []string{"self"}, methods[0].Parameters)
	assert.Equal(t, "instance_method", methods[1].Name)
	assert.Equal(t, []string{"self", "x"}, methods[1].Parameters)
	assert.Equal(t, "static_method", methods[2].Name)
	assert.Equal(t, 9, methods[2].Line)

	for i, m := range methods {
		assert.Equal(t, i == 2, m.IsStaticMethod, "IsStaticMethod for %s", m.Name)
		assert.False(t, m.IsClassMethod)
		assert.False(t, m.IsProperty)
	}
}

func TestPythonParser_MethodModifiers(t *testing.T) {
	t.Parallel()

	src := `class Model:
    @classmethod
    def create(cls, value):
        return cls(value)

    @property
    def name(self):
        return self._name

    @name.setter
    def name(self, value):
        self._name = value

    @abc.property
    def dotted(self):
        pass

    @not_a_property
    def impostor(self):
        pass

    @functools.lru_cache(maxsize=None)
    @staticmethod
    def cached():
        pass

    async def fetch(self):
        pass

    def plain(self):
        pass
`
	methods, err := parseSource(t, src).Methods("Model")
	require.NoError(t, err)
	require.Len(t, methods, 8)

	tests := []struct {
		name       string
		decorators []string
		static     bool
		class      bool
		property   bool
		async      bool
	}{
		{name: "create", decorators: []string{"classmethod"}, class: true},
		{name: "name", decorators: []string{"property"}, property: true},
		{name: "name", decorators: []string{"name.setter"}},
		{name: "dotted", decorators: []string{"abc.property"}, property: true},
		{name: "impostor", decorators: []string{"not_a_property"}},
		{name: "cached", decorators: []string{"functools.lru_cache", "staticmethod"}, static: true},
		{name: "fetch", decorators: []string{}, async: true},
		{name: "plain", decorators: []string{}},
	}

	for i, tt := range tests {
		m := methods[i]
		assert.Equal(t, tt.name, m.Name)
		assert.Equal(t, tt.decorators, m.Decorators, "decorators of %s", tt.name)
		assert.Equal(t, tt.static, m.IsStaticMethod, "IsStaticMethod of %s", tt.name)
		assert.Equal(t, tt.class, m.IsClassMethod, "IsClassMethod of %s", tt.name)
		assert.Equal(t, tt.property, m.IsProperty, "IsProperty of %s", tt.name)
		assert.Equal(t, tt.async, m.IsAsync, "IsAsync of %s", tt.name)
	}
}

func TestPythonParser_MethodsDirectMembersOnly(t *testing.T) {
	t.Parallel()

	src := `class Outer:
    def a(self):
        def nested():
            pass

    class Inner:
        def inner_method(self):
            pass

    def b(self):
        pass

class Other:
    def c(self):
        pass
`
	decls := parseSource(t, src)

	outer, err := decls.Methods("Outer")
	require.NoError(t, err)
	require.Len(t, outer, 2)
	assert.Equal(t, "a", outer[0].Name)
	assert.Equal(t, "b", outer[1].Name)

	inner, err := decls.Methods("Inner")
	require.NoError(t, err)
	require.Len(t, inner, 1)
	assert.Equal(t, "inner_method", inner[0].Name)
	assert.Equal(t, 7, inner[0].Line)
}

func TestPythonParser_MethodsInsideConditionalBlocks(t *testing.T) {
	t.Parallel()

	src := `class Compat:
    if PY3:
        def text(self):
            pass
    else:
        def text(self):
            pass

    try:
        def fast(self):
            pass
    except ImportError:
        pass
`
	methods, err := parseSource(t, src).Methods("Compat")
	require.NoError(t, err)

	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"text", "text", "fast"}, names)
}

func TestPythonParser_MethodsClassNotFound(t *testing.T) {
	t.Parallel()

	decls := parseSource(t, "class Present:\n    pass\n")

	methods, err := decls.Methods("DoesNotExist")
	require.Error(t, err)
	assert.Nil(t, methods)
	assert.True(t, errors.Is(err, extraction.ErrNotFound))

	var notFound *extraction.ClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "DoesNotExist", notFound.ClassName)
	assert.Equal(t, "<test>", notFound.Origin)

	// Present but without methods is not an error
	methods, err = decls.Methods("Present")
	require.NoError(t, err)
	assert.NotNil(t, methods)
	assert.Empty(t, methods)
}

func TestPythonParser_ParameterOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "all kinds",
			src:      "def f(a, b=1, *args, c, **kwargs): ...\n",
			expected: []string{"a", "b", "*args", "c", "**kwargs"},
		},
		{
			name:     "typed",
			src:      "def f(self, x: int, y: str = \"a\", *args: int, z: bool = False, **kw: Any) -> None: ...\n",
			expected: []string{"self", "x", "y", "*args", "z", "**kw"},
		},
		{
			name:     "separators",
			src:      "def f(a, /, b, *, c): ...\n",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty",
			src:      "def f(): ...\n",
			expected: []string{},
		},
		{
			name:     "multiline with comments",
			src:      "def f(\n    a,  # first\n    b,\n    **options,\n):\n    pass\n",
			expected: []string{"a", "b", "**options"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			functions := parseSource(t, tt.src).Functions()
			require.Len(t, functions, 1)
			assert.Equal(t, tt.expected, functions[0].Parameters)
		})
	}
}

func TestPythonParser_DecoratedLineIsKeywordLine(t *testing.T) {
	t.Parallel()

	src := `import app

@app.route("/x")
@login_required
async def handler(request):
    pass
`
	functions := parseSource(t, src).Functions()
	require.Len(t, functions, 1)

	assert.Equal(t, 5, functions[0].Line)
	assert.True(t, functions[0].IsAsync)
	assert.Equal(t, []string{"app.route", "login_required"}, functions[0].Decorators)
}

func TestPythonParser_DecoratorExpressions(t *testing.T) {
	t.Parallel()

	src := `@handlers[0]
def indexed():
    pass

@(lambda f: f)
def wrapped():
    pass

@g()()
def curried():
    pass

@registry.get("x").bind(1)
def chained():
    pass

@app.routes[0].get
def mixed():
    pass
`
	functions := parseSource(t, src).Functions()
	require.Len(t, functions, 5)

	assert.Equal(t, []string{"handlers[0]"}, functions[0].Decorators)
	assert.Equal(t, []string{"(lambda f: f)"}, functions[1].Decorators)
	assert.Equal(t, []string{"g"}, functions[2].Decorators)
	assert.Equal(t, []string{`registry.get("x").bind`}, functions[3].Decorators)
	assert.Equal(t, []string{"app.routes[0].get"}, functions[4].Decorators)
}

func TestPythonParser_SyntaxError(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()

	decls, err := parser.Parse([]byte("def f(:\n    pass\n"), "broken.py")
	require.Error(t, err)
	assert.Nil(t, decls)
	assert.True(t, errors.Is(err, extraction.ErrSyntax))

	var syntaxErr *extraction.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "broken.py", syntaxErr.Origin)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Contains(t, err.Error(), "broken.py:1:")

	_, err = parser.Parse([]byte("class A:\n    pass\n\nx = (1, 2\n"), "unclosed.py")
	assert.ErrorIs(t, err, extraction.ErrSyntax)
}

func TestPythonParser_Python2StatementsRejected(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()

	tests := []struct {
		name string
		src  string
		line int
	}{
		{"print statement", "print 'hello'\n", 1},
		{"print chevron", "import sys\nprint >>sys.stderr, 'oops'\n", 2},
		{"exec statement", "def run(code):\n    exec code\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, err := parser.Parse([]byte(tt.src), "legacy.py")
			assert.Nil(t, decls)

			var syntaxErr *extraction.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.ErrorIs(t, err, extraction.ErrSyntax)
			assert.Equal(t, tt.line, syntaxErr.Line)
		})
	}

	decls, err := parser.Parse([]byte("def main():\n    print('hello', end='')\n    exec(compile('1', 'x', 'eval'))\n"), "modern.py")
	require.NoError(t, err)
	require.Len(t, decls.Functions(), 1)
	assert.Equal(t, "main", decls.Functions()[0].Name)
}

func TestPythonParser_EmptySource(t *testing.T) {
	t.Parallel()

	decls := parseSource(t, "")

	assert.NotNil(t, decls.Classes())
	assert.Empty(t, decls.Classes())
	assert.NotNil(t, decls.Functions())
	assert.Empty(t, decls.Functions())
}

func TestPythonParser_Idempotent(t *testing.T) {
	t.Parallel()

	src := "class A:\n    def m(self):\n        pass\n\ndef f(x, *y):\n    pass\n"
	parser := NewPythonParser()

	first, err := parser.Parse([]byte(src), "a.py")
	require.NoError(t, err)
	second, err := parser.Parse([]byte(src), "a.py")
	require.NoError(t, err)

	assert.Equal(t, first.Classes(), second.Classes())
	assert.Equal(t, first.Functions(), second.Functions())
	assert.Equal(t, first.Summary(), second.Summary())
}

func TestPythonParser_ConcurrentParse(t *testing.T) {
	t.Parallel()

	src := []byte("class A:\n    @property\n    def p(self):\n        pass\n")
	parser := NewPythonParser()

	var wg sync.WaitGroup
	results := make([][]extraction.MethodRecord, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decls, err := parser.Parse(src, "a.py")
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = decls.Methods("A")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.True(t, results[0][0].IsProperty)
}

func TestPythonParser_RecordsAreIndependentCopies(t *testing.T) {
	t.Parallel()

	decls := parseSource(t, "@deco\nclass A(Base):\n    pass\n")

	first := decls.Classes()
	first[0].Bases[0] = "Mutated"
	first[0].Decorators[0] = "mutated"

	second := decls.Classes()
	assert.Equal(t, []string{"Base"}, second[0].Bases)
	assert.Equal(t, []string{"deco"}, second[0].Decorators)
}
