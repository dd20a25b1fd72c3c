package cli

import (
	"testing"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/stretchr/testify/assert"
)

func TestPyList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		items []string
		want  string
	}{
		{nil, "[]"},
		{[]string{}, "[]"},
		{[]string{"Base"}, "['Base']"},
		{[]string{"Generic[T]", "abc.ABC"}, "['Generic[T]', 'abc.ABC']"},
		{[]string{"it's"}, `["it's"]`},
		{[]string{`say("it's")`}, `['say("it\'s")']`},
		{[]string{`a\b`}, `['a\\b']`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pyList(tt.items))
	}
}

func TestFormatFunction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "run() (line 3)", formatFunction(extraction.FunctionRecord{Name: "run", Line: 3}))
	assert.Equal(t, "async fetch(url, *args) (line 9) (decorators: ['retry'])", formatFunction(extraction.FunctionRecord{
		Name: "fetch", Line: 9, Parameters: []string{"url", "*args"}, Decorators: []string{"retry"}, IsAsync: true,
	}))
}

func TestFormatMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method extraction.MethodRecord
		want   string
	}{
		{"plain", extraction.MethodRecord{Name: "save", Line: 4, Parameters: []string{"self"}}, "save(self) (line 4)"},
		{"async", extraction.MethodRecord{Name: "load", Line: 5, IsAsync: true}, "async load() (line 5)"},
		{
			"staticmethod wins over property",
			extraction.MethodRecord{Name: "x", Line: 6, IsStaticMethod: true, IsProperty: true, Decorators: []string{"staticmethod", "property"}},
			"@staticmethod x() (line 6) (decorators: ['staticmethod', 'property'])",
		},
		{
			"async classmethod",
			extraction.MethodRecord{Name: "make", Line: 7, Parameters: []string{"cls"}, IsAsync: true, IsClassMethod: true, Decorators: []string{"classmethod"}},
			"async @classmethod make(cls) (line 7) (decorators: ['classmethod'])",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMethod(tt.method))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "-12,345", formatNumber(-12345))
}
