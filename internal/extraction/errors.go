package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates source text that the Python grammar cannot parse
	ErrSyntax = errors.New("invalid python syntax")

	// ErrNotFound indicates a missing file, class, or module
	ErrNotFound = errors.New("not found")

	// ErrNoSource indicates a module that resolves but has no Python source file
	// (built-in, frozen, or compiled extension). It matches ErrNotFound.
	ErrNoSource = fmt.Errorf("no python source available: %w", ErrNotFound)
)

// SyntaxError reports the first position at which parsing failed.
type SyntaxError struct {
	Origin string
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Origin, e.Line, e.Column, ErrSyntax)
	}
	return fmt.Sprintf("%s:%d:%d: %s near %q", e.Origin, e.Line, e.Column, ErrSyntax, e.Near)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ClassNotFoundError is returned by method queries when no class with the
// requested name exists anywhere in the source.
type ClassNotFoundError struct {
	ClassName string
	Origin    string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class %q %s in %s", e.ClassName, ErrNotFound, e.Origin)
}

func (e *ClassNotFoundError) Unwrap() error { return ErrNotFound }
