// Package env implements the chained lexical scopes of the interpreter.
package env

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/pkg"
)

// Errors returned by scope operations.
var (
	ErrRedefinedVariable = pkg.NewError("variable already defined")
	ErrUndefinedVariable = pkg.NewError("undefined variable")
)

// Scope maps names to values and links to its enclosing scope.
// A Scope does not own its parent.
type Scope struct {
	values map[string]value.Value
	parent *Scope
}

// New returns an empty root scope.
func New() *Scope {
	return &Scope{values: make(map[string]value.Value)}
}

// Child returns an empty scope enclosed by s.
func (s *Scope) Child() *Scope {
	return &Scope{values: make(map[string]value.Value), parent: s}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Define binds name in s. A name may be defined once per scope; inner
// scopes may shadow outer definitions.
func (s *Scope) Define(name string, v value.Value) error {
	if _, ok := s.values[name]; ok {
		return ErrRedefinedVariable.
			Detail("'" + name + "'").
			With(slog.String("name", name))
	}

	s.values[name] = v

	return nil
}

// Get looks name up in s and then in each enclosing scope.
func (s *Scope) Get(name string) (value.Value, error) {
	if o := s.owner(name); o != nil {
		return o.values[name], nil
	}

	return nil, undefined(name)
}

// Assign rebinds name in the nearest scope that defines it.
func (s *Scope) Assign(name string, v value.Value) error {
	o := s.owner(name)
	if o == nil {
		return undefined(name)
	}

	o.values[name] = v

	return nil
}

// Has reports whether name is visible from s.
func (s *Scope) Has(name string) bool { return s.owner(name) != nil }

// Names returns the sorted names visible from s, inner shadowing outer.
func (s *Scope) Names() []string {
	seen := make(map[string]struct{})

	for c := s; c != nil; c = c.parent {
		for k := range c.values {
			seen[k] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Locals returns a copy of the bindings defined directly in s.
func (s *Scope) Locals() map[string]value.Value {
	return maps.Clone(s.values)
}

func (s *Scope) owner(name string) *Scope {
	for c := s; c != nil; c = c.parent {
		if _, ok := c.values[name]; ok {
			return c
		}
	}

	return nil
}

func undefined(name string) error {
	return ErrUndefinedVariable.
		Detail("'" + name + "'").
		With(slog.String("name", name))
}
