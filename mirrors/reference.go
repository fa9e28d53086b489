// Package mirrors builds mirror descriptions of loaded program structure
// and performs reflective invocation by name.
//
// This package contains:
//   - Reference: identity-bearing handles on declarations
//   - Factory: the raw field tuples of every mirror kind
//   - Dispatcher: instance, static, top-level and constructor calls
//   - the classification of reflective failures
//   - Context: one execution context and its endpoint locality query
package mirrors

import "github.com/chazu/mirrorcore/program"

// Reference is an opaque handle on a declaration. It does not own the
// declaration; two references are equal when they carry the same one.
type Reference struct {
	decl program.Declaration
}

// NewReference wraps d. A nil declaration is a programming error.
func NewReference(d program.Declaration) *Reference {
	if d == nil {
		panic("mirrors: NewReference called with a nil declaration")
	}
	return &Reference{decl: d}
}

// Referent returns the wrapped declaration.
func (r *Reference) Referent() program.Declaration { return r.decl }

// Equal reports whether r and other carry the identical declaration.
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.decl == other.decl
}

func (r *Reference) String() string {
	return "Reference(" + program.QualifiedName(r.decl) + ")"
}

// Referent helpers used by the structural queries. A reference of the
// wrong kind is a programming error.

func classOf(r *Reference) *program.Class {
	c, ok := r.decl.(*program.Class)
	if !ok {
		panic("mirrors: reference does not carry a class: " + r.String())
	}
	return c
}

func functionOf(r *Reference) *program.Function {
	fn, ok := r.decl.(*program.Function)
	if !ok {
		panic("mirrors: reference does not carry a function: " + r.String())
	}
	return fn
}

func fieldOf(r *Reference) *program.Field {
	f, ok := r.decl.(*program.Field)
	if !ok {
		panic("mirrors: reference does not carry a field: " + r.String())
	}
	return f
}

func libraryOf(r *Reference) *program.Library {
	lib, ok := r.decl.(*program.Library)
	if !ok {
		panic("mirrors: reference does not carry a library: " + r.String())
	}
	return lib
}

func typeParameterOf(r *Reference) *program.TypeParameter {
	p, ok := r.decl.(*program.TypeParameter)
	if !ok {
		panic("mirrors: reference does not carry a type parameter: " + r.String())
	}
	return p
}
