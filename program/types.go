package program

import "strings"

// ---------------------------------------------------------------------------
// TypeUse: a use of a type, as opposed to its declaration
// ---------------------------------------------------------------------------

// TypeUse is a reference to a type at a use site. The implementations are
// *ClassType, *TypeParameterType, *BoundedType and *MalformedType.
type TypeUse interface {
	String() string
	typeUse()
}

func (*ClassType) typeUse()         {}
func (*TypeParameterType) typeUse() {}
func (*BoundedType) typeUse()       {}
func (*MalformedType) typeUse()     {}

// ClassType is a use of a class, possibly parameterized. Args may hold
// more entries than the class declares: the leading ones are inherited
// from an enclosing generic scope. A nil Args means the raw type.
type ClassType struct {
	Class *Class
	Args  []TypeUse
}

// NewClassType returns a use of cls with the given type arguments.
func NewClassType(cls *Class, args ...TypeUse) *ClassType {
	return &ClassType{Class: cls, Args: args}
}

func (t *ClassType) String() string {
	if t.Class == nil {
		return "<unresolved>"
	}
	if len(t.Args) == 0 {
		return t.Class.name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = typeString(a)
	}
	return t.Class.name + "<" + strings.Join(parts, ", ") + ">"
}

// TypeParameterType is a use of a type parameter.
type TypeParameterType struct {
	Param *TypeParameter
}

func (t *TypeParameterType) String() string { return t.Param.name }

// BoundedType is a type use whose bound is checked at the use site.
type BoundedType struct {
	Type  TypeUse
	Bound TypeUse
}

func (t *BoundedType) String() string {
	return typeString(t.Type) + " extends " + typeString(t.Bound)
}

// MalformedType is a type use that failed to resolve.
type MalformedType struct {
	Reason string
}

func (t *MalformedType) String() string { return "<malformed: " + t.Reason + ">" }

func typeString(t TypeUse) string {
	if t == nil {
		return "dynamic"
	}
	return t.String()
}

// ---------------------------------------------------------------------------
// TypeParameter declarations
// ---------------------------------------------------------------------------

// TypeParameter is a type parameter declared by a generic class.
type TypeParameter struct {
	name  string
	index int
	owner *Class
	Bound TypeUse
}

// Name returns the parameter name.
func (p *TypeParameter) Name() string { return p.name }

// Index returns the declaration position of the parameter.
func (p *TypeParameter) Index() int { return p.index }

// Owner returns the declaring class.
func (p *TypeParameter) Owner() *Class { return p.owner }

// Use returns a type use of this parameter.
func (p *TypeParameter) Use() *TypeParameterType { return &TypeParameterType{Param: p} }
