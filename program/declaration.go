package program

import "strings"

// ---------------------------------------------------------------------------
// Declaration: the closed set of program entities
// ---------------------------------------------------------------------------

// Declaration is one finalized program entity. The implementations are
// *Class, *Function, *Field, *Library and *TypeParameter; no other type
// satisfies the interface.
type Declaration interface {
	// Name returns the internal name of the declaration.
	Name() string
	declaration()
}

func (*Class) declaration()         {}
func (*Function) declaration()      {}
func (*Field) declaration()         {}
func (*Library) declaration()       {}
func (*TypeParameter) declaration() {}

// PrivatePrefix marks library-private names.
const PrivatePrefix = "_"

// IsPrivate reports whether name is library-private. Accessor and
// constructor prefixes are ignored.
func IsPrivate(name string) bool {
	return strings.HasPrefix(UserName(name), PrivatePrefix)
}

// ---------------------------------------------------------------------------
// Internal naming conventions
// ---------------------------------------------------------------------------

const (
	getterPrefix = "get:"
	setterPrefix = "set:"

	// ConstructorSeparator joins a class name and a constructor name into
	// the label under which the constructor is stored.
	ConstructorSeparator = "."
)

// GetterName returns the internal name of the getter for name.
func GetterName(name string) string { return getterPrefix + name }

// SetterName returns the internal name of the setter for name.
func SetterName(name string) string { return setterPrefix + name }

// IsGetterName reports whether name is an internal getter name.
func IsGetterName(name string) bool { return strings.HasPrefix(name, getterPrefix) }

// IsSetterName reports whether name is an internal setter name.
func IsSetterName(name string) bool { return strings.HasPrefix(name, setterPrefix) }

// UserName strips accessor prefixes from an internal name.
func UserName(name string) string {
	switch {
	case IsGetterName(name):
		return name[len(getterPrefix):]
	case IsSetterName(name):
		return name[len(setterPrefix):]
	}
	return name
}

// ConstructorLabel builds the internal label of a constructor. The unnamed
// constructor of class A is "A." and the constructor A.named is "A.named".
// Ordinary name resolution never produces such a label.
func ConstructorLabel(className, constructorName string) string {
	return className + ConstructorSeparator + constructorName
}

// QualifiedName returns a stable, human-readable key for a declaration,
// e.g. "app:main::Point.get:x".
func QualifiedName(d Declaration) string {
	switch d := d.(type) {
	case *Library:
		return d.URL()
	case *Class:
		if d.library == nil {
			return d.name
		}
		return d.library.URL() + "::" + d.name
	case *Function:
		return ownerKey(d.owner) + "." + d.name
	case *Field:
		return ownerKey(d.owner) + "." + d.name
	case *TypeParameter:
		if d.owner == nil {
			return d.name
		}
		return QualifiedName(d.owner) + "<" + d.name + ">"
	}
	return ""
}

func ownerKey(owner Declaration) string {
	if owner == nil {
		return "?"
	}
	return QualifiedName(owner)
}
