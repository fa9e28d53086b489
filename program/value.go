package program

import (
	"fmt"
	"strings"
)

// Value is a host value: nil, bool, int64, float64, string, *Instance,
// *Closure, *TypeValue or *Invocation.
type Value = any

// ---------------------------------------------------------------------------
// Instance
// ---------------------------------------------------------------------------

// Instance is an object of a user class.
type Instance struct {
	Class    *Class
	TypeArgs []TypeUse
	slots    []Value
}

// NewInstance allocates an instance of a finalized class with all slots
// set to nil.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, slots: make([]Value, c.numSlots)}
}

// Get reads the slot of an instance field.
func (i *Instance) Get(f *Field) Value {
	if f.slot < 0 || f.slot >= len(i.slots) {
		return nil
	}
	return i.slots[f.slot]
}

// Set writes the slot of an instance field.
func (i *Instance) Set(f *Field, v Value) {
	if f.slot < 0 || f.slot >= len(i.slots) {
		return
	}
	i.slots[f.slot] = v
}

func (i *Instance) String() string { return "Instance of '" + i.Class.name + "'" }

// ---------------------------------------------------------------------------
// Closure
// ---------------------------------------------------------------------------

// Closure is a function value. Receiver is bound for instance methods that
// were torn off an object.
type Closure struct {
	Function *Function
	Receiver Value
}

func (c *Closure) String() string { return "Closure: " + c.Function.DisplayName() }

// ---------------------------------------------------------------------------
// TypeValue
// ---------------------------------------------------------------------------

// TypeValue is the runtime representation of a type. It stands in for the
// receiver of failed static and constructor calls.
type TypeValue struct {
	Type TypeUse
}

func (t *TypeValue) String() string { return typeString(t.Type) }

// ---------------------------------------------------------------------------
// Invocation
// ---------------------------------------------------------------------------

// Invocation describes a call that found no target. It is the argument a
// user-level noSuchMethod handler receives.
type Invocation struct {
	MemberName string
	Member     MemberKind
	Positional []Value
}

// NewInvocation builds an invocation from an internal member name and the
// explicit arguments.
func NewInvocation(internalName string, args []Value) *Invocation {
	inv := &Invocation{MemberName: UserName(internalName), Positional: args}
	switch {
	case IsGetterName(internalName):
		inv.Member = MemberGetter
	case IsSetterName(internalName):
		inv.Member = MemberSetter
	default:
		inv.Member = MemberMethod
	}
	return inv
}

func (inv *Invocation) String() string {
	switch inv.Member {
	case MemberGetter:
		return inv.MemberName
	case MemberSetter:
		if len(inv.Positional) > 0 {
			return fmt.Sprintf("%s = %s", inv.MemberName, FormatValue(inv.Positional[0]))
		}
		return inv.MemberName + "="
	}
	return inv.MemberName + "(" + formatArgs(inv.Positional) + ")"
}

// FormatValue renders a value for diagnostics.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}

func formatArgs(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatValue(a)
	}
	return strings.Join(parts, ", ")
}
