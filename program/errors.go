package program

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicInitialization is returned when a static field is read while
	// its own initializer is running.
	ErrCyclicInitialization = errors.New("cyclic initialization of field")

	// ErrStackOverflow is returned when the call depth limit is exceeded.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrAbstractMethod is returned when a function without a body runs.
	ErrAbstractMethod = errors.New("abstract method invoked")
)

// CompileError is a compilation failure that was deferred until the
// failing code was first run.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return "compile error: " + e.Message }

// AbstractInstantiationError is returned when a generative constructor of
// an abstract class is invoked.
type AbstractInstantiationError struct {
	ClassName string
}

func (e *AbstractInstantiationError) Error() string {
	return fmt.Sprintf("cannot instantiate abstract class '%s'", e.ClassName)
}

// ---------------------------------------------------------------------------
// Invocation type encoding
// ---------------------------------------------------------------------------

// CallKind says how a member was reached.
type CallKind int

const (
	CallStatic CallKind = iota
	CallSuper
	CallDynamic
	CallConstructor
	CallTopLevel
)

// MemberKind says what kind of member was requested.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberGetter
	MemberSetter
	MemberField
)

const invocationTypeBits = 3

// EncodeInvocationType packs a call kind and member kind into one integer.
func EncodeInvocationType(call CallKind, member MemberKind) int {
	return int(call)<<invocationTypeBits | int(member)
}

// DecodeInvocationType unpacks an encoded invocation type.
func DecodeInvocationType(encoded int) (CallKind, MemberKind) {
	return CallKind(encoded >> invocationTypeBits), MemberKind(encoded & (1<<invocationTypeBits - 1))
}

// ---------------------------------------------------------------------------
// NoSuchMethodError
// ---------------------------------------------------------------------------

// NoSuchMethodError reports a call that resolved to no acceptable target.
// ParameterNames is non-nil only when a same-named declaration existed but
// rejected the argument count.
type NoSuchMethodError struct {
	Receiver       Value
	MemberName     string
	InvocationType int
	Arguments      []Value
	ParameterNames []string
}

func (e *NoSuchMethodError) Error() string {
	call, member := DecodeInvocationType(e.InvocationType)
	var b strings.Builder
	b.WriteString("NoSuchMethodError: ")
	switch call {
	case CallStatic:
		fmt.Fprintf(&b, "no static %s '%s' declared in class '%s'", memberWord(member), e.MemberName, FormatValue(e.Receiver))
	case CallConstructor:
		fmt.Fprintf(&b, "no constructor '%s' declared in class '%s'", e.MemberName, FormatValue(e.Receiver))
	case CallTopLevel:
		fmt.Fprintf(&b, "no top-level %s '%s' declared", memberWord(member), e.MemberName)
	default:
		fmt.Fprintf(&b, "class '%s' has no instance %s '%s'", receiverClassName(e.Receiver), memberWord(member), e.MemberName)
	}
	if e.ParameterNames != nil {
		fmt.Fprintf(&b, " with matching arguments; found: %s(%s)", e.MemberName, strings.Join(e.ParameterNames, ", "))
	}
	if len(e.Arguments) > 0 {
		fmt.Fprintf(&b, "; tried calling with: (%s)", formatArgs(e.Arguments))
	}
	return b.String()
}

func memberWord(m MemberKind) string {
	switch m {
	case MemberGetter:
		return "getter"
	case MemberSetter:
		return "setter"
	case MemberField:
		return "field"
	}
	return "method"
}

func receiverClassName(v Value) string {
	switch v := v.(type) {
	case *Instance:
		return v.Class.name
	case nil:
		return "Null"
	}
	return fmt.Sprintf("%T", v)
}
