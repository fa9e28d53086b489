package mirrors

import (
	"errors"
	"fmt"

	"github.com/chazu/mirrorcore/program"
)

// Category is the kind of a reflective call.
type Category int

const (
	InstanceMethod Category = iota
	InstanceGetter
	InstanceSetter
	StaticMethod
	StaticGetter
	StaticSetter
	TopLevelMethod
	TopLevelGetter
	TopLevelSetter
	Constructor
)

var categoryNames = [...]string{
	InstanceMethod: "instance method",
	InstanceGetter: "instance getter",
	InstanceSetter: "instance setter",
	StaticMethod:   "static method",
	StaticGetter:   "static getter",
	StaticSetter:   "static setter",
	TopLevelMethod: "top-level method",
	TopLevelGetter: "top-level getter",
	TopLevelSetter: "top-level setter",
	Constructor:    "constructor",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Kinds splits the category into the call and member kinds of the
// invocation type encoding.
func (c Category) Kinds() (program.CallKind, program.MemberKind) {
	switch c {
	case InstanceMethod:
		return program.CallDynamic, program.MemberMethod
	case InstanceGetter:
		return program.CallDynamic, program.MemberGetter
	case InstanceSetter:
		return program.CallDynamic, program.MemberSetter
	case StaticMethod:
		return program.CallStatic, program.MemberMethod
	case StaticGetter:
		return program.CallStatic, program.MemberGetter
	case StaticSetter:
		return program.CallStatic, program.MemberSetter
	case TopLevelMethod:
		return program.CallTopLevel, program.MemberMethod
	case TopLevelGetter:
		return program.CallTopLevel, program.MemberGetter
	case TopLevelSetter:
		return program.CallTopLevel, program.MemberSetter
	}
	return program.CallConstructor, program.MemberMethod
}

// Encode returns the packed invocation type, (call << 3) | member.
func (c Category) Encode() int {
	return program.EncodeInvocationType(c.Kinds())
}

// FailureDescriptor describes a reflective call that found no acceptable
// target. Receiver is the synthesized type value for static and
// constructor calls and nil for top-level calls. ParameterNames is set
// only when a same-named declaration rejected the argument count.
type FailureDescriptor struct {
	Receiver       program.Value
	MemberName     string
	Category       Category
	Arguments      []program.Value
	ParameterNames []string
}

// Err converts the descriptor into the error returned to the caller.
func (d *FailureDescriptor) Err() error {
	return &program.NoSuchMethodError{
		Receiver:       d.Receiver,
		MemberName:     d.MemberName,
		InvocationType: d.Category.Encode(),
		Arguments:      d.Arguments,
		ParameterNames: d.ParameterNames,
	}
}

// CompilationReason says why a reflective call failed with a
// compilation-shaped error.
type CompilationReason int

const (
	// Ambiguity: two imports define the requested top-level name.
	Ambiguity CompilationReason = iota
	// FinalField: a write targeted a final field or variable.
	FinalField
	// Deferred: the target failed to compile earlier.
	Deferred
)

func (r CompilationReason) String() string {
	switch r {
	case Ambiguity:
		return "ambiguity"
	case FinalField:
		return "final field"
	case Deferred:
		return "deferred compilation failure"
	}
	return fmt.Sprintf("CompilationReason(%d)", int(r))
}

// MirroredCompilationError is a compilation failure surfaced through a
// reflective call. It carries the message only.
type MirroredCompilationError struct {
	Reason  CompilationReason
	Message string
}

func (e *MirroredCompilationError) Error() string {
	return "MirroredCompilationError: " + e.Message
}

func ambiguityError(message string) error {
	return &MirroredCompilationError{Reason: Ambiguity, Message: message}
}

func finalFieldError(format string, name string) error {
	return &MirroredCompilationError{Reason: FinalField, Message: fmt.Sprintf(format, name)}
}

// classify translates a failure leaving a reflective call. Deferred
// compilation failures are re-wrapped; everything else passes unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *program.CompileError
	if errors.As(err, &ce) {
		return &MirroredCompilationError{Reason: Deferred, Message: ce.Message}
	}
	return err
}
