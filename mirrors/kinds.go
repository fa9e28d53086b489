package mirrors

import "fmt"

// Kind names a mirror kind.
type Kind int

const (
	ClassKind Kind = iota
	LibraryKind
	MethodKind
	VariableKind
	TypeVariableKind
	TypedefKind
	FunctionTypeKind
	ParameterKind
	InstanceKind
	ClosureKind
	ExecutionContextKind
	MirrorSystemKind
	SpecialTypeKind
)

var kindNames = [...]string{
	ClassKind:            "Class",
	LibraryKind:          "Library",
	MethodKind:           "Method",
	VariableKind:         "Variable",
	TypeVariableKind:     "TypeVariable",
	TypedefKind:          "Typedef",
	FunctionTypeKind:     "FunctionType",
	ParameterKind:        "Parameter",
	InstanceKind:         "Instance",
	ClosureKind:          "Closure",
	ExecutionContextKind: "ExecutionContext",
	MirrorSystemKind:     "MirrorSystem",
	SpecialTypeKind:      "SpecialType",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Tuple is the raw field payload of one mirror. Order and length are
// fixed per kind; see the index constants below.
type Tuple []any

// Object is a mirror built by a Presenter. It is opaque to this package.
type Object any

// Tuple layouts.
const (
	// Class: [ref, type, name, isGeneric]
	ClassRef = iota
	ClassType
	ClassName
	ClassIsGeneric
	classLen
)

const (
	// FunctionType: [ref, type]
	FunctionTypeRef = iota
	FunctionTypeType
	functionTypeLen
)

const (
	// Typedef: [ref, type, name, owner]
	TypedefRef = iota
	TypedefType
	TypedefName
	TypedefOwner
	typedefLen
)

const (
	// SpecialType: [name]
	SpecialTypeName = iota
	specialTypeLen
)

const (
	// Library: [ref, name, url]
	LibraryRef = iota
	LibraryName
	LibraryURL
	libraryLen
)

const (
	// Method: [ref, name, owner, isStatic, isAbstract, isGetter, isSetter,
	// isConstructor, followed by four constructor subkind slots that are
	// always false]
	MethodRef = iota
	MethodName
	MethodOwner
	MethodIsStatic
	MethodIsAbstract
	MethodIsGetter
	MethodIsSetter
	MethodIsConstructor
	MethodIsConstConstructor
	MethodIsGenerativeConstructor
	MethodIsRedirectingConstructor
	MethodIsFactoryConstructor
	methodLen
)

const (
	// Variable: [ref, name, owner, type, isStatic, isFinal]. The type slot
	// is always nil; it is queried on demand through VariableType.
	VariableRef = iota
	VariableName
	VariableOwner
	VariableType
	VariableIsStatic
	VariableIsFinal
	variableLen
)

const (
	// TypeVariable: [ref, name, owner]
	TypeVariableRef = iota
	TypeVariableName
	TypeVariableOwner
	typeVariableLen
)

const (
	// Parameter: [ref of the function, name, owner, position, isOptional]
	ParameterRef = iota
	ParameterName
	ParameterOwner
	ParameterPosition
	ParameterIsOptional
	parameterLen
)

const (
	// Instance: [reflectee, ref of the class]
	InstanceReflectee = iota
	InstanceClassRef
	instanceLen
)

const (
	// Closure: [reflectee, ref of the function]
	ClosureReflectee = iota
	ClosureFunctionRef
	closureLen
)

const (
	// ExecutionContext: [debugName, root library mirror]
	ExecutionContextDebugName = iota
	ExecutionContextRootLibrary
	executionContextLen
)

const (
	// MirrorSystem: [library mirrors, execution context mirror]
	MirrorSystemLibraries = iota
	MirrorSystemExecutionContext
	mirrorSystemLen
)

var tupleLens = [...]int{
	ClassKind:            classLen,
	LibraryKind:          libraryLen,
	MethodKind:           methodLen,
	VariableKind:         variableLen,
	TypeVariableKind:     typeVariableLen,
	TypedefKind:          typedefLen,
	FunctionTypeKind:     functionTypeLen,
	ParameterKind:        parameterLen,
	InstanceKind:         instanceLen,
	ClosureKind:          closureLen,
	ExecutionContextKind: executionContextLen,
	MirrorSystemKind:     mirrorSystemLen,
	SpecialTypeKind:      specialTypeLen,
}

// TupleLen returns the fixed payload length of kind.
func TupleLen(kind Kind) int { return tupleLens[kind] }

// Presenter turns a raw tuple into a language-level mirror object. It is
// the only thing the factory calls outside this package.
type Presenter interface {
	Present(kind Kind, fields Tuple) Object
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(kind Kind, fields Tuple) Object

func (f PresenterFunc) Present(kind Kind, fields Tuple) Object { return f(kind, fields) }

// ---------------------------------------------------------------------------
// Snapshot: the bundled presenter
// ---------------------------------------------------------------------------

// Snapshot is a mirror that keeps its kind and payload as built.
type Snapshot struct {
	Kind   Kind
	Fields Tuple
}

// SnapshotPresenter presents every tuple as a *Snapshot.
type SnapshotPresenter struct{}

func (SnapshotPresenter) Present(kind Kind, fields Tuple) Object {
	return &Snapshot{Kind: kind, Fields: fields}
}

// Ref returns the reference slot of the snapshot, or nil for kinds that
// carry none.
func (s *Snapshot) Ref() *Reference {
	var idx int
	switch s.Kind {
	case InstanceKind:
		idx = InstanceClassRef
	case ClosureKind:
		idx = ClosureFunctionRef
	case ExecutionContextKind, MirrorSystemKind, SpecialTypeKind:
		return nil
	}
	r, _ := s.Fields[idx].(*Reference)
	return r
}

// Name returns the display name slot, or "" for kinds without one.
func (s *Snapshot) Name() string {
	var idx int
	switch s.Kind {
	case ClassKind:
		idx = ClassName
	case TypedefKind:
		idx = TypedefName
	case SpecialTypeKind:
		idx = SpecialTypeName
	case LibraryKind:
		idx = LibraryName
	case MethodKind:
		idx = MethodName
	case VariableKind:
		idx = VariableName
	case TypeVariableKind:
		idx = TypeVariableName
	case ParameterKind:
		idx = ParameterName
	case ExecutionContextKind:
		idx = ExecutionContextDebugName
	default:
		return ""
	}
	name, _ := s.Fields[idx].(string)
	return name
}

// Bool returns the boolean at idx.
func (s *Snapshot) Bool(idx int) bool {
	b, _ := s.Fields[idx].(bool)
	return b
}

func (s *Snapshot) String() string {
	if name := s.Name(); name != "" {
		return fmt.Sprintf("%sMirror on '%s'", s.Kind, name)
	}
	return s.Kind.String() + "Mirror"
}
