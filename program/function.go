package program

import "strings"

// FunctionKind distinguishes the kinds of callable declarations.
type FunctionKind int

const (
	RegularFunction FunctionKind = iota
	GetterFunction
	SetterFunction
	ConstructorFunction
	FactoryFunction
	ImplicitGetter       // synthesized for an instance field
	ImplicitSetter       // synthesized for a non-final instance field
	ImplicitStaticGetter // synthesized for a lazily initialized static field
	SignatureFunction    // call signature of a function type or typedef
)

var functionKindNames = [...]string{
	RegularFunction:      "method",
	GetterFunction:       "getter",
	SetterFunction:       "setter",
	ConstructorFunction:  "constructor",
	FactoryFunction:      "factory",
	ImplicitGetter:       "implicit getter",
	ImplicitSetter:       "implicit setter",
	ImplicitStaticGetter: "implicit static getter",
	SignatureFunction:    "signature",
}

func (k FunctionKind) String() string {
	if int(k) < len(functionKindNames) {
		return functionKindNames[k]
	}
	return "unknown"
}

// Body is the executable implementation of a function. args holds the
// implicit receiver (for instance functions and constructors) followed by
// the positional arguments.
type Body func(args []Value) (Value, error)

// Parameter is one declared (explicit) parameter of a function.
type Parameter struct {
	Name string
	Type TypeUse
}

// Function is a method, accessor, constructor or top-level function.
type Function struct {
	name  string
	owner Declaration // *Class or *Library
	Kind  FunctionKind

	Static   bool
	Abstract bool
	// Hidden marks implementation-only functions that reflective calls
	// must not reach.
	Hidden bool

	Params      []Parameter
	NumOptional int // trailing optional positional parameters
	Result      TypeUse

	Body Body
	// CompileErr is set when the function failed to compile. Invoking the
	// function surfaces it instead of running Body.
	CompileErr *CompileError
	Source     string

	// field is the backing field of a synthesized accessor.
	field *Field
}

// NewFunction creates a function with the given internal name.
func NewFunction(name string, kind FunctionKind, params ...string) *Function {
	fn := &Function{name: name, Kind: kind}
	for _, p := range params {
		fn.Params = append(fn.Params, Parameter{Name: p})
	}
	return fn
}

// Name returns the internal name (e.g. "get:x", "Point.origin").
func (f *Function) Name() string { return f.name }

// Owner returns the declaring *Class or *Library.
func (f *Function) Owner() Declaration { return f.owner }

// OwnerClass returns the declaring class, or nil for top-level functions.
func (f *Function) OwnerClass() *Class {
	c, _ := f.owner.(*Class)
	return c
}

// Field returns the backing field of a synthesized accessor.
func (f *Function) Field() *Field { return f.field }

// DisplayName returns the user-visible name: "x" for a getter, "x=" for a
// setter, "Point.origin" or "Point" for constructors.
func (f *Function) DisplayName() string {
	switch {
	case IsGetterName(f.name):
		return UserName(f.name)
	case IsSetterName(f.name):
		return UserName(f.name) + "="
	case f.IsConstructor() || f.IsFactory():
		return strings.TrimSuffix(f.name, ConstructorSeparator)
	}
	return f.name
}

// IsConstructor reports whether the function is a generative constructor.
func (f *Function) IsConstructor() bool { return f.Kind == ConstructorFunction }

// IsFactory reports whether the function is a factory constructor.
func (f *Function) IsFactory() bool { return f.Kind == FactoryFunction }

// IsGetter reports whether the function is a user or implicit getter.
func (f *Function) IsGetter() bool {
	return f.Kind == GetterFunction || f.Kind == ImplicitGetter || f.Kind == ImplicitStaticGetter
}

// IsSetter reports whether the function is a user or implicit setter.
func (f *Function) IsSetter() bool {
	return f.Kind == SetterFunction || f.Kind == ImplicitSetter
}

// IsImplicit reports whether the function was synthesized for a field.
func (f *Function) IsImplicit() bool {
	return f.Kind == ImplicitGetter || f.Kind == ImplicitSetter || f.Kind == ImplicitStaticGetter
}

// IsVisible reports whether reflective calls may reach the function.
func (f *Function) IsVisible() bool { return !f.Hidden }

// NumImplicitParameters is 1 for functions receiving a receiver (instance
// members and generative constructors) and 0 otherwise.
func (f *Function) NumImplicitParameters() int {
	if f.Kind == ConstructorFunction {
		return 1
	}
	if f.Static || f.Kind == FactoryFunction || f.Kind == SignatureFunction {
		return 0
	}
	if _, topLevel := f.owner.(*Library); topLevel {
		return 0
	}
	return 1
}

// NumParameters counts implicit and declared parameters.
func (f *Function) NumParameters() int {
	return f.NumImplicitParameters() + len(f.Params)
}

// NumFixedParameters counts implicit and required declared parameters.
func (f *Function) NumFixedParameters() int {
	return f.NumParameters() - f.NumOptional
}

// AreValidArguments reports whether count arguments (implicit ones
// included) fit the declared signature.
func (f *Function) AreValidArguments(count int) bool {
	return count >= f.NumFixedParameters() && count <= f.NumParameters()
}

// ParameterNames returns the declared parameter names in order.
func (f *Function) ParameterNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}
