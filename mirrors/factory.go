package mirrors

import (
	"fmt"

	"github.com/chazu/mirrorcore/program"
	"github.com/tliron/commonlog"
)

var factoryLog = commonlog.GetLogger("mirrors.factory")

// Special type names.
const (
	VoidName    = "void"
	DynamicName = "dynamic"
)

// Factory assembles mirror payloads from declarations and hands them to a
// Presenter. Builders never run user code. A Factory belongs to one
// execution context and is not safe for concurrent use.
type Factory struct {
	store     *program.Store
	presenter Presenter
	special   map[string]Object
}

// NewFactory creates a factory over store. A nil presenter selects
// SnapshotPresenter.
func NewFactory(store *program.Store, presenter Presenter) *Factory {
	if presenter == nil {
		presenter = SnapshotPresenter{}
	}
	return &Factory{store: store, presenter: presenter, special: make(map[string]Object)}
}

// Store returns the declaration store the factory reads.
func (f *Factory) Store() *program.Store { return f.store }

func (f *Factory) present(kind Kind, fields Tuple) Object {
	if len(fields) != TupleLen(kind) {
		panic(fmt.Sprintf("mirrors: %s tuple has %d fields, want %d", kind, len(fields), TupleLen(kind)))
	}
	return f.presenter.Present(kind, fields)
}

// ---------------------------------------------------------------------------
// Type mirrors
// ---------------------------------------------------------------------------

// ClassMirror builds the mirror of cls used as typ. A nil typ means the
// declaration type. Signature classes become FunctionType mirrors when
// canonical and Typedef mirrors otherwise; owner is only used by the
// latter.
func (f *Factory) ClassMirror(cls *program.Class, typ *program.ClassType, owner Object) Object {
	if typ == nil {
		typ = cls.DeclarationType()
	}
	if cls.IsSignatureClass() {
		if cls.Canonical {
			return f.FunctionTypeMirror(cls, typ)
		}
		return f.TypedefMirror(cls, typ, owner)
	}
	return f.present(ClassKind, Tuple{
		NewReference(cls),
		typ,
		cls.Name(),
		cls.NumTypeParameters() > 0,
	})
}

// FunctionTypeMirror builds the mirror of a canonical signature class.
func (f *Factory) FunctionTypeMirror(cls *program.Class, typ *program.ClassType) Object {
	return f.present(FunctionTypeKind, Tuple{NewReference(cls), typ})
}

// TypedefMirror builds the mirror of a named signature class.
func (f *Factory) TypedefMirror(cls *program.Class, typ *program.ClassType, owner Object) Object {
	return f.present(TypedefKind, Tuple{NewReference(cls), typ, cls.Name(), owner})
}

// SpecialTypeMirror returns the mirror of void or dynamic. Each name has
// one mirror per factory.
func (f *Factory) SpecialTypeMirror(name string) Object {
	if m, ok := f.special[name]; ok {
		return m
	}
	m := f.present(SpecialTypeKind, Tuple{name})
	f.special[name] = m
	return m
}

// TypeMirror builds the mirror of a type use. A nil type is dynamic.
// Malformed and unresolved types never reach this layer; they panic.
func (f *Factory) TypeMirror(t program.TypeUse) Object {
	switch t := t.(type) {
	case nil:
		return f.SpecialTypeMirror(DynamicName)
	case *program.ClassType:
		switch {
		case t.Class == nil:
			panic("mirrors: TypeMirror of an unresolved type")
		case t.Class == f.store.VoidClass:
			return f.SpecialTypeMirror(VoidName)
		case t.Class == f.store.DynamicClass:
			return f.SpecialTypeMirror(DynamicName)
		}
		return f.ClassMirror(t.Class, t, nil)
	case *program.TypeParameterType:
		return f.TypeVariableMirror(t.Param, nil)
	case *program.BoundedType:
		if p, ok := t.Type.(*program.TypeParameterType); ok {
			return f.TypeVariableMirror(p.Param, nil)
		}
		return f.TypeMirror(t.Type)
	case *program.MalformedType:
		panic("mirrors: TypeMirror of a malformed type: " + t.Reason)
	}
	panic(fmt.Sprintf("mirrors: unknown type use %T", t))
}

// TypeVariables returns name, reference pairs for the type parameters of
// cls flattened into one sequence, in declaration order.
func (f *Factory) TypeVariables(cls *program.Class) []Object {
	params := cls.TypeParameters()
	out := make([]Object, 0, 2*len(params))
	for _, p := range params {
		out = append(out, p.Name(), NewReference(p))
	}
	return out
}

// TypeArguments returns mirrors of the type arguments of t that belong to
// its own class. Leading arguments inherited from an enclosing generic
// scope are dropped. A raw type yields dynamic for every parameter.
func (f *Factory) TypeArguments(t *program.ClassType) []Object {
	n := t.Class.NumTypeParameters()
	out := make([]Object, n)
	if n == 0 {
		return out
	}
	if len(t.Args) == 0 {
		for i := range out {
			out[i] = f.SpecialTypeMirror(DynamicName)
		}
		return out
	}
	inherited := len(t.Args) - n
	if inherited < 0 {
		panic(fmt.Sprintf("mirrors: %s has %d type arguments for %d parameters", t, len(t.Args), n))
	}
	for i, arg := range t.Args[inherited:] {
		out[i] = f.TypeMirror(arg)
	}
	return out
}

// ---------------------------------------------------------------------------
// Declaration mirrors
// ---------------------------------------------------------------------------

// LibraryMirror builds the mirror of lib.
func (f *Factory) LibraryMirror(lib *program.Library) Object {
	return f.present(LibraryKind, Tuple{NewReference(lib), lib.Name(), lib.URL()})
}

// MethodMirror builds the mirror of fn with the given owner mirror.
func (f *Factory) MethodMirror(fn *program.Function, owner Object) Object {
	return f.present(MethodKind, Tuple{
		NewReference(fn),
		fn.DisplayName(),
		owner,
		fn.Static,
		fn.Abstract,
		fn.IsGetter(),
		fn.IsSetter(),
		fn.IsConstructor() || fn.IsFactory(),
		false, false, false, false,
	})
}

// VariableMirror builds the mirror of field.
func (f *Factory) VariableMirror(field *program.Field, owner Object) Object {
	return f.present(VariableKind, Tuple{
		NewReference(field),
		field.Name(),
		owner,
		nil,
		field.Static,
		field.Final,
	})
}

// TypeVariableMirror builds the mirror of a type parameter.
func (f *Factory) TypeVariableMirror(p *program.TypeParameter, owner Object) Object {
	return f.present(TypeVariableKind, Tuple{NewReference(p), p.Name(), owner})
}

// ParameterMirrors builds one mirror per declared parameter of fn, in
// declaration order. The implicit receiver is not included.
func (f *Factory) ParameterMirrors(fn *program.Function, owner Object) []Object {
	firstOptional := len(fn.Params) - fn.NumOptional
	out := make([]Object, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = f.present(ParameterKind, Tuple{
			NewReference(fn),
			p.Name,
			owner,
			i,
			i >= firstOptional,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Value mirrors
// ---------------------------------------------------------------------------

// Reflect builds the mirror of a value. Closures get a Closure mirror,
// everything else an Instance mirror.
func (f *Factory) Reflect(v program.Value) Object {
	if c, ok := v.(*program.Closure); ok {
		return f.ClosureMirror(c)
	}
	return f.InstanceMirror(v)
}

// InstanceMirror builds the Instance mirror of v.
func (f *Factory) InstanceMirror(v program.Value) Object {
	return f.present(InstanceKind, Tuple{v, NewReference(f.store.ClassOf(v))})
}

// ClosureMirror builds the Closure mirror of c.
func (f *Factory) ClosureMirror(c *program.Closure) Object {
	return f.present(ClosureKind, Tuple{c, NewReference(c.Function)})
}

// ExecutionContextMirror describes the execution context owning the store.
func (f *Factory) ExecutionContextMirror(debugName string) Object {
	var root Object
	if lib := f.store.RootLibrary(); lib != nil {
		root = f.LibraryMirror(lib)
	}
	return f.present(ExecutionContextKind, Tuple{debugName, root})
}

// MirrorSystem builds the mirror system: every library plus the execution
// context.
func (f *Factory) MirrorSystem(debugName string) Object {
	libs := f.store.Libraries()
	mirrors := make([]Object, len(libs))
	for i, lib := range libs {
		mirrors[i] = f.LibraryMirror(lib)
	}
	factoryLog.Debugf("mirror system for %s: %d libraries", debugName, len(libs))
	return f.present(MirrorSystemKind, Tuple{mirrors, f.ExecutionContextMirror(debugName)})
}

// ---------------------------------------------------------------------------
// Structural queries
// ---------------------------------------------------------------------------

// ClassName returns the name of the referenced class.
func (f *Factory) ClassName(ref *Reference) string { return classOf(ref).Name() }

// ClassLibrary returns the mirror of the library declaring the class.
func (f *Factory) ClassLibrary(ref *Reference) Object {
	lib := classOf(ref).Library()
	if lib == nil {
		return nil
	}
	return f.LibraryMirror(lib)
}

// Supertype returns the mirror of the direct supertype, or nil for the
// root class.
func (f *Factory) Supertype(ref *Reference) Object {
	cls := classOf(ref)
	if cls.Super == nil {
		return nil
	}
	return f.TypeMirror(cls.Super)
}

// Interfaces returns mirrors of the declared interfaces. The class is
// finalized first.
func (f *Factory) Interfaces(ref *Reference) ([]Object, error) {
	cls := classOf(ref)
	if err := cls.EnsureFinalized(); err != nil {
		return nil, classify(err)
	}
	out := make([]Object, len(cls.Interfaces))
	for i, iface := range cls.Interfaces {
		out[i] = f.TypeMirror(iface)
	}
	return out, nil
}

// ClassMembers returns mirrors of the fields and reflectable non
// constructor functions of the class. owner becomes the owner slot of
// every member mirror.
func (f *Factory) ClassMembers(owner Object, ref *Reference) ([]Object, error) {
	cls := classOf(ref)
	if err := cls.EnsureFinalized(); err != nil {
		return nil, classify(err)
	}
	var out []Object
	for _, field := range cls.Fields() {
		out = append(out, f.VariableMirror(field, owner))
	}
	for _, fn := range cls.Functions() {
		if isMemberFunction(fn) {
			out = append(out, f.MethodMirror(fn, owner))
		}
	}
	return out, nil
}

// ClassConstructors returns mirrors of the visible constructors and
// factories of the class.
func (f *Factory) ClassConstructors(owner Object, ref *Reference) ([]Object, error) {
	cls := classOf(ref)
	if err := cls.EnsureFinalized(); err != nil {
		return nil, classify(err)
	}
	var out []Object
	for _, fn := range cls.Functions() {
		if fn.IsVisible() && (fn.IsConstructor() || fn.IsFactory()) {
			out = append(out, f.MethodMirror(fn, owner))
		}
	}
	return out, nil
}

// LibraryMembers returns mirrors of the library's own classes, variables
// and reflectable functions.
func (f *Factory) LibraryMembers(owner Object, ref *Reference) []Object {
	lib := libraryOf(ref)
	var out []Object
	for _, d := range lib.Declarations() {
		switch d := d.(type) {
		case *program.Class:
			out = append(out, f.ClassMirror(d, nil, owner))
		case *program.Field:
			out = append(out, f.VariableMirror(d, owner))
		case *program.Function:
			if isMemberFunction(d) {
				out = append(out, f.MethodMirror(d, owner))
			}
		}
	}
	return out
}

func isMemberFunction(fn *program.Function) bool {
	if !fn.IsVisible() || fn.IsImplicit() {
		return false
	}
	switch fn.Kind {
	case program.RegularFunction, program.GetterFunction, program.SetterFunction:
		return true
	}
	return false
}

// MethodOwner returns the mirror of the class or library declaring the
// function.
func (f *Factory) MethodOwner(ref *Reference) Object {
	switch owner := functionOf(ref).Owner().(type) {
	case *program.Class:
		return f.ClassMirror(owner, nil, nil)
	case *program.Library:
		return f.LibraryMirror(owner)
	}
	return nil
}

// MethodReturnType returns the mirror of the declared result type.
func (f *Factory) MethodReturnType(ref *Reference) Object {
	return f.TypeMirror(functionOf(ref).Result)
}

// MethodSource returns the source text of the function, if recorded.
func (f *Factory) MethodSource(ref *Reference) (string, bool) {
	src := functionOf(ref).Source
	return src, src != ""
}

// MethodParameters returns the parameter mirrors of the function.
func (f *Factory) MethodParameters(owner Object, ref *Reference) []Object {
	return f.ParameterMirrors(functionOf(ref), owner)
}

// VariableType returns the mirror of the declared field type.
func (f *Factory) VariableType(ref *Reference) Object {
	return f.TypeMirror(fieldOf(ref).Type)
}

// ParameterType returns the mirror of the declared type of parameter pos.
func (f *Factory) ParameterType(ref *Reference, pos int) Object {
	fn := functionOf(ref)
	if pos < 0 || pos >= len(fn.Params) {
		panic(fmt.Sprintf("mirrors: parameter %d out of range for '%s'", pos, fn.DisplayName()))
	}
	return f.TypeMirror(fn.Params[pos].Type)
}

// TypeVariableOwner returns the mirror of the class declaring the type
// parameter.
func (f *Factory) TypeVariableOwner(ref *Reference) Object {
	owner := typeParameterOf(ref).Owner()
	if owner == nil {
		return nil
	}
	return f.ClassMirror(owner, nil, nil)
}

// TypeVariableUpperBound returns the mirror of the bound, Object when
// none was declared.
func (f *Factory) TypeVariableUpperBound(ref *Reference) Object {
	p := typeParameterOf(ref)
	if p.Bound == nil {
		return f.TypeMirror(f.store.ObjectClass.RareType())
	}
	return f.TypeMirror(p.Bound)
}

// TypedefReferent returns the function type a typedef names.
func (f *Factory) TypedefReferent(ref *Reference) Object {
	sig := signatureOf(classOf(ref))
	canonical := f.store.SignatureClassFor(sig)
	return f.FunctionTypeMirror(canonical, canonical.RareType())
}

// FunctionTypeCallMethod returns the mirror of the call method of a
// function type.
func (f *Factory) FunctionTypeCallMethod(owner Object, ref *Reference) Object {
	return f.MethodMirror(signatureOf(classOf(ref)), owner)
}

// FunctionTypeParameters returns the parameter mirrors of a function type.
func (f *Factory) FunctionTypeParameters(owner Object, ref *Reference) []Object {
	return f.ParameterMirrors(signatureOf(classOf(ref)), owner)
}

// FunctionTypeReturnType returns the mirror of the result type of a
// function type.
func (f *Factory) FunctionTypeReturnType(ref *Reference) Object {
	return f.TypeMirror(signatureOf(classOf(ref)).Result)
}

func signatureOf(cls *program.Class) *program.Function {
	if !cls.IsSignatureClass() {
		panic("mirrors: class '" + cls.Name() + "' is not a function type")
	}
	return cls.Signature
}

// ClosureFunction returns the method mirror of the closure's function.
func (f *Factory) ClosureFunction(c *program.Closure) Object {
	return f.MethodMirror(c.Function, nil)
}

// Metadata returns the annotations of the referenced declaration.
func (f *Factory) Metadata(ref *Reference) ([]program.Value, error) {
	values, err := f.store.Metadata(ref.Referent())
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", program.QualifiedName(ref.Referent()), err)
	}
	return values, nil
}
