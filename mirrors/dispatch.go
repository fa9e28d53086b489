package mirrors

import (
	"github.com/chazu/mirrorcore/program"
	"github.com/tliron/commonlog"
)

var dispatchLog = commonlog.GetLogger("mirrors.dispatch")

// Engine runs resolved functions. *program.Executor implements it.
type Engine interface {
	// Invoke runs fn with args, implicit receiver first.
	Invoke(fn *program.Function, args []program.Value) (program.Value, error)
	// InvokeClosure calls a closure with explicit args.
	InvokeClosure(c *program.Closure, args []program.Value) (program.Value, error)
	// InvokeNoSuchMethod runs the fallback of receiver for an unresolved
	// dynamic call. args holds the receiver followed by the explicit
	// arguments.
	InvokeNoSuchMethod(receiver program.Value, name string, args []program.Value) (program.Value, error)
}

// ArgumentsDescriptor describes the shape of an argument list: the count
// of positional arguments, implicit receiver included.
type ArgumentsDescriptor struct {
	Count int
}

// Accepts reports whether fn may be called reflectively with this shape.
func (a ArgumentsDescriptor) Accepts(fn *program.Function) bool {
	return fn.IsVisible() && fn.AreValidArguments(a.Count)
}

// Dispatcher performs reflective calls by name. Every method returns the
// call's value or one of: *program.NoSuchMethodError,
// *MirroredCompilationError, or the unchanged failure of the invoked
// code. Calls may re-enter the dispatcher.
type Dispatcher struct {
	store  *program.Store
	engine Engine

	// depth counts nested "call" sends on callable objects. They never
	// reach the engine, so its call depth limit cannot see them.
	depth    int
	maxDepth int
}

// NewDispatcher creates a dispatcher over store running code with engine.
func NewDispatcher(store *program.Store, engine Engine) *Dispatcher {
	return &Dispatcher{store: store, engine: engine, maxDepth: program.DefaultMaxCallDepth}
}

// SetMaxCallDepth bounds nested "call" sends. Values <= 0 restore the
// default.
func (d *Dispatcher) SetMaxCallDepth(n int) {
	if n <= 0 {
		n = program.DefaultMaxCallDepth
	}
	d.maxDepth = n
}

func withReceiver(receiver program.Value, args []program.Value) []program.Value {
	full := make([]program.Value, 0, len(args)+1)
	full = append(full, receiver)
	return append(full, args...)
}

func (d *Dispatcher) invoke(fn *program.Function, args []program.Value) (program.Value, error) {
	v, err := d.engine.Invoke(fn, args)
	return v, classify(err)
}

// call applies a callee obtained from a getter. Closures run directly;
// other values are sent "call". A callee whose "call" getter keeps
// returning a non-closure fails with program.ErrStackOverflow once the
// nesting passes the depth limit.
func (d *Dispatcher) call(callee program.Value, args []program.Value) (program.Value, error) {
	if c, ok := callee.(*program.Closure); ok {
		v, err := d.engine.InvokeClosure(c, args)
		return v, classify(err)
	}
	if d.depth >= d.maxDepth {
		return nil, program.ErrStackOverflow
	}
	d.depth++
	defer func() { d.depth-- }()
	return d.InvokeInstance(callee, "call", args)
}

func fail(receiver program.Value, name string, category Category, args []program.Value, params []string) error {
	dispatchLog.Debugf("no such %s '%s' on %s", category, name, program.FormatValue(receiver))
	desc := &FailureDescriptor{
		Receiver:       receiver,
		MemberName:     name,
		Category:       category,
		Arguments:      args,
		ParameterNames: params,
	}
	return desc.Err()
}

// invokeChecked runs a static, top-level or constructor target. Unlike
// instance dispatch, an argument count mismatch is reported directly with
// the target's parameter names.
func (d *Dispatcher) invokeChecked(fn *program.Function, args []program.Value, receiver program.Value, category Category, name string) (program.Value, error) {
	if !fn.IsVisible() {
		return nil, fail(receiver, name, category, args, nil)
	}
	if !fn.AreValidArguments(len(args) + fn.NumImplicitParameters()) {
		return nil, fail(receiver, name, category, args, fn.ParameterNames())
	}
	return d.invoke(fn, args)
}

// ---------------------------------------------------------------------------
// Instance members
// ---------------------------------------------------------------------------

// invokeDynamic runs fn on receiver, or the receiver's fallback when fn is
// missing or cannot take the arguments.
func (d *Dispatcher) invokeDynamic(receiver program.Value, fn *program.Function, name string, full []program.Value) (program.Value, error) {
	if fn == nil || !(ArgumentsDescriptor{Count: len(full)}).Accepts(fn) {
		dispatchLog.Debugf("noSuchMethod fallback for '%s' on %s", name, program.FormatValue(receiver))
		v, err := d.engine.InvokeNoSuchMethod(receiver, name, full)
		return v, classify(err)
	}
	return d.invoke(fn, full)
}

// InvokeInstance calls the method name on receiver. When no method of
// that name exists but a getter does, the getter's result is called.
func (d *Dispatcher) InvokeInstance(receiver program.Value, name string, args []program.Value) (program.Value, error) {
	if c, ok := receiver.(*program.Closure); ok && name == "call" {
		return d.call(c, args)
	}
	cls := d.store.ClassOf(receiver)
	fn := resolveDynamic(cls, name)
	if fn == nil {
		getter := resolveDynamic(cls, program.GetterName(name))
		if getter != nil && (ArgumentsDescriptor{Count: 1}).Accepts(getter) {
			callee, err := d.invoke(getter, []program.Value{receiver})
			if err != nil {
				return nil, err
			}
			return d.call(callee, args)
		}
	}
	return d.invokeDynamic(receiver, fn, name, withReceiver(receiver, args))
}

// ReadInstanceField reads name on receiver through its getter. A method
// of that name is returned as a closure bound to receiver.
func (d *Dispatcher) ReadInstanceField(receiver program.Value, name string) (program.Value, error) {
	cls := d.store.ClassOf(receiver)
	getterName := program.GetterName(name)
	getter := resolveDynamic(cls, getterName)
	if getter == nil {
		if method := resolveDynamic(cls, name); method != nil && method.IsVisible() {
			return &program.Closure{Function: method, Receiver: receiver}, nil
		}
	}
	return d.invokeDynamic(receiver, getter, getterName, []program.Value{receiver})
}

// WriteInstanceField writes value to name on receiver through its setter
// and returns value. Writing a final field fails without touching it.
func (d *Dispatcher) WriteInstanceField(receiver program.Value, name string, value program.Value) (program.Value, error) {
	setter, final := resolveSetter(d.store.ClassOf(receiver), name)
	if final {
		return nil, finalFieldError("cannot set final field '%s'", name)
	}
	setterName := program.SetterName(name)
	if _, err := d.invokeDynamic(receiver, setter, setterName, []program.Value{receiver, value}); err != nil {
		return nil, err
	}
	return value, nil
}

// ---------------------------------------------------------------------------
// Static members
// ---------------------------------------------------------------------------

func finalizedClass(ref *Reference) (*program.Class, error) {
	cls := classOf(ref)
	if err := cls.EnsureFinalized(); err != nil {
		return nil, classify(err)
	}
	return cls, nil
}

func typeValue(cls *program.Class) program.Value {
	return &program.TypeValue{Type: cls.RareType()}
}

// fieldGetter returns the synthesized getter of a lazily initialized
// static or top-level field.
func fieldGetter(f *program.Field) *program.Function {
	var fn *program.Function
	switch owner := f.Owner().(type) {
	case *program.Class:
		fn = owner.LookupStaticFunction(program.GetterName(f.Name()))
	case *program.Library:
		fn = owner.LookupLocalFunction(program.GetterName(f.Name()))
	}
	if fn == nil || fn.Field() != f {
		return nil
	}
	return fn
}

// readField returns the value of a static or top-level field. A field
// never read before goes through its getter so the initializer runs once.
func (d *Dispatcher) readField(f *program.Field) (program.Value, error) {
	if !needsGetter(f) {
		return f.StaticValue(), nil
	}
	if getter := fieldGetter(f); getter != nil {
		return d.invoke(getter, nil)
	}
	v, err := f.Read()
	return v, classify(err)
}

// readResolved reads through a getter resolution. ok is false when
// nothing readable was found.
func (d *Dispatcher) readResolved(r Resolution) (v program.Value, ok bool, err error) {
	switch {
	case r.Field != nil:
		v, err = d.readField(r.Field)
		return v, true, err
	case r.Function != nil && (ArgumentsDescriptor{Count: 0}).Accepts(r.Function):
		v, err = d.invoke(r.Function, nil)
		return v, true, err
	}
	return nil, false, nil
}

func (d *Dispatcher) readStatic(cls *program.Class, name string) (program.Value, bool, error) {
	if v, ok, err := d.readResolved(resolveStatic(cls, name, program.MemberGetter)); ok {
		return v, true, err
	}
	if m := cls.LookupStaticFunction(name); m != nil && m.IsVisible() && m.Kind == program.RegularFunction {
		return &program.Closure{Function: m}, true, nil
	}
	return nil, false, nil
}

// InvokeStatic calls the static method name of the referenced class.
func (d *Dispatcher) InvokeStatic(ref *Reference, name string, args []program.Value) (program.Value, error) {
	cls, err := finalizedClass(ref)
	if err != nil {
		return nil, err
	}
	r := resolveStatic(cls, name, program.MemberMethod)
	if r.State == NotFound {
		callee, ok, err := d.readStatic(cls, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return d.call(callee, args)
		}
		return nil, fail(typeValue(cls), name, StaticMethod, args, nil)
	}
	return d.invokeChecked(r.Function, args, typeValue(cls), StaticMethod, name)
}

// ReadStaticField reads the static field or getter name of the referenced
// class. A static method of that name is returned as a closure.
func (d *Dispatcher) ReadStaticField(ref *Reference, name string) (program.Value, error) {
	cls, err := finalizedClass(ref)
	if err != nil {
		return nil, err
	}
	v, ok, err := d.readStatic(cls, name)
	if !ok {
		return nil, fail(typeValue(cls), name, StaticGetter, nil, nil)
	}
	return v, err
}

// WriteStaticField writes value to the static field or setter name of the
// referenced class and returns value.
func (d *Dispatcher) WriteStaticField(ref *Reference, name string, value program.Value) (program.Value, error) {
	cls, err := finalizedClass(ref)
	if err != nil {
		return nil, err
	}
	r := resolveStatic(cls, name, program.MemberSetter)
	switch {
	case r.Function != nil:
		if _, err := d.invokeChecked(r.Function, []program.Value{value}, typeValue(cls), StaticSetter, name); err != nil {
			return nil, err
		}
		return value, nil
	case r.Field != nil:
		if r.Field.Final {
			return nil, finalFieldError("cannot set final field '%s'", name)
		}
		r.Field.SetStaticValue(value)
		return value, nil
	}
	return nil, fail(typeValue(cls), name, StaticSetter, []program.Value{value}, nil)
}

// ---------------------------------------------------------------------------
// Top-level members
// ---------------------------------------------------------------------------

func (d *Dispatcher) readTopLevel(lib *program.Library, name string) (program.Value, bool, error) {
	r := resolveTopLevel(lib, name, program.MemberGetter)
	if r.State == Ambiguous {
		return nil, false, ambiguityError(r.Message)
	}
	if v, ok, err := d.readResolved(r); ok {
		return v, true, err
	}
	m := resolveTopLevel(lib, name, program.MemberMethod)
	if m.State == Ambiguous {
		return nil, false, ambiguityError(m.Message)
	}
	if m.Function != nil && m.Function.IsVisible() && m.Function.Kind == program.RegularFunction {
		return &program.Closure{Function: m.Function}, true, nil
	}
	return nil, false, nil
}

// InvokeTopLevel calls the top-level function name visible in the
// referenced library. An ambiguous name fails before anything runs.
func (d *Dispatcher) InvokeTopLevel(ref *Reference, name string, args []program.Value) (program.Value, error) {
	lib := libraryOf(ref)
	r := resolveTopLevel(lib, name, program.MemberMethod)
	switch r.State {
	case Ambiguous:
		dispatchLog.Debugf("ambiguous top-level '%s' in %s", name, lib.URL())
		return nil, ambiguityError(r.Message)
	case NotFound:
		callee, ok, err := d.readTopLevel(lib, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return d.call(callee, args)
		}
		return nil, fail(nil, name, TopLevelMethod, args, nil)
	}
	return d.invokeChecked(r.Function, args, nil, TopLevelMethod, name)
}

// ReadTopLevel reads the top-level variable or getter name visible in the
// referenced library. A function of that name is returned as a closure.
func (d *Dispatcher) ReadTopLevel(ref *Reference, name string) (program.Value, error) {
	v, ok, err := d.readTopLevel(libraryOf(ref), name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fail(nil, name, TopLevelGetter, nil, nil)
	}
	return v, nil
}

// WriteTopLevel writes value to the top-level variable or setter name
// visible in the referenced library and returns value.
func (d *Dispatcher) WriteTopLevel(ref *Reference, name string, value program.Value) (program.Value, error) {
	r := resolveTopLevel(libraryOf(ref), name, program.MemberSetter)
	switch {
	case r.State == Ambiguous:
		return nil, ambiguityError(r.Message)
	case r.Function != nil:
		if _, err := d.invokeChecked(r.Function, []program.Value{value}, nil, TopLevelSetter, name); err != nil {
			return nil, err
		}
		return value, nil
	case r.Field != nil:
		if r.Field.Final {
			return nil, finalFieldError("cannot set final top-level variable '%s'", name)
		}
		r.Field.SetStaticValue(value)
		return value, nil
	}
	return nil, fail(nil, name, TopLevelSetter, []program.Value{value}, nil)
}

// ---------------------------------------------------------------------------
// Constructors and closures
// ---------------------------------------------------------------------------

// InvokeConstructor runs the constructor name ("" for the unnamed one) of
// the referenced class. typeArgs become the type arguments of the new
// instance. A generative constructor returns the allocated instance; a
// factory returns its own result.
func (d *Dispatcher) InvokeConstructor(ref *Reference, typeArgs []program.TypeUse, name string, args []program.Value) (program.Value, error) {
	cls, err := finalizedClass(ref)
	if err != nil {
		return nil, err
	}
	label := program.ConstructorLabel(cls.Name(), name)
	receiver := &program.TypeValue{Type: program.NewClassType(cls, typeArgs...)}

	r := resolveConstructor(cls, name)
	if r.State == NotFound || !r.Function.IsVisible() {
		return nil, fail(receiver, label, Constructor, args, nil)
	}
	fn := r.Function
	if fn.IsConstructor() && cls.Abstract {
		return nil, &program.AbstractInstantiationError{ClassName: cls.Name()}
	}
	if !fn.AreValidArguments(len(args) + fn.NumImplicitParameters()) {
		return nil, fail(receiver, label, Constructor, args, fn.ParameterNames())
	}
	if fn.IsFactory() {
		return d.invoke(fn, args)
	}
	inst := program.NewInstance(cls)
	inst.TypeArgs = typeArgs
	if _, err := d.invoke(fn, withReceiver(inst, args)); err != nil {
		return nil, err
	}
	return inst, nil
}

// ApplyClosure calls a closure value with args. Non-closure values are
// sent "call".
func (d *Dispatcher) ApplyClosure(closure program.Value, args []program.Value) (program.Value, error) {
	return d.call(closure, args)
}
