package program

import "fmt"

// fieldState tracks static field initialization. Transitions only move
// forward: uninitialized -> initializing -> initialized.
type fieldState uint8

const (
	fieldUninitialized fieldState = iota
	fieldInitializing
	fieldInitialized
)

// Field is an instance, static or top-level variable.
type Field struct {
	name  string
	owner Declaration // *Class or *Library

	Static bool
	Final  bool
	Type   TypeUse

	// initializer computes the value of a lazily initialized static field.
	initializer Body

	slot  int // instance slot index, assigned at class finalization
	state fieldState
	value Value
}

// NewField creates an instance field.
func NewField(name string, final bool) *Field {
	return &Field{name: name, Final: final, slot: -1}
}

// NewStaticField creates a static or top-level field holding value.
func NewStaticField(name string, final bool, value Value) *Field {
	return &Field{name: name, Static: true, Final: final, slot: -1, state: fieldInitialized, value: value}
}

// NewLazyStaticField creates a static or top-level field whose value is
// computed by init on first read.
func NewLazyStaticField(name string, final bool, init Body) *Field {
	return &Field{name: name, Static: true, Final: final, slot: -1, initializer: init}
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Owner returns the declaring *Class or *Library.
func (f *Field) Owner() Declaration { return f.owner }

// Slot returns the instance slot index, or -1 for static fields.
func (f *Field) Slot() int { return f.slot }

// IsLazy reports whether the field has an initializer.
func (f *Field) IsLazy() bool { return f.initializer != nil }

// IsUninitialized reports whether a static field has not completed its
// first evaluation. A field whose initializer is running counts as
// uninitialized.
func (f *Field) IsUninitialized() bool {
	return f.Static && f.state != fieldInitialized
}

// StaticValue returns the stored value without triggering initialization.
func (f *Field) StaticValue() Value { return f.value }

// SetStaticValue stores v and marks the field initialized. A pending
// initializer will never run afterwards.
func (f *Field) SetStaticValue(v Value) {
	f.value = v
	f.state = fieldInitialized
}

// Read returns the value of a static field, running its initializer on the
// first read. Reflective getters and ordinary reads share this path, so the
// initializer runs at most once. If the initializer fails the field is left
// initialized to nil and the failure is returned.
func (f *Field) Read() (Value, error) {
	switch f.state {
	case fieldInitialized:
		return f.value, nil
	case fieldInitializing:
		return nil, fmt.Errorf("%w: '%s'", ErrCyclicInitialization, f.name)
	}
	if f.initializer == nil {
		f.SetStaticValue(nil)
		return nil, nil
	}
	f.state = fieldInitializing
	v, err := f.initializer(nil)
	if err != nil {
		f.SetStaticValue(nil)
		return nil, err
	}
	f.SetStaticValue(v)
	return v, nil
}

// ---------------------------------------------------------------------------
// Synthesized accessors
// ---------------------------------------------------------------------------

func implicitGetter(f *Field) *Function {
	fn := &Function{name: GetterName(f.name), Kind: ImplicitGetter, Result: f.Type, field: f}
	fn.Body = func(args []Value) (Value, error) {
		inst, ok := args[0].(*Instance)
		if !ok {
			return nil, fmt.Errorf("implicit getter '%s' on non-instance receiver", f.name)
		}
		return inst.Get(f), nil
	}
	return fn
}

func implicitSetter(f *Field) *Function {
	fn := &Function{
		name:   SetterName(f.name),
		Kind:   ImplicitSetter,
		Params: []Parameter{{Name: f.name, Type: f.Type}},
		field:  f,
	}
	fn.Body = func(args []Value) (Value, error) {
		inst, ok := args[0].(*Instance)
		if !ok {
			return nil, fmt.Errorf("implicit setter '%s' on non-instance receiver", f.name)
		}
		inst.Set(f, args[1])
		return args[1], nil
	}
	return fn
}

func implicitStaticGetter(f *Field) *Function {
	return &Function{
		name:   GetterName(f.name),
		Kind:   ImplicitStaticGetter,
		Static: true,
		Result: f.Type,
		field:  f,
		Body:   func([]Value) (Value, error) { return f.Read() },
	}
}
