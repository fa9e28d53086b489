package program

import "fmt"

// ---------------------------------------------------------------------------
// Class: a type declaration
// ---------------------------------------------------------------------------

// Class is a class, a function type (canonical signature class) or a
// typedef (named signature class).
type Class struct {
	name    string
	library *Library

	Super      *ClassType // nil only for the root class
	Interfaces []*ClassType
	Abstract   bool

	// Signature is the call signature of a signature class. Canonical
	// signature classes represent function types; the others are typedefs.
	Signature *Function
	Canonical bool

	typeParams []*TypeParameter
	fields     []*Field
	functions  []*Function
	byName     map[string]*Function

	finalized   bool
	finalizeErr error
	defect      string
	numSlots    int
}

// NewClass creates an empty class.
func NewClass(name string) *Class {
	return &Class{name: name, byName: make(map[string]*Function)}
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Library returns the library declaring the class.
func (c *Class) Library() *Library { return c.library }

// SuperClass returns the class of the direct supertype, or nil.
func (c *Class) SuperClass() *Class {
	if c.Super == nil {
		return nil
	}
	return c.Super.Class
}

// IsSignatureClass reports whether c represents a call signature.
func (c *Class) IsSignatureClass() bool { return c.Signature != nil }

// DeclareTypeParameter appends a type parameter and returns it.
func (c *Class) DeclareTypeParameter(name string, bound TypeUse) *TypeParameter {
	p := &TypeParameter{name: name, index: len(c.typeParams), owner: c, Bound: bound}
	c.typeParams = append(c.typeParams, p)
	return p
}

// TypeParameters returns the declared type parameters in order.
func (c *Class) TypeParameters() []*TypeParameter { return c.typeParams }

// NumTypeParameters returns the count of declared type parameters.
func (c *Class) NumTypeParameters() int { return len(c.typeParams) }

// DeclarationType returns the type of c parameterized by its own type
// parameters.
func (c *Class) DeclarationType() *ClassType {
	t := &ClassType{Class: c}
	for _, p := range c.typeParams {
		t.Args = append(t.Args, p.Use())
	}
	return t
}

// RareType returns the raw type of c.
func (c *Class) RareType() *ClassType { return &ClassType{Class: c} }

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// AddField declares a field. Instance fields get an implicit getter and,
// unless final, an implicit setter. Lazily initialized static fields get
// an implicit static getter that runs the initializer.
func (c *Class) AddField(f *Field) *Field {
	f.owner = c
	c.fields = append(c.fields, f)
	if f.Static {
		if f.initializer != nil {
			c.addImplicit(implicitStaticGetter(f))
		}
		return f
	}
	c.addImplicit(implicitGetter(f))
	if !f.Final {
		c.addImplicit(implicitSetter(f))
	}
	return f
}

// addImplicit registers a synthesized accessor unless the class already
// declares a function with that name.
func (c *Class) addImplicit(fn *Function) {
	if _, exists := c.byName[fn.name]; exists {
		return
	}
	c.AddFunction(fn)
}

// AddFunction declares a function. A later declaration with the same
// internal name replaces an implicit accessor.
func (c *Class) AddFunction(fn *Function) *Function {
	fn.owner = c
	if old, exists := c.byName[fn.name]; exists {
		for i, f := range c.functions {
			if f == old {
				c.functions = append(c.functions[:i], c.functions[i+1:]...)
				break
			}
		}
	}
	c.byName[fn.name] = fn
	c.functions = append(c.functions, fn)
	return fn
}

// AddConstructor declares a generative constructor named name ("" for the
// unnamed constructor).
func (c *Class) AddConstructor(name string, params ...string) *Function {
	return c.AddFunction(NewFunction(ConstructorLabel(c.name, name), ConstructorFunction, params...))
}

// AddFactory declares a factory constructor.
func (c *Class) AddFactory(name string, params ...string) *Function {
	fn := NewFunction(ConstructorLabel(c.name, name), FactoryFunction, params...)
	fn.Static = true
	return c.AddFunction(fn)
}

// Fields returns the declared fields in order.
func (c *Class) Fields() []*Field { return c.fields }

// Functions returns the declared functions in order, implicit accessors
// included.
func (c *Class) Functions() []*Function { return c.functions }

// LookupFunction finds a function declared by c itself, private names
// included.
func (c *Class) LookupFunction(name string) *Function { return c.byName[name] }

// LookupDynamicFunction finds an instance function declared by c itself.
func (c *Class) LookupDynamicFunction(name string) *Function {
	fn := c.byName[name]
	if fn == nil || fn.Static || fn.IsConstructor() || fn.IsFactory() {
		return nil
	}
	return fn
}

// LookupStaticFunction finds a static function declared by c itself.
func (c *Class) LookupStaticFunction(name string) *Function {
	fn := c.byName[name]
	if fn == nil || !fn.Static || fn.IsFactory() {
		return nil
	}
	return fn
}

// LookupField finds a field declared by c itself.
func (c *Class) LookupField(name string) *Field {
	for _, f := range c.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// LookupStaticField finds a static field declared by c itself.
func (c *Class) LookupStaticField(name string) *Field {
	if f := c.LookupField(name); f != nil && f.Static {
		return f
	}
	return nil
}

// LookupInstanceField finds an instance field declared by c itself.
func (c *Class) LookupInstanceField(name string) *Field {
	if f := c.LookupField(name); f != nil && !f.Static {
		return f
	}
	return nil
}

// ---------------------------------------------------------------------------
// Finalization
// ---------------------------------------------------------------------------

// MarkMalformed records a defect found while loading the class. The defect
// surfaces as a *CompileError when the class is finalized.
func (c *Class) MarkMalformed(reason string) { c.defect = reason }

// IsFinalized reports whether finalization has completed.
func (c *Class) IsFinalized() bool { return c.finalized }

// EnsureFinalized finalizes c and its supertypes, assigning instance slots.
// It is idempotent and returns the same error on every call.
func (c *Class) EnsureFinalized() error {
	if c.finalized {
		return c.finalizeErr
	}
	c.finalized = true
	c.finalizeErr = c.finalize()
	return c.finalizeErr
}

func (c *Class) finalize() error {
	if c.defect != "" {
		return &CompileError{Message: fmt.Sprintf("class '%s': %s", c.name, c.defect)}
	}
	seen := map[*Class]bool{c: true}
	for s := c.SuperClass(); s != nil; s = s.SuperClass() {
		if seen[s] {
			return &CompileError{Message: fmt.Sprintf("class '%s' has a cyclic superclass chain", c.name)}
		}
		seen[s] = true
	}
	offset := 0
	if c.Super != nil {
		if c.Super.Class == nil {
			return &CompileError{Message: fmt.Sprintf("class '%s': unresolved superclass", c.name)}
		}
		if err := c.Super.Class.EnsureFinalized(); err != nil {
			return &CompileError{Message: fmt.Sprintf("class '%s': superclass failed to finalize: %v", c.name, err)}
		}
		offset = c.Super.Class.numSlots
	}
	for _, iface := range c.Interfaces {
		if iface.Class == nil {
			return &CompileError{Message: fmt.Sprintf("class '%s': unresolved interface", c.name)}
		}
	}
	for _, f := range c.fields {
		if f.Static {
			continue
		}
		f.slot = offset
		offset++
	}
	c.numSlots = offset
	return nil
}

// NumSlots returns the instance slot count, inherited slots included.
// Valid after finalization.
func (c *Class) NumSlots() int { return c.numSlots }

// IsSubclassOf returns true if c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.SuperClass() {
		if current == other {
			return true
		}
	}
	return false
}
