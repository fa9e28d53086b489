package mirrors

import "github.com/chazu/mirrorcore/program"

// ResolutionState is the terminal state of a lookup.
type ResolutionState int

const (
	NotFound ResolutionState = iota
	Resolved
	Ambiguous
)

func (s ResolutionState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	}
	return "not found"
}

// Resolution is the outcome of resolving a member name. A resolved
// outcome carries a function or a field; an ambiguous one carries the
// message.
type Resolution struct {
	State    ResolutionState
	Function *program.Function
	Field    *program.Field
	Message  string
}

var notFound = Resolution{State: NotFound}

func resolvedFunction(fn *program.Function) Resolution {
	if fn == nil {
		return notFound
	}
	return Resolution{State: Resolved, Function: fn}
}

// resolveDynamic walks the superclass chain of cls and returns the first
// instance function named name. Private names match exactly like any
// other name.
func resolveDynamic(cls *program.Class, name string) *program.Function {
	for c := cls; c != nil; c = c.SuperClass() {
		if fn := c.LookupDynamicFunction(name); fn != nil {
			return fn
		}
	}
	return nil
}

// resolveSetter walks the superclass chain for the setter of name. Each
// class is checked for a final field of that name before its setter, so
// a final field is never written around. final is set when the walk
// stopped at a final field.
func resolveSetter(cls *program.Class, name string) (setter *program.Function, final bool) {
	setterName := program.SetterName(name)
	for c := cls; c != nil; c = c.SuperClass() {
		if f := c.LookupInstanceField(name); f != nil && f.Final {
			return nil, true
		}
		if fn := c.LookupDynamicFunction(setterName); fn != nil {
			return fn, false
		}
	}
	return nil, false
}

// resolveStatic looks only at the class's own declarations. Getters
// prefer a static field; setters prefer a non-final static field and fall
// back to a setter function, returning a final field only when no setter
// exists.
func resolveStatic(cls *program.Class, name string, member program.MemberKind) Resolution {
	switch member {
	case program.MemberGetter:
		if field := cls.LookupStaticField(name); field != nil {
			return Resolution{State: Resolved, Field: field}
		}
		return resolvedFunction(cls.LookupStaticFunction(program.GetterName(name)))
	case program.MemberSetter:
		field := cls.LookupStaticField(name)
		if field != nil && !field.Final {
			return Resolution{State: Resolved, Field: field}
		}
		if fn := cls.LookupStaticFunction(program.SetterName(name)); fn != nil {
			return resolvedFunction(fn)
		}
		if field != nil {
			return Resolution{State: Resolved, Field: field}
		}
		return notFound
	}
	return resolvedFunction(cls.LookupStaticFunction(name))
}

// resolveTopLevel looks name up in the scope of lib with the same field
// and accessor preferences as resolveStatic. Two imports defining the
// name resolve to Ambiguous.
func resolveTopLevel(lib *program.Library, name string, member program.MemberKind) Resolution {
	switch member {
	case program.MemberGetter:
		r := lookupTopLevel(lib, name)
		if r.State == Ambiguous || r.Field != nil {
			return r
		}
		return lookupTopLevelFunction(lib, program.GetterName(name))
	case program.MemberSetter:
		r := lookupTopLevel(lib, name)
		if r.State == Ambiguous || (r.Field != nil && !r.Field.Final) {
			return r
		}
		if s := lookupTopLevelFunction(lib, program.SetterName(name)); s.State != NotFound {
			return s
		}
		if r.Field != nil {
			return r
		}
		return notFound
	}
	return lookupTopLevelFunction(lib, name)
}

func lookupTopLevel(lib *program.Library, name string) Resolution {
	d, ambiguity := lib.Lookup(name)
	if ambiguity != "" {
		return Resolution{State: Ambiguous, Message: ambiguity}
	}
	switch d := d.(type) {
	case *program.Function:
		return Resolution{State: Resolved, Function: d}
	case *program.Field:
		return Resolution{State: Resolved, Field: d}
	}
	return notFound
}

func lookupTopLevelFunction(lib *program.Library, name string) Resolution {
	r := lookupTopLevel(lib, name)
	if r.State == Resolved && r.Function == nil {
		return notFound
	}
	return r
}

// resolveConstructor finds the constructor or factory labelled
// "Class.name" among the class's own functions.
func resolveConstructor(cls *program.Class, name string) Resolution {
	fn := cls.LookupFunction(program.ConstructorLabel(cls.Name(), name))
	if fn == nil || !(fn.IsConstructor() || fn.IsFactory()) {
		return notFound
	}
	return resolvedFunction(fn)
}

// needsGetter reports whether a read of field must go through its
// synthesized getter so the initializer runs on first observation.
func needsGetter(field *program.Field) bool {
	return field.Static && field.IsUninitialized()
}
