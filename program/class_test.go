package program

import (
	"errors"
	"testing"
)

func TestClassFinalizeAssignsSlots(t *testing.T) {
	s := NewStore()
	lib := s.NewLibrary("app", "app:main")
	base := s.DeclareClass(lib, "Base", nil)
	base.AddField(NewField("a", false))
	sub := s.DeclareClass(lib, "Sub", base)
	b := sub.AddField(NewField("b", false))
	sub.AddField(NewStaticField("count", false, int64(0)))

	if err := sub.EnsureFinalized(); err != nil {
		t.Fatalf("EnsureFinalized failed: %v", err)
	}
	if !base.IsFinalized() {
		t.Error("superclass not finalized with subclass")
	}
	if sub.NumSlots() != 2 {
		t.Errorf("NumSlots = %d, want 2", sub.NumSlots())
	}
	if b.Slot() != 1 {
		t.Errorf("slot of b = %d, want 1", b.Slot())
	}
}

func TestClassImplicitAccessors(t *testing.T) {
	s := NewStore()
	lib := s.NewLibrary("app", "app:main")
	c := s.DeclareClass(lib, "Point", nil)
	c.AddField(NewField("x", false))
	c.AddField(NewField("id", true))

	tests := []struct {
		name string
		kind FunctionKind
		want bool
	}{
		{"get:x", ImplicitGetter, true},
		{"set:x", ImplicitSetter, true},
		{"get:id", ImplicitGetter, true},
		{"set:id", ImplicitSetter, false},
	}
	for _, tt := range tests {
		fn := c.LookupDynamicFunction(tt.name)
		if (fn != nil) != tt.want {
			t.Errorf("LookupDynamicFunction(%q) found = %v, want %v", tt.name, fn != nil, tt.want)
			continue
		}
		if fn != nil && fn.Kind != tt.kind {
			t.Errorf("%s kind = %v, want %v", tt.name, fn.Kind, tt.kind)
		}
	}
}

func TestClassUserAccessorWins(t *testing.T) {
	s := NewStore()
	lib := s.NewLibrary("app", "app:main")
	c := s.DeclareClass(lib, "Temp", nil)
	user := c.AddFunction(NewFunction("get:celsius", GetterFunction))
	c.AddField(NewField("celsius", false))

	if got := c.LookupDynamicFunction("get:celsius"); got != user {
		t.Errorf("get:celsius = %v, want the user getter", got)
	}
}

func TestClassFinalizeDefect(t *testing.T) {
	s := NewStore()
	lib := s.NewLibrary("app", "app:main")
	c := s.DeclareClass(lib, "Broken", nil)
	c.MarkMalformed("unknown mixin 'M'")

	err := c.EnsureFinalized()
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("EnsureFinalized = %v, want *CompileError", err)
	}
	if again := c.EnsureFinalized(); again != err {
		t.Error("second EnsureFinalized returned a different error")
	}

	sub := s.DeclareClass(lib, "Derived", c)
	if err := sub.EnsureFinalized(); !errors.As(err, &ce) {
		t.Errorf("subclass EnsureFinalized = %v, want *CompileError", err)
	}
}

func TestClassCyclicSuperclass(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B")
	a.Super = b.RareType()
	b.Super = a.RareType()

	var ce *CompileError
	if err := a.EnsureFinalized(); !errors.As(err, &ce) {
		t.Errorf("EnsureFinalized = %v, want *CompileError", err)
	}
}

func TestFunctionArity(t *testing.T) {
	s := NewStore()
	lib := s.NewLibrary("app", "app:main")
	c := s.DeclareClass(lib, "Calc", nil)
	add := c.AddFunction(NewFunction("add", RegularFunction, "a", "b"))
	add.NumOptional = 1
	stat := c.AddFunction(NewFunction("make", RegularFunction, "n"))
	stat.Static = true
	ctor := c.AddConstructor("named", "v")

	tests := []struct {
		fn    *Function
		count int
		want  bool
	}{
		{add, 1, false},
		{add, 2, true},
		{add, 3, true},
		{add, 4, false},
		{stat, 1, true},
		{stat, 2, false},
		{ctor, 2, true},
		{ctor, 1, false},
	}
	for _, tt := range tests {
		if got := tt.fn.AreValidArguments(tt.count); got != tt.want {
			t.Errorf("%s.AreValidArguments(%d) = %v, want %v", tt.fn.Name(), tt.count, got, tt.want)
		}
	}
	if ctor.Name() != "Calc.named" {
		t.Errorf("constructor label = %q, want Calc.named", ctor.Name())
	}
	if ctor.DisplayName() != "Calc.named" {
		t.Errorf("constructor display name = %q", ctor.DisplayName())
	}
}

func TestDisplayNames(t *testing.T) {
	tests := []struct {
		fn   *Function
		want string
	}{
		{NewFunction("get:x", GetterFunction), "x"},
		{NewFunction("set:x", SetterFunction, "v"), "x="},
		{NewFunction("Point.", ConstructorFunction), "Point"},
		{NewFunction("_hidden", RegularFunction), "_hidden"},
	}
	for _, tt := range tests {
		if got := tt.fn.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.fn.Name(), got, tt.want)
		}
	}
}
