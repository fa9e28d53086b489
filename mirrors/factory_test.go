package mirrors

import (
	"errors"
	"testing"

	"github.com/chazu/mirrorcore/program"
)

func snapshot(t *testing.T, o Object) *Snapshot {
	t.Helper()
	s, ok := o.(*Snapshot)
	if !ok {
		t.Fatalf("mirror = %T, want *Snapshot", o)
	}
	return s
}

func TestReferenceRoundTrip(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Box", nil)
	param := cls.DeclareTypeParameter("T", nil)
	field := cls.AddField(program.NewField("value", false))
	fn := lib.AddFunction(program.NewFunction("main", program.RegularFunction))

	decls := []program.Declaration{lib, cls, param, field, fn}
	for _, d := range decls {
		r1, r2 := NewReference(d), NewReference(d)
		if r1.Referent() != d {
			t.Errorf("Referent() of %s lost identity", program.QualifiedName(d))
		}
		if r1 == r2 || !r1.Equal(r2) {
			t.Errorf("references to %s: distinct = %v, equal = %v", program.QualifiedName(d), r1 != r2, r1.Equal(r2))
		}
	}
	if NewReference(cls).Equal(NewReference(lib)) {
		t.Error("references to different declarations compare equal")
	}
}

func TestNewReferenceNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewReference(nil) did not panic")
		}
	}()
	NewReference(nil)
}

func TestClassMirrorRedirectsSignatureClasses(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	plain := store.DeclareClass(lib, "Point", nil)
	sig := program.NewFunction("call", program.RegularFunction, "x")
	typedef := store.DeclareTypedef(lib, "Callback", sig)
	canonical := store.SignatureClassFor(sig)

	f := NewFactory(store, nil)
	tests := []struct {
		cls  *program.Class
		want Kind
	}{
		{plain, ClassKind},
		{typedef, TypedefKind},
		{canonical, FunctionTypeKind},
	}
	for _, tt := range tests {
		s := snapshot(t, f.ClassMirror(tt.cls, nil, nil))
		if s.Kind != tt.want {
			t.Errorf("ClassMirror(%s).Kind = %v, want %v", tt.cls.Name(), s.Kind, tt.want)
		}
		if !s.Ref().Equal(NewReference(tt.cls)) {
			t.Errorf("ClassMirror(%s) reference does not resolve to the class", tt.cls.Name())
		}
	}
}

func TestClassMirrorGenericFlag(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	box := store.DeclareClass(lib, "Box", nil)
	box.DeclareTypeParameter("T", nil)
	plain := store.DeclareClass(lib, "Plain", nil)

	f := NewFactory(store, nil)
	if s := snapshot(t, f.ClassMirror(box, nil, nil)); !s.Bool(ClassIsGeneric) || s.Name() != "Box" {
		t.Errorf("Box mirror = %v", s.Fields)
	}
	if s := snapshot(t, f.ClassMirror(plain, nil, nil)); s.Bool(ClassIsGeneric) {
		t.Error("Plain mirror reports generic")
	}
}

func TestTypeMirrorRouting(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	box := store.DeclareClass(lib, "Box", nil)
	param := box.DeclareTypeParameter("T", nil)

	f := NewFactory(store, nil)
	void1, void2 := f.TypeMirror(store.VoidType()), f.TypeMirror(store.VoidType())
	if void1 != void2 {
		t.Error("void mirror is not a singleton")
	}
	if s := snapshot(t, void1); s.Kind != SpecialTypeKind || s.Name() != VoidName {
		t.Errorf("void mirror = %v", s)
	}
	if f.TypeMirror(store.DynamicType()) != f.TypeMirror(nil) {
		t.Error("nil type and dynamic differ")
	}
	bounded := &program.BoundedType{Type: param.Use(), Bound: store.IntClass.RareType()}
	for _, use := range []program.TypeUse{param.Use(), bounded} {
		if s := snapshot(t, f.TypeMirror(use)); s.Kind != TypeVariableKind || s.Name() != "T" {
			t.Errorf("TypeMirror(%s) = %v", use, s)
		}
	}
	if s := snapshot(t, f.TypeMirror(program.NewClassType(box, store.IntClass.RareType()))); s.Kind != ClassKind {
		t.Errorf("TypeMirror(Box<int>).Kind = %v", s.Kind)
	}
}

func TestTypeMirrorMalformedPanics(t *testing.T) {
	f := NewFactory(program.NewStore(), nil)
	defer func() {
		if recover() == nil {
			t.Error("TypeMirror of a malformed type did not panic")
		}
	}()
	f.TypeMirror(&program.MalformedType{Reason: "unknown type 'Foo'"})
}

func TestTypeArgumentsTrailingSlice(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	pair := store.DeclareClass(lib, "Pair", nil)
	pair.DeclareTypeParameter("K", nil)
	pair.DeclareTypeParameter("V", nil)

	intT, strT, boolT := store.IntClass.RareType(), store.StringClass.RareType(), store.BoolClass.RareType()
	f := NewFactory(store, nil)

	// One inherited argument (int) precedes the two own arguments.
	args := f.TypeArguments(program.NewClassType(pair, intT, strT, boolT))
	if len(args) != 2 {
		t.Fatalf("len(TypeArguments) = %d, want 2", len(args))
	}
	for i, want := range []string{"String", "bool"} {
		if got := snapshot(t, args[i]).Name(); got != want {
			t.Errorf("TypeArguments[%d] = %s, want %s", i, got, want)
		}
	}

	raw := f.TypeArguments(pair.RareType())
	if len(raw) != 2 || raw[0] != f.SpecialTypeMirror(DynamicName) || raw[1] != raw[0] {
		t.Errorf("TypeArguments(raw) = %v, want [dynamic dynamic]", raw)
	}
	if got := f.TypeArguments(store.IntClass.RareType()); len(got) != 0 {
		t.Errorf("TypeArguments(int) = %v, want empty", got)
	}
}

func TestTypeVariablesFlatPairs(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	pair := store.DeclareClass(lib, "Pair", nil)
	pair.DeclareTypeParameter("K", nil)
	v := pair.DeclareTypeParameter("V", nil)

	f := NewFactory(store, nil)
	vars := f.TypeVariables(pair)
	if len(vars) != 4 || vars[0] != "K" || vars[2] != "V" {
		t.Fatalf("TypeVariables = %v", vars)
	}
	ref, ok := vars[3].(*Reference)
	if !ok || ref.Referent() != program.Declaration(v) {
		t.Errorf("TypeVariables[3] = %v, want a reference to V", vars[3])
	}
	if got := f.TypeVariables(store.DeclareClass(lib, "Plain", nil)); len(got) != 0 {
		t.Errorf("TypeVariables(Plain) = %v, want empty", got)
	}
}

func TestMethodMirrorTuple(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Point", nil)
	ctor := cls.AddConstructor("origin")
	getter := cls.AddFunction(program.NewFunction("get:norm", program.GetterFunction))

	f := NewFactory(store, nil)
	owner := f.ClassMirror(cls, nil, nil)
	tests := []struct {
		fn   *program.Function
		name string
		idx  int
	}{
		{ctor, "Point.origin", MethodIsConstructor},
		{getter, "norm", MethodIsGetter},
	}
	for _, tt := range tests {
		s := snapshot(t, f.MethodMirror(tt.fn, owner))
		if len(s.Fields) != 12 {
			t.Fatalf("method tuple length = %d, want 12", len(s.Fields))
		}
		if s.Name() != tt.name || !s.Bool(tt.idx) || s.Fields[MethodOwner] != owner {
			t.Errorf("MethodMirror(%s) = %v", tt.fn.Name(), s.Fields)
		}
		for i := MethodIsConstConstructor; i <= MethodIsFactoryConstructor; i++ {
			if s.Fields[i] != false {
				t.Errorf("subkind slot %d = %v, want false", i, s.Fields[i])
			}
		}
	}
}

func TestParameterMirrorsSkipReceiver(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Calc", nil)
	fn := cls.AddFunction(program.NewFunction("add", program.RegularFunction, "a", "b", "c"))
	fn.NumOptional = 1

	f := NewFactory(store, nil)
	params := f.ParameterMirrors(fn, nil)
	if len(params) != 3 {
		t.Fatalf("len(ParameterMirrors) = %d, want 3", len(params))
	}
	for i, want := range []bool{false, false, true} {
		s := snapshot(t, params[i])
		if s.Fields[ParameterPosition] != i || s.Bool(ParameterIsOptional) != want {
			t.Errorf("param %d = %v", i, s.Fields)
		}
	}
}

func TestVariableMirrorLeavesTypeLazy(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	field := lib.AddField(program.NewStaticField("limit", true, int64(10)))
	field.Type = store.IntClass.RareType()

	f := NewFactory(store, nil)
	s := snapshot(t, f.VariableMirror(field, nil))
	if s.Fields[VariableType] != nil || !s.Bool(VariableIsStatic) || !s.Bool(VariableIsFinal) {
		t.Errorf("VariableMirror = %v", s.Fields)
	}
	if got := snapshot(t, f.VariableType(s.Ref())).Name(); got != "int" {
		t.Errorf("VariableType = %s, want int", got)
	}
}

func TestClassMembersAndConstructors(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Point", nil)
	cls.AddField(program.NewField("x", false))
	cls.AddFunction(program.NewFunction("norm", program.RegularFunction))
	hidden := cls.AddFunction(program.NewFunction("_impl", program.RegularFunction))
	hidden.Hidden = true
	cls.AddConstructor("")
	cls.AddFactory("parse", "s")

	f := NewFactory(store, nil)
	ref := NewReference(cls)
	members, err := f.ClassMembers(nil, ref)
	if err != nil {
		t.Fatalf("ClassMembers failed: %v", err)
	}
	var names []string
	for _, m := range members {
		names = append(names, snapshot(t, m).Name())
	}
	if len(names) != 2 || names[0] != "x" || names[1] != "norm" {
		t.Errorf("ClassMembers = %v, want [x norm]", names)
	}
	if !cls.IsFinalized() {
		t.Error("ClassMembers did not finalize the class")
	}

	ctors, err := f.ClassConstructors(nil, ref)
	if err != nil || len(ctors) != 2 {
		t.Fatalf("ClassConstructors = (%v, %v), want 2 mirrors", ctors, err)
	}
}

func TestInterfacesOfMalformedClass(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Broken", nil)
	cls.MarkMalformed("unknown interface 'Shape'")

	_, err := NewFactory(store, nil).Interfaces(NewReference(cls))
	var mce *MirroredCompilationError
	if !errors.As(err, &mce) || mce.Reason != Deferred {
		t.Fatalf("Interfaces error = %v, want a deferred MirroredCompilationError", err)
	}
	var ce *program.CompileError
	if errors.As(err, &ce) {
		t.Error("internal compile error leaked through")
	}
}

func TestLibraryMembersSkipImplicit(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	store.DeclareClass(lib, "Point", nil)
	lib.AddField(program.NewLazyStaticField("config", true, func([]program.Value) (program.Value, error) { return nil, nil }))
	lib.AddFunction(program.NewFunction("main", program.RegularFunction))

	f := NewFactory(store, nil)
	members := f.LibraryMembers(nil, NewReference(lib))
	kinds := make([]Kind, len(members))
	for i, m := range members {
		kinds[i] = snapshot(t, m).Kind
	}
	want := []Kind{ClassKind, VariableKind, MethodKind}
	if len(kinds) != len(want) {
		t.Fatalf("LibraryMembers kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("LibraryMembers[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestFunctionTypeQueries(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	sig := program.NewFunction("call", program.RegularFunction, "n")
	sig.Result = store.BoolClass.RareType()
	typedef := store.DeclareTypedef(lib, "Predicate", sig)

	f := NewFactory(store, nil)
	referent := snapshot(t, f.TypedefReferent(NewReference(typedef)))
	if referent.Kind != FunctionTypeKind {
		t.Fatalf("TypedefReferent kind = %v", referent.Kind)
	}
	fnType := referent.Ref()
	if got := snapshot(t, f.FunctionTypeReturnType(fnType)).Name(); got != "bool" {
		t.Errorf("FunctionTypeReturnType = %s, want bool", got)
	}
	if params := f.FunctionTypeParameters(nil, fnType); len(params) != 1 {
		t.Errorf("FunctionTypeParameters = %v, want 1", params)
	}
}

func TestReflectRoutesClosures(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	fn := lib.AddFunction(program.NewFunction("main", program.RegularFunction))

	f := NewFactory(store, nil)
	closure := &program.Closure{Function: fn}
	if s := snapshot(t, f.Reflect(closure)); s.Kind != ClosureKind || !s.Ref().Equal(NewReference(fn)) {
		t.Errorf("Reflect(closure) = %v", s)
	}
	s := snapshot(t, f.Reflect(int64(3)))
	if s.Kind != InstanceKind || s.Ref().Referent() != store.IntClass {
		t.Errorf("Reflect(3) = %v", s)
	}
}

func TestMirrorSystem(t *testing.T) {
	store := program.NewStore()
	store.NewLibrary("main", "app:main")
	store.NewLibrary("util", "app:util")

	s := snapshot(t, NewFactory(store, nil).MirrorSystem("worker"))
	libs := s.Fields[MirrorSystemLibraries].([]Object)
	if len(libs) != 3 {
		t.Errorf("libraries = %d, want 3 (core, main, util)", len(libs))
	}
	ctx := snapshot(t, s.Fields[MirrorSystemExecutionContext])
	if ctx.Name() != "worker" || snapshot(t, ctx.Fields[ExecutionContextRootLibrary]).Name() != "main" {
		t.Errorf("execution context mirror = %v", ctx.Fields)
	}
}

func TestMetadata(t *testing.T) {
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Point", nil)
	store.MemoryMetadata().Annotate(cls, "deprecated")

	values, err := NewFactory(store, nil).Metadata(NewReference(cls))
	if err != nil || len(values) != 1 || values[0] != "deprecated" {
		t.Errorf("Metadata = (%v, %v), want [deprecated]", values, err)
	}
}

func TestCustomPresenter(t *testing.T) {
	store := program.NewStore()
	var kinds []Kind
	f := NewFactory(store, PresenterFunc(func(kind Kind, fields Tuple) Object {
		kinds = append(kinds, kind)
		return kind
	}))
	if got := f.LibraryMirror(store.Core()); got != LibraryKind {
		t.Errorf("LibraryMirror = %v", got)
	}
	if len(kinds) != 1 {
		t.Errorf("presenter calls = %v", kinds)
	}
}
