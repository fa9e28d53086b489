package wire

import (
	"testing"

	"github.com/chazu/mirrorcore/mirrors"
	"github.com/chazu/mirrorcore/program"
)

func testSnapshots(t *testing.T) (*mirrors.Snapshot, *mirrors.Snapshot) {
	t.Helper()
	store := program.NewStore()
	lib := store.NewLibrary("main", "app:main")
	cls := store.DeclareClass(lib, "Point", nil)
	norm := cls.AddFunction(program.NewFunction("norm", program.RegularFunction))

	f := mirrors.NewFactory(store, nil)
	owner := f.ClassMirror(cls, nil, nil)
	return owner.(*mirrors.Snapshot), f.MethodMirror(norm, owner).(*mirrors.Snapshot)
}

func TestRecord_CBORRoundTrip(t *testing.T) {
	_, method := testSnapshots(t)

	data, err := Marshal(method)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Kind != "Method" {
		t.Errorf("Kind: got %q, want Method", got.Kind)
	}
	if got.Name != "norm" {
		t.Errorf("Name: got %q, want norm", got.Name)
	}
	if got.Ref != "app:main::Point.norm" {
		t.Errorf("Ref: got %q", got.Ref)
	}
	if len(got.Fields) != mirrors.TupleLen(mirrors.MethodKind) {
		t.Fatalf("Fields: got %d, want %d", len(got.Fields), mirrors.TupleLen(mirrors.MethodKind))
	}
	if got.Fields[mirrors.MethodIsStatic] != false {
		t.Errorf("isStatic: got %v", got.Fields[mirrors.MethodIsStatic])
	}
	if _, ok := got.Fields[mirrors.MethodOwner].(map[any]any); !ok {
		t.Errorf("owner: got %T, want a nested record", got.Fields[mirrors.MethodOwner])
	}
}

func TestMarshalAll(t *testing.T) {
	class, method := testSnapshots(t)

	data, err := MarshalAll([]*mirrors.Snapshot{class, method})
	if err != nil {
		t.Fatalf("MarshalAll: %v", err)
	}
	got, err := UnmarshalAll(data)
	if err != nil {
		t.Fatalf("UnmarshalAll: %v", err)
	}
	if len(got) != 2 || got[0].Kind != "Class" || got[1].Kind != "Method" {
		t.Errorf("records: got %+v", got)
	}
	if got[0].Fields[mirrors.ClassType] != "Point" {
		t.Errorf("class type: got %v, want Point", got[0].Fields[mirrors.ClassType])
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	_, method := testSnapshots(t)
	a, err := Marshal(method)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(method)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("canonical encoding differs between runs")
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	if _, err := Unmarshal([]byte("not cbor")); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
