package mirrors

import (
	"testing"

	"github.com/chazu/mirrorcore/program"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func TestIsLocalEndpoint(t *testing.T) {
	reg := NewEndpointRegistry()
	a := NewContext(program.NewStore(), WithEndpoints(reg))
	b := NewContext(program.NewStore(), WithEndpoints(reg))

	ea := a.OpenEndpoint()
	eb := b.OpenEndpoint()

	tests := []struct {
		ctx  *Context
		id   EndpointID
		want bool
	}{
		{a, ea, true},
		{a, eb, false},
		{b, eb, true},
		{a, uuid.New(), false},
	}
	for i, tt := range tests {
		if got := tt.ctx.IsLocalEndpoint(tt.id); got != tt.want {
			t.Errorf("case %d: IsLocalEndpoint = %v, want %v", i, got, tt.want)
		}
	}

	a.Close()
	if a.IsLocalEndpoint(ea) {
		t.Error("endpoint still local after Close")
	}
	if !b.IsLocalEndpoint(eb) {
		t.Error("closing one context removed another's endpoint")
	}
}

func TestEndpointRegistryConcurrentReaders(t *testing.T) {
	reg := NewEndpointRegistry()
	owner := uuid.New()
	ids := make([]EndpointID, 32)
	for i := range ids {
		ids[i] = reg.Open(owner)
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for _, id := range ids {
				if got, ok := reg.Owner(id); !ok || got != owner {
					t.Errorf("Owner(%s) = (%s, %v)", id, got, ok)
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 16; i++ {
			reg.Close(reg.Open(uuid.New()))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if reg.Count() != len(ids) {
		t.Errorf("Count = %d, want %d", reg.Count(), len(ids))
	}
	if n := reg.CloseAll(owner); n != len(ids) {
		t.Errorf("CloseAll = %d, want %d", n, len(ids))
	}
}

func TestContextDefaults(t *testing.T) {
	store := program.NewStore()
	store.NewLibrary("main", "app:main")
	ctx := NewContext(store, WithEndpoints(NewEndpointRegistry()), WithMaxCallDepth(16))

	if ctx.DebugName == "" || ctx.ID == uuid.Nil {
		t.Errorf("context identity = (%q, %s)", ctx.DebugName, ctx.ID)
	}
	if _, ok := ctx.Engine.(*program.Executor); !ok {
		t.Fatalf("default engine = %T, want *program.Executor", ctx.Engine)
	}
	s := snapshot(t, ctx.ExecutionContextMirror())
	if s.Name() != ctx.DebugName {
		t.Errorf("execution context mirror name = %q, want %q", s.Name(), ctx.DebugName)
	}
}
