package mirrors

import (
	"github.com/chazu/mirrorcore/program"
	"github.com/google/uuid"
)

// Context is one execution context seen through mirrors: its program, the
// engine running its code, and the factory and dispatcher built on them.
// All of it belongs to a single mutator goroutine except the endpoint
// registry.
type Context struct {
	ID        uuid.UUID
	DebugName string

	Store      *program.Store
	Engine     Engine
	Factory    *Factory
	Dispatcher *Dispatcher

	endpoints *EndpointRegistry
}

type contextConfig struct {
	debugName string
	engine    Engine
	presenter Presenter
	endpoints *EndpointRegistry
	maxDepth  int
}

// ContextOption configures a Context.
type ContextOption func(*contextConfig)

// WithDebugName sets the name reported by the execution context mirror.
func WithDebugName(name string) ContextOption {
	return func(c *contextConfig) { c.debugName = name }
}

// WithEngine replaces the default *program.Executor.
func WithEngine(e Engine) ContextOption {
	return func(c *contextConfig) { c.engine = e }
}

// WithPresenter sets the presenter mirrors are built with.
func WithPresenter(p Presenter) ContextOption {
	return func(c *contextConfig) { c.presenter = p }
}

// WithEndpoints uses r instead of the process-wide registry.
func WithEndpoints(r *EndpointRegistry) ContextOption {
	return func(c *contextConfig) { c.endpoints = r }
}

// WithMaxCallDepth bounds nesting in the default executor and in the
// dispatcher's "call" sends.
func WithMaxCallDepth(n int) ContextOption {
	return func(c *contextConfig) { c.maxDepth = n }
}

// NewContext creates an execution context over store.
func NewContext(store *program.Store, opts ...ContextOption) *Context {
	cfg := contextConfig{endpoints: DefaultEndpoints()}
	for _, opt := range opts {
		opt(&cfg)
	}
	id := uuid.New()
	if cfg.debugName == "" {
		cfg.debugName = "main-" + id.String()[:8]
	}
	if cfg.engine == nil {
		exec := program.NewExecutor(store)
		exec.SetMaxCallDepth(cfg.maxDepth)
		cfg.engine = exec
	}
	dispatcher := NewDispatcher(store, cfg.engine)
	dispatcher.SetMaxCallDepth(cfg.maxDepth)
	return &Context{
		ID:         id,
		DebugName:  cfg.debugName,
		Store:      store,
		Engine:     cfg.engine,
		Factory:    NewFactory(store, cfg.presenter),
		Dispatcher: dispatcher,
		endpoints:  cfg.endpoints,
	}
}

// MirrorSystem builds the mirror system of the context.
func (c *Context) MirrorSystem() Object { return c.Factory.MirrorSystem(c.DebugName) }

// ExecutionContextMirror builds the mirror of the context itself.
func (c *Context) ExecutionContextMirror() Object {
	return c.Factory.ExecutionContextMirror(c.DebugName)
}

// OpenEndpoint registers a new endpoint owned by the context.
func (c *Context) OpenEndpoint() EndpointID { return c.endpoints.Open(c.ID) }

// IsLocalEndpoint reports whether id is a live endpoint of this context.
func (c *Context) IsLocalEndpoint(id EndpointID) bool {
	owner, ok := c.endpoints.Owner(id)
	return ok && owner == c.ID
}

// Close releases the context's endpoints.
func (c *Context) Close() { c.endpoints.CloseAll(c.ID) }
