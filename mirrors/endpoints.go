package mirrors

import (
	"sync"

	"github.com/google/uuid"
)

// EndpointID identifies a communication endpoint of an execution context.
type EndpointID = uuid.UUID

// EndpointRegistry maps live endpoints to the execution context owning
// them. It is shared by every context in the process; reads may come from
// any goroutine.
type EndpointRegistry struct {
	mu     sync.RWMutex
	owners map[EndpointID]uuid.UUID
}

// NewEndpointRegistry creates an empty registry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{owners: make(map[EndpointID]uuid.UUID)}
}

var defaultEndpoints = NewEndpointRegistry()

// DefaultEndpoints returns the process-wide registry.
func DefaultEndpoints() *EndpointRegistry { return defaultEndpoints }

// Open registers a new endpoint owned by the context contextID.
func (r *EndpointRegistry) Open(contextID uuid.UUID) EndpointID {
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[id] = contextID
	return id
}

// Close removes an endpoint. Closing an unknown endpoint is a no-op.
func (r *EndpointRegistry) Close(id EndpointID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, id)
}

// CloseAll removes every endpoint owned by contextID and returns how many
// were removed.
func (r *EndpointRegistry) CloseAll(contextID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, owner := range r.owners {
		if owner == contextID {
			delete(r.owners, id)
			n++
		}
	}
	return n
}

// Owner returns the context owning id.
func (r *EndpointRegistry) Owner(id EndpointID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	return owner, ok
}

// Count returns the number of live endpoints.
func (r *EndpointRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}
