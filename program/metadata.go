package program

// MetadataSource supplies the annotation values attached to declarations.
type MetadataSource interface {
	Metadata(d Declaration) ([]Value, error)
}

// MemoryMetadata is an in-memory MetadataSource keyed by declaration
// identity.
type MemoryMetadata struct {
	entries map[Declaration][]Value
}

// NewMemoryMetadata creates an empty in-memory metadata source.
func NewMemoryMetadata() *MemoryMetadata {
	return &MemoryMetadata{entries: make(map[Declaration][]Value)}
}

// Annotate appends annotation values to d.
func (m *MemoryMetadata) Annotate(d Declaration, values ...Value) {
	m.entries[d] = append(m.entries[d], values...)
}

// Metadata returns the annotations of d in the order they were added.
func (m *MemoryMetadata) Metadata(d Declaration) ([]Value, error) {
	return m.entries[d], nil
}
