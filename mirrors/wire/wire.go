// Package wire encodes mirror snapshots as CBOR records for tools that
// inspect a program outside the process.
package wire

import (
	"fmt"

	"github.com/chazu/mirrorcore/mirrors"
	"github.com/chazu/mirrorcore/program"
	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Record is the encoded form of one mirror. References become qualified
// declaration names, types their printed form, and nested mirrors nested
// records.
type Record struct {
	Kind   string `cbor:"kind"`
	Name   string `cbor:"name,omitempty"`
	Ref    string `cbor:"ref,omitempty"`
	Fields []any  `cbor:"fields"`
}

// FromSnapshot converts a snapshot into a record.
func FromSnapshot(s *mirrors.Snapshot) *Record {
	r := &Record{Kind: s.Kind.String(), Name: s.Name()}
	if ref := s.Ref(); ref != nil {
		r.Ref = program.QualifiedName(ref.Referent())
	}
	r.Fields = make([]any, len(s.Fields))
	for i, f := range s.Fields {
		r.Fields[i] = encodeField(f)
	}
	return r
}

func encodeField(v any) any {
	switch v := v.(type) {
	case nil, bool, int, int64, float64, string:
		return v
	case *mirrors.Reference:
		return program.QualifiedName(v.Referent())
	case *mirrors.Snapshot:
		return FromSnapshot(v)
	case []mirrors.Object:
		out := make([]any, len(v))
		for i, o := range v {
			out[i] = encodeField(o)
		}
		return out
	case program.TypeUse:
		return v.String()
	}
	return program.FormatValue(v)
}

// Marshal encodes a snapshot with canonical CBOR.
func Marshal(s *mirrors.Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(FromSnapshot(s))
}

// MarshalAll encodes several snapshots as one CBOR array.
func MarshalAll(snapshots []*mirrors.Snapshot) ([]byte, error) {
	records := make([]*Record, len(snapshots))
	for i, s := range snapshots {
		records[i] = FromSnapshot(s)
	}
	return cborEncMode.Marshal(records)
}

// Unmarshal decodes one record. Nested records decode as generic maps.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: unmarshal record: %w", err)
	}
	return &r, nil
}

// UnmarshalAll decodes an array written by MarshalAll.
func UnmarshalAll(data []byte) ([]*Record, error) {
	var rs []*Record
	if err := cbor.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("wire: unmarshal records: %w", err)
	}
	return rs, nil
}
