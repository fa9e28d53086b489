// Package metadata stores declaration annotations in SQLite. A SQLStore
// is installed on a program.Store as its MetadataSource.
package metadata

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/mirrorcore/program"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("metadata")

// SQLStore keeps annotations keyed by the qualified declaration name.
// Values are stored as a JSON array, so only JSON-representable values
// (nil, bool, numbers, strings, and slices or maps of those) survive.
type SQLStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS annotations (
		decl TEXT PRIMARY KEY,
		data JSON NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened metadata store %s", path)
	return &SQLStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Annotate replaces the annotations of d.
func (s *SQLStore) Annotate(d program.Declaration, values ...program.Value) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding annotations of %s: %w", program.QualifiedName(d), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO annotations (decl, data) VALUES (?, json(?))",
		program.QualifiedName(d), string(data),
	)
	if err != nil {
		return fmt.Errorf("saving annotations: %w", err)
	}
	return nil
}

// Metadata returns the annotations of d, or nil when it has none.
func (s *SQLStore) Metadata(d program.Declaration) ([]program.Value, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM annotations WHERE decl = ?", program.QualifiedName(d)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	return decodeValues([]byte(data))
}

// Remove deletes the annotations of d.
func (s *SQLStore) Remove(d program.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM annotations WHERE decl = ?", program.QualifiedName(d)); err != nil {
		return fmt.Errorf("deleting annotations: %w", err)
	}
	return nil
}

// Keys lists every annotated declaration name in order.
func (s *SQLStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT decl FROM annotations ORDER BY decl")
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// decodeValues turns a JSON array back into values. Integral numbers
// become int64 and the rest float64, matching the host value model.
func decodeValues(data []byte) ([]program.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding annotations: %w", err)
	}
	values := make([]program.Value, len(raw))
	for i, v := range raw {
		values[i] = normalize(v)
	}
	return values, nil
}

func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = normalize(v[k])
		}
		return v
	}
	return v
}
