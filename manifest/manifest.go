// Package manifest handles mirrors.toml configuration: engine settings
// and a declarative description of the program to reflect on.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the manifest file.
const FileName = "mirrors.toml"

// Manifest represents a mirrors.toml file.
type Manifest struct {
	Project      Project               `toml:"project"`
	Engine       Engine                `toml:"engine"`
	Dependencies map[string]Dependency `toml:"dependencies"`
	Libraries    []Library             `toml:"library"`

	// Dir is the directory containing the mirrors.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Engine configures the execution context.
type Engine struct {
	DebugName    string `toml:"debug-name"`
	LogVerbosity int    `toml:"log-verbosity"`
	MaxCallDepth int    `toml:"max-call-depth"`
	// MetadataDB is a SQLite file holding annotations, relative to Dir.
	MetadataDB string `toml:"metadata-db"`
}

// Dependency is another manifest directory whose libraries are loaded
// before this one's.
type Dependency struct {
	Path string `toml:"path"`
}

// Library describes one library.
type Library struct {
	Name      string      `toml:"name"`
	URL       string      `toml:"url"`
	Root      bool        `toml:"root"`
	Imports   []Namespace `toml:"import"`
	Exports   []Namespace `toml:"export"`
	Classes   []Class     `toml:"class"`
	Fields    []Field     `toml:"field"`
	Functions []Function  `toml:"function"`
	Typedefs  []Typedef   `toml:"typedef"`
}

// Namespace is an import or export of a library by URL.
type Namespace struct {
	URL  string   `toml:"url"`
	Show []string `toml:"show"`
	Hide []string `toml:"hide"`
}

// Class describes a class declaration.
type Class struct {
	Name        string     `toml:"name"`
	Super       string     `toml:"super"`
	Interfaces  []string   `toml:"interfaces"`
	Abstract    bool       `toml:"abstract"`
	TypeParams  []string   `toml:"type-params"`
	Malformed   string     `toml:"malformed"`
	Annotations []any      `toml:"annotations"`
	Fields      []Field    `toml:"field"`
	Methods     []Function `toml:"method"`
}

// Field describes an instance, static or top-level variable. Value is the
// initial value of a static field; Lazy defers it to the first read.
type Field struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Static      bool   `toml:"static"`
	Final       bool   `toml:"final"`
	Lazy        bool   `toml:"lazy"`
	Value       any    `toml:"value"`
	Annotations []any  `toml:"annotations"`
}

// Function describes a method, accessor, constructor or top-level
// function. Kind is one of method, getter, setter, constructor, factory.
type Function struct {
	Name         string   `toml:"name"`
	Kind         string   `toml:"kind"`
	Static       bool     `toml:"static"`
	Abstract     bool     `toml:"abstract"`
	Hidden       bool     `toml:"hidden"`
	Params       []string `toml:"params"`
	Optional     int      `toml:"optional"`
	Result       string   `toml:"result"`
	Body         Body     `toml:"body"`
	CompileError string   `toml:"compile-error"`
	Source       string   `toml:"source"`
	Annotations  []any    `toml:"annotations"`
}

// Body is the behavior of a described function. At most one of Return,
// Param, Field, Assign and Fail is meaningful; an empty body returns nil.
type Body struct {
	// Return is a constant result.
	Return any `toml:"return"`
	// Param returns the explicit argument at this index.
	Param *int `toml:"param"`
	// Field returns the named field of the receiver, or of the class for
	// static functions.
	Field string `toml:"field"`
	// Assign stores the explicit arguments into these receiver fields in
	// order. Used by constructors and setters.
	Assign []string `toml:"assign"`
	// Fail returns a runtime failure with this message.
	Fail string `toml:"fail"`
}

// Typedef describes a named function type.
type Typedef struct {
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
	Result string   `toml:"result"`
}

// Load parses a mirrors.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Engine.DebugName == "" {
		m.Engine.DebugName = m.Project.Name
	}
	if m.Engine.DebugName == "" {
		m.Engine.DebugName = "main"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a mirrors.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// MetadataDBPath returns the absolute path of the metadata database, or ""
// when none is configured.
func (m *Manifest) MetadataDBPath() string {
	if m.Engine.MetadataDB == "" {
		return ""
	}
	if filepath.IsAbs(m.Engine.MetadataDB) {
		return m.Engine.MetadataDB
	}
	return filepath.Join(m.Dir, m.Engine.MetadataDB)
}
