package program

import "fmt"

// CoreLibraryURL is the URL of the built-in system library.
const CoreLibraryURL = SystemScheme + "core"

// Store owns every library of one execution context.
type Store struct {
	libraries []*Library
	byURL     map[string]*Library
	root      *Library
	core      *Library

	ObjectClass     *Class
	NullClass       *Class
	BoolClass       *Class
	IntClass        *Class
	DoubleClass     *Class
	StringClass     *Class
	FunctionClass   *Class
	TypeClass       *Class
	InvocationClass *Class

	// VoidClass and DynamicClass back the special types; they are not
	// declared in any library dictionary.
	VoidClass    *Class
	DynamicClass *Class

	signatures map[*Function]*Class
	metadata   MetadataSource
}

// NewStore creates a store holding only the core library.
func NewStore() *Store {
	s := &Store{
		byURL:      make(map[string]*Library),
		signatures: make(map[*Function]*Class),
		metadata:   NewMemoryMetadata(),
	}
	s.core = NewLibrary("core", CoreLibraryURL)
	s.ObjectClass = s.core.AddClass(NewClass("Object"))
	s.NullClass = s.DeclareClass(s.core, "Null", nil)
	s.BoolClass = s.DeclareClass(s.core, "bool", nil)
	s.IntClass = s.DeclareClass(s.core, "int", nil)
	s.DoubleClass = s.DeclareClass(s.core, "double", nil)
	s.StringClass = s.DeclareClass(s.core, "String", nil)
	s.FunctionClass = s.DeclareClass(s.core, "Function", nil)
	s.FunctionClass.Abstract = true
	s.TypeClass = s.DeclareClass(s.core, "Type", nil)
	s.InvocationClass = s.DeclareClass(s.core, "Invocation", nil)

	s.VoidClass = NewClass("void")
	s.VoidClass.library = s.core
	s.DynamicClass = NewClass("dynamic")
	s.DynamicClass.library = s.core

	s.AddLibrary(s.core)
	return s
}

// Core returns the built-in system library.
func (s *Store) Core() *Library { return s.core }

// AddLibrary registers a library. The first non-system library added
// becomes the root library unless SetRoot is called.
func (s *Store) AddLibrary(lib *Library) *Library {
	if _, exists := s.byURL[lib.url]; exists {
		panic(fmt.Sprintf("program: duplicate library %q", lib.url))
	}
	s.libraries = append(s.libraries, lib)
	s.byURL[lib.url] = lib
	if s.root == nil && !lib.IsSystem() {
		s.root = lib
	}
	return lib
}

// NewLibrary creates a library importing the core library and registers it.
func (s *Store) NewLibrary(name, url string) *Library {
	lib := NewLibrary(name, url)
	lib.Import(s.core)
	return s.AddLibrary(lib)
}

// SetRoot marks lib as the root library.
func (s *Store) SetRoot(lib *Library) { s.root = lib }

// RootLibrary returns the root library, or nil.
func (s *Store) RootLibrary() *Library { return s.root }

// Libraries returns every registered library in registration order.
func (s *Store) Libraries() []*Library { return s.libraries }

// LibraryByURL finds a library by URL.
func (s *Store) LibraryByURL(url string) *Library { return s.byURL[url] }

// DeclareClass creates a class in lib extending super (Object when nil).
func (s *Store) DeclareClass(lib *Library, name string, super *Class) *Class {
	if super == nil {
		super = s.ObjectClass
	}
	c := NewClass(name)
	c.Super = super.RareType()
	return lib.AddClass(c)
}

// DeclareTypedef creates a named signature class in lib.
func (s *Store) DeclareTypedef(lib *Library, name string, signature *Function) *Class {
	c := s.DeclareClass(lib, name, s.FunctionClass)
	s.attachSignature(c, signature)
	return c
}

// SignatureClassFor returns the canonical signature class (function type)
// of fn, creating it on first use.
func (s *Store) SignatureClassFor(fn *Function) *Class {
	if c, ok := s.signatures[fn]; ok {
		return c
	}
	c := NewClass(fmt.Sprintf("(%s) => %s", joinParamTypes(fn), typeString(fn.Result)))
	c.Super = s.FunctionClass.RareType()
	c.library = s.core
	c.Canonical = true
	c.Signature = fn
	s.signatures[fn] = c
	return c
}

func (s *Store) attachSignature(c *Class, fn *Function) {
	sig := *fn
	sig.Kind = SignatureFunction
	sig.owner = c
	sig.Static = true
	c.Signature = &sig
}

func joinParamTypes(fn *Function) string {
	out := ""
	for i, p := range fn.Params {
		if i > 0 {
			out += ", "
		}
		out += typeString(p.Type)
	}
	return out
}

// VoidType returns the void type.
func (s *Store) VoidType() *ClassType { return s.VoidClass.RareType() }

// DynamicType returns the dynamic type.
func (s *Store) DynamicType() *ClassType { return s.DynamicClass.RareType() }

// ClassOf returns the runtime class of v.
func (s *Store) ClassOf(v Value) *Class {
	switch v := v.(type) {
	case nil:
		return s.NullClass
	case bool:
		return s.BoolClass
	case int, int32, int64:
		return s.IntClass
	case float32, float64:
		return s.DoubleClass
	case string:
		return s.StringClass
	case *Instance:
		return v.Class
	case *Closure:
		return s.SignatureClassFor(v.Function)
	case *TypeValue:
		return s.TypeClass
	case *Invocation:
		return s.InvocationClass
	}
	return s.ObjectClass
}

// SetMetadataSource replaces the metadata source.
func (s *Store) SetMetadataSource(m MetadataSource) { s.metadata = m }

// Metadata returns the annotations attached to d.
func (s *Store) Metadata(d Declaration) ([]Value, error) {
	if s.metadata == nil {
		return nil, nil
	}
	return s.metadata.Metadata(d)
}

// MemoryMetadata returns the in-memory metadata source, or nil when a
// different source is installed.
func (s *Store) MemoryMetadata() *MemoryMetadata {
	m, _ := s.metadata.(*MemoryMetadata)
	return m
}
