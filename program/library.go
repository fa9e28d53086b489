package program

import (
	"fmt"
	"strings"
)

// SystemScheme prefixes the URLs of system libraries. Declarations
// imported from system libraries are hidden by user declarations of the
// same name instead of making a lookup ambiguous.
const SystemScheme = "core:"

// Namespace is an import or export of a library, filtered by show and hide
// combinators. Names in Show and Hide are user names (no accessor prefix).
type Namespace struct {
	Library *Library
	Show    []string
	Hide    []string
}

func (ns *Namespace) allows(name string) bool {
	user := UserName(name)
	for _, h := range ns.Hide {
		if h == user {
			return false
		}
	}
	if len(ns.Show) == 0 {
		return true
	}
	for _, s := range ns.Show {
		if s == user {
			return true
		}
	}
	return false
}

// lookup finds a public name exported through this namespace.
func (ns *Namespace) lookup(name string, visited map[*Library]bool) Declaration {
	if ns.Library == nil || !ns.allows(name) || IsPrivate(name) {
		return nil
	}
	if d := ns.Library.LookupLocal(name); d != nil {
		return d
	}
	return ns.Library.lookupReExport(name, visited)
}

// ---------------------------------------------------------------------------
// Library
// ---------------------------------------------------------------------------

// Library is a compilation unit: a dictionary of classes, top-level fields
// and top-level functions, plus its imports and exports.
type Library struct {
	name string
	url  string

	entries map[string]Declaration
	order   []Declaration

	Imports []*Namespace
	Exports []*Namespace
}

// NewLibrary creates an empty library.
func NewLibrary(name, url string) *Library {
	return &Library{name: name, url: url, entries: make(map[string]Declaration)}
}

// Name returns the declared library name.
func (l *Library) Name() string { return l.name }

// URL returns the canonical location of the library.
func (l *Library) URL() string { return l.url }

// IsSystem reports whether the library is a system library.
func (l *Library) IsSystem() bool { return strings.HasPrefix(l.url, SystemScheme) }

// Declarations returns the library's own declarations in declaration order.
func (l *Library) Declarations() []Declaration { return l.order }

func (l *Library) add(key string, d Declaration) {
	if old, exists := l.entries[key]; exists {
		for i, o := range l.order {
			if o == old {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
	l.entries[key] = d
	l.order = append(l.order, d)
}

// AddClass declares a class in the library.
func (l *Library) AddClass(c *Class) *Class {
	c.library = l
	l.add(c.name, c)
	return c
}

// AddField declares a top-level field. Lazily initialized fields get an
// implicit static getter stored beside them.
func (l *Library) AddField(f *Field) *Field {
	f.owner = l
	f.Static = true
	l.add(f.name, f)
	if f.initializer != nil {
		if _, exists := l.entries[GetterName(f.name)]; !exists {
			g := implicitStaticGetter(f)
			g.owner = l
			l.add(g.name, g)
		}
	}
	return f
}

// AddFunction declares a top-level function.
func (l *Library) AddFunction(fn *Function) *Function {
	fn.owner = l
	fn.Static = true
	l.add(fn.name, fn)
	return fn
}

// Import adds an import of lib and returns the namespace for filtering.
func (l *Library) Import(lib *Library) *Namespace {
	ns := &Namespace{Library: lib}
	l.Imports = append(l.Imports, ns)
	return ns
}

// Export re-exports lib and returns the namespace for filtering.
func (l *Library) Export(lib *Library) *Namespace {
	ns := &Namespace{Library: lib}
	l.Exports = append(l.Exports, ns)
	return ns
}

// LookupLocal finds a declaration of the library itself, private names
// included.
func (l *Library) LookupLocal(name string) Declaration { return l.entries[name] }

// LookupLocalFunction finds a top-level function of the library itself.
func (l *Library) LookupLocalFunction(name string) *Function {
	fn, _ := l.entries[name].(*Function)
	return fn
}

func (l *Library) lookupReExport(name string, visited map[*Library]bool) Declaration {
	if visited[l] {
		return nil
	}
	visited[l] = true
	for _, ns := range l.Exports {
		if d := ns.lookup(name, visited); d != nil {
			return d
		}
	}
	return nil
}

// Lookup resolves name in the library scope: its own declarations first,
// then its imports. Private names are never resolved through imports. When
// two imports provide distinct declarations for the name and neither comes
// from a system library, Lookup returns nil and an ambiguity message.
func (l *Library) Lookup(name string) (Declaration, string) {
	if d := l.LookupLocal(name); d != nil {
		return d, ""
	}
	if IsPrivate(name) {
		return nil, ""
	}
	return l.lookupImported(name)
}

func (l *Library) lookupImported(name string) (Declaration, string) {
	var found Declaration
	firstURL := ""
	for _, ns := range l.Imports {
		d := ns.lookup(name, make(map[*Library]bool))
		if d == nil || d == found {
			continue
		}
		url := ns.Library.URL()
		switch {
		case found == nil || strings.HasPrefix(firstURL, SystemScheme):
			found, firstURL = d, url
		case strings.HasPrefix(url, SystemScheme):
			// hidden by the earlier user declaration
		default:
			return nil, fmt.Sprintf("import '%s' and import '%s' both define '%s'", firstURL, url, UserName(name))
		}
	}
	return found, ""
}

// LookupFunction resolves name and keeps the result only if it is a
// function. The ambiguity message is passed through.
func (l *Library) LookupFunction(name string) (*Function, string) {
	d, ambiguity := l.Lookup(name)
	fn, _ := d.(*Function)
	return fn, ambiguity
}

// LookupField resolves name and keeps the result only if it is a field.
func (l *Library) LookupField(name string) (*Field, string) {
	d, ambiguity := l.Lookup(name)
	f, _ := d.(*Field)
	return f, ambiguity
}

// LookupClass resolves name and keeps the result only if it is a class.
func (l *Library) LookupClass(name string) (*Class, string) {
	d, ambiguity := l.Lookup(name)
	c, _ := d.(*Class)
	return c, ambiguity
}
