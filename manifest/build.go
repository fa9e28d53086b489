package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/mirrorcore/program"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("manifest")

// Annotator attaches annotation values to a declaration.
type Annotator func(d program.Declaration, values ...program.Value) error

// LoadProgram resolves the dependencies of m and builds every library into
// store, dependencies first.
func LoadProgram(store *program.Store, m *Manifest, annotate Annotator) error {
	deps, err := NewResolver(m).Resolve()
	if err != nil {
		return err
	}
	for _, dep := range deps {
		log.Debugf("loading dependency %s from %s", dep.Name, dep.LocalPath)
		if err := Build(store, dep.Manifest, annotate); err != nil {
			return fmt.Errorf("dependency %s: %w", dep.Name, err)
		}
	}
	return Build(store, m, annotate)
}

// Build declares the libraries of m in store. Names are declared in a
// first pass so classes may refer to each other in any order. When
// annotate is nil, annotations go to the store's in-memory metadata.
func Build(store *program.Store, m *Manifest, annotate Annotator) error {
	if annotate == nil {
		annotate = memoryAnnotator(store)
	}
	b := &builder{store: store, annotate: annotate}

	libs := make([]*program.Library, len(m.Libraries))
	for i := range m.Libraries {
		lib, err := b.declareLibrary(&m.Libraries[i])
		if err != nil {
			return err
		}
		libs[i] = lib
	}
	for i := range m.Libraries {
		if err := b.defineLibrary(libs[i], &m.Libraries[i]); err != nil {
			return fmt.Errorf("library %s: %w", m.Libraries[i].URL, err)
		}
	}
	return nil
}

func memoryAnnotator(store *program.Store) Annotator {
	return func(d program.Declaration, values ...program.Value) error {
		mem := store.MemoryMetadata()
		if mem == nil {
			return errors.New("no annotation store installed")
		}
		mem.Annotate(d, values...)
		return nil
	}
}

type builder struct {
	store    *program.Store
	annotate Annotator
}

// scope resolves type names inside a library, and inside a class when cls
// is set.
type scope struct {
	lib *program.Library
	cls *program.Class
}

func (b *builder) declareLibrary(desc *Library) (*program.Library, error) {
	if desc.URL == "" {
		return nil, fmt.Errorf("library %q has no url", desc.Name)
	}
	if strings.HasPrefix(desc.URL, program.SystemScheme) {
		return nil, fmt.Errorf("library %q: scheme %q is reserved", desc.Name, program.SystemScheme)
	}
	if b.store.LibraryByURL(desc.URL) != nil {
		return nil, fmt.Errorf("library %s declared twice", desc.URL)
	}
	name := desc.Name
	if name == "" {
		name = desc.URL
	}
	lib := b.store.NewLibrary(name, desc.URL)
	if desc.Root {
		b.store.SetRoot(lib)
	}

	for i := range desc.Classes {
		c := &desc.Classes[i]
		if lib.LookupLocal(c.Name) != nil {
			return nil, fmt.Errorf("library %s: duplicate declaration %q", desc.URL, c.Name)
		}
		cls := b.store.DeclareClass(lib, c.Name, nil)
		cls.Abstract = c.Abstract
		for _, p := range c.TypeParams {
			name, _, _ := strings.Cut(p, " extends ")
			cls.DeclareTypeParameter(strings.TrimSpace(name), nil)
		}
	}
	return lib, nil
}

func (b *builder) defineLibrary(lib *program.Library, desc *Library) error {
	if err := b.namespaces(lib, desc); err != nil {
		return err
	}
	top := scope{lib: lib}

	for i := range desc.Classes {
		if err := b.defineClass(lib, &desc.Classes[i]); err != nil {
			return fmt.Errorf("class %s: %w", desc.Classes[i].Name, err)
		}
	}
	for i := range desc.Typedefs {
		td := &desc.Typedefs[i]
		sig := program.NewFunction(td.Name, program.SignatureFunction)
		if err := b.signature(top, sig, td.Params, td.Result); err != nil {
			return fmt.Errorf("typedef %s: %w", td.Name, err)
		}
		b.store.DeclareTypedef(lib, td.Name, sig)
	}
	for i := range desc.Fields {
		fd := &desc.Fields[i]
		f, err := b.field(top, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", fd.Name, err)
		}
		lib.AddField(f)
		if err := b.annotations(f, fd.Annotations); err != nil {
			return err
		}
	}
	for i := range desc.Functions {
		fd := &desc.Functions[i]
		fn, err := b.function(top, fd)
		if err != nil {
			return fmt.Errorf("function %s: %w", fd.Name, err)
		}
		lib.AddFunction(fn)
		if err := b.annotations(fn, fd.Annotations); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) namespaces(lib *program.Library, desc *Library) error {
	for _, imp := range desc.Imports {
		target := b.store.LibraryByURL(imp.URL)
		if target == nil {
			return fmt.Errorf("import of unknown library %s", imp.URL)
		}
		ns := lib.Import(target)
		ns.Show, ns.Hide = imp.Show, imp.Hide
	}
	for _, exp := range desc.Exports {
		target := b.store.LibraryByURL(exp.URL)
		if target == nil {
			return fmt.Errorf("export of unknown library %s", exp.URL)
		}
		ns := lib.Export(target)
		ns.Show, ns.Hide = exp.Show, exp.Hide
	}
	return nil
}

func (b *builder) defineClass(lib *program.Library, desc *Class) error {
	cls, _ := lib.LookupLocal(desc.Name).(*program.Class)
	if cls == nil {
		return errors.New("not declared")
	}
	sc := scope{lib: lib, cls: cls}

	if desc.Super != "" {
		t, err := b.classType(sc, desc.Super)
		if err != nil {
			return fmt.Errorf("superclass: %w", err)
		}
		if t.Class == cls {
			return errors.New("class extends itself")
		}
		cls.Super = t
	}
	for _, name := range desc.Interfaces {
		t, err := b.classType(sc, name)
		if err != nil {
			return fmt.Errorf("interface: %w", err)
		}
		cls.Interfaces = append(cls.Interfaces, t)
	}
	for i, p := range desc.TypeParams {
		if _, bound, ok := strings.Cut(p, " extends "); ok {
			t, err := b.parseType(sc, bound)
			if err != nil {
				return fmt.Errorf("bound of %s: %w", p, err)
			}
			cls.TypeParameters()[i].Bound = t
		}
	}
	if desc.Malformed != "" {
		cls.MarkMalformed(desc.Malformed)
	}
	if err := b.annotations(cls, desc.Annotations); err != nil {
		return err
	}

	for i := range desc.Fields {
		fd := &desc.Fields[i]
		var f *program.Field
		if fd.Static {
			var err error
			if f, err = b.field(sc, fd); err != nil {
				return fmt.Errorf("field %s: %w", fd.Name, err)
			}
		} else {
			f = program.NewField(fd.Name, fd.Final)
			t, err := b.optionalType(sc, fd.Type)
			if err != nil {
				return fmt.Errorf("field %s: %w", fd.Name, err)
			}
			f.Type = t
		}
		cls.AddField(f)
		if err := b.annotations(f, fd.Annotations); err != nil {
			return err
		}
	}

	for i := range desc.Methods {
		md := &desc.Methods[i]
		fn, err := b.method(sc, md)
		if err != nil {
			return fmt.Errorf("method %s: %w", md.Name, err)
		}
		if err := b.annotations(fn, md.Annotations); err != nil {
			return err
		}
	}
	return nil
}

// field builds a static or top-level field.
func (b *builder) field(sc scope, desc *Field) (*program.Field, error) {
	t, err := b.optionalType(sc, desc.Type)
	if err != nil {
		return nil, err
	}
	var f *program.Field
	if desc.Lazy {
		value := desc.Value
		f = program.NewLazyStaticField(desc.Name, desc.Final, func([]program.Value) (program.Value, error) {
			return value, nil
		})
	} else {
		f = program.NewStaticField(desc.Name, desc.Final, desc.Value)
	}
	f.Type = t
	return f, nil
}

// method builds and adds a class member.
func (b *builder) method(sc scope, desc *Function) (*program.Function, error) {
	var fn *program.Function
	params, types, err := b.params(sc, desc.Params)
	if err != nil {
		return nil, err
	}
	switch desc.Kind {
	case "constructor":
		fn = sc.cls.AddConstructor(desc.Name, params...)
	case "factory":
		fn = sc.cls.AddFactory(desc.Name, params...)
	default:
		kind, name, err := functionKind(desc)
		if err != nil {
			return nil, err
		}
		fn = program.NewFunction(name, kind, params...)
		fn.Static = desc.Static
		sc.cls.AddFunction(fn)
	}
	if err := b.configure(sc, fn, desc, types); err != nil {
		return nil, err
	}
	return fn, nil
}

// function builds a top-level function.
func (b *builder) function(sc scope, desc *Function) (*program.Function, error) {
	kind, name, err := functionKind(desc)
	if err != nil {
		return nil, err
	}
	params, types, err := b.params(sc, desc.Params)
	if err != nil {
		return nil, err
	}
	fn := program.NewFunction(name, kind, params...)
	if err := b.configure(sc, fn, desc, types); err != nil {
		return nil, err
	}
	return fn, nil
}

func functionKind(desc *Function) (program.FunctionKind, string, error) {
	switch desc.Kind {
	case "", "method":
		return program.RegularFunction, desc.Name, nil
	case "getter":
		return program.GetterFunction, program.GetterName(desc.Name), nil
	case "setter":
		return program.SetterFunction, program.SetterName(desc.Name), nil
	case "constructor", "factory":
		return 0, "", fmt.Errorf("%s outside a class", desc.Kind)
	}
	return 0, "", fmt.Errorf("unknown kind %q", desc.Kind)
}

func (b *builder) configure(sc scope, fn *program.Function, desc *Function, types []program.TypeUse) error {
	for i, t := range types {
		fn.Params[i].Type = t
	}
	if desc.Optional < 0 || desc.Optional > len(fn.Params) {
		return fmt.Errorf("optional count %d out of range", desc.Optional)
	}
	fn.NumOptional = desc.Optional
	fn.Abstract = desc.Abstract
	fn.Hidden = desc.Hidden
	fn.Source = desc.Source
	if desc.CompileError != "" {
		fn.CompileErr = &program.CompileError{Message: desc.CompileError}
	}
	result, err := b.optionalType(sc, desc.Result)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}
	fn.Result = result
	if !desc.Abstract {
		body, err := compileBody(sc, fn, desc.Body)
		if err != nil {
			return err
		}
		fn.Body = body
	}
	return nil
}

// params splits "name" or "name: Type" entries.
func (b *builder) params(sc scope, specs []string) ([]string, []program.TypeUse, error) {
	names := make([]string, len(specs))
	types := make([]program.TypeUse, len(specs))
	for i, s := range specs {
		name, typ, _ := strings.Cut(s, ":")
		names[i] = strings.TrimSpace(name)
		t, err := b.optionalType(sc, typ)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: %w", names[i], err)
		}
		types[i] = t
	}
	return names, types, nil
}

func (b *builder) signature(sc scope, fn *program.Function, params []string, result string) error {
	names, types, err := b.params(sc, params)
	if err != nil {
		return err
	}
	for i, name := range names {
		fn.Params = append(fn.Params, program.Parameter{Name: name, Type: types[i]})
	}
	fn.Result, err = b.optionalType(sc, result)
	return err
}

func (b *builder) annotations(d program.Declaration, values []any) error {
	if len(values) == 0 {
		return nil
	}
	if err := b.annotate(d, values...); err != nil {
		return fmt.Errorf("annotating %s: %w", program.QualifiedName(d), err)
	}
	return nil
}
