// mirrorctl loads a mirrors.toml program, dumps its mirrors, and invokes
// members reflectively.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chazu/mirrorcore/manifest"
	"github.com/chazu/mirrorcore/metadata"
	"github.com/chazu/mirrorcore/mirrors"
	"github.com/chazu/mirrorcore/mirrors/wire"
	"github.com/chazu/mirrorcore/program"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	dir := flag.String("dir", ".", "Directory to search for mirrors.toml")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides [engine] log-verbosity)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mirrorctl [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  dump [-format text|cbor]                      Print mirrors of every user library\n")
		fmt.Fprintf(os.Stderr, "  invoke -lib URL [-class C] [-ctor] member args  Invoke a member reflectively\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mirrorctl dump\n")
		fmt.Fprintf(os.Stderr, "  mirrorctl invoke -lib app:main twice 21\n")
		fmt.Fprintf(os.Stderr, "  mirrorctl invoke -lib app:main -class Point -ctor '' 3 4\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cleanup, err := load(*dir, *verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "dump":
		err = runDump(ctx, args)
	case "invoke":
		err = runInvoke(ctx, args)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cleanup()
		os.Exit(1)
	}
}

// load finds the manifest, builds the program and creates its context.
func load(dir string, verbosity int) (*mirrors.Context, func(), error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, fmt.Errorf("no %s found from %s", manifest.FileName, dir)
	}

	if verbosity < 0 {
		verbosity = m.Engine.LogVerbosity
	}
	commonlog.Configure(verbosity, nil)

	store := program.NewStore()
	var annotate manifest.Annotator
	closeDB := func() {}
	if path := m.MetadataDBPath(); path != "" {
		db, err := metadata.Open(path)
		if err != nil {
			return nil, nil, err
		}
		store.SetMetadataSource(db)
		annotate = db.Annotate
		closeDB = func() { db.Close() }
	}

	if err := manifest.LoadProgram(store, m, annotate); err != nil {
		closeDB()
		return nil, nil, err
	}

	ctx := mirrors.NewContext(store,
		mirrors.WithDebugName(m.Engine.DebugName),
		mirrors.WithMaxCallDepth(m.Engine.MaxCallDepth),
	)
	cleanup := func() {
		ctx.Close()
		closeDB()
	}
	return ctx, cleanup, nil
}

func runDump(ctx *mirrors.Context, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text or cbor")
	fs.Parse(args)

	snapshots, err := collect(ctx)
	if err != nil {
		return err
	}

	switch *format {
	case "text":
		for _, s := range snapshots {
			fmt.Println(describe(s))
		}
		return nil
	case "cbor":
		data, err := wire.MarshalAll(snapshots)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", *format)
}

// collect builds mirrors of every user library, its members, and the
// members and constructors of its classes.
func collect(ctx *mirrors.Context) ([]*mirrors.Snapshot, error) {
	f := ctx.Factory
	var out []*mirrors.Snapshot
	add := func(objs ...mirrors.Object) {
		for _, o := range objs {
			if s, ok := o.(*mirrors.Snapshot); ok {
				out = append(out, s)
			}
		}
	}

	for _, lib := range ctx.Store.Libraries() {
		if lib.IsSystem() {
			continue
		}
		libMirror := f.LibraryMirror(lib)
		add(libMirror)
		for _, member := range f.LibraryMembers(libMirror, mirrors.NewReference(lib)) {
			add(member)
			s, ok := member.(*mirrors.Snapshot)
			if !ok || s.Kind != mirrors.ClassKind {
				continue
			}
			members, err := f.ClassMembers(member, s.Ref())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name(), err)
			}
			add(members...)
			ctors, err := f.ClassConstructors(member, s.Ref())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name(), err)
			}
			add(ctors...)
		}
	}
	return out, nil
}

func describe(s *mirrors.Snapshot) string {
	if ref := s.Ref(); ref != nil {
		return fmt.Sprintf("%-40s %s", s.String(), ref)
	}
	return s.String()
}

func runInvoke(ctx *mirrors.Context, args []string) error {
	fs := flag.NewFlagSet("invoke", flag.ExitOnError)
	libURL := fs.String("lib", "", "Library URL (defaults to the root library)")
	className := fs.String("class", "", "Class for static members and constructors")
	ctor := fs.Bool("ctor", false, "Invoke a constructor of -class")
	get := fs.Bool("get", false, "Read a field or getter instead of calling")
	set := fs.Bool("set", false, "Write the single argument to a field or setter")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("invoke: member name required")
	}
	member := fs.Arg(0)
	values := make([]program.Value, fs.NArg()-1)
	for i, a := range fs.Args()[1:] {
		values[i] = parseValue(a)
	}

	lib := ctx.Store.RootLibrary()
	if *libURL != "" {
		lib = ctx.Store.LibraryByURL(*libURL)
	}
	if lib == nil {
		return fmt.Errorf("invoke: no library %q", *libURL)
	}

	ref := mirrors.NewReference(lib)
	if *className != "" {
		cls, ambiguity := lib.LookupClass(*className)
		if ambiguity != "" {
			return fmt.Errorf("invoke: %s", ambiguity)
		}
		if cls == nil {
			return fmt.Errorf("invoke: no class %q in %s", *className, lib.URL())
		}
		ref = mirrors.NewReference(cls)
	}

	d := ctx.Dispatcher
	var (
		result program.Value
		err    error
	)
	switch {
	case *ctor:
		if *className == "" {
			return fmt.Errorf("invoke: -ctor needs -class")
		}
		result, err = d.InvokeConstructor(ref, nil, member, values)
	case *set:
		if len(values) != 1 {
			return fmt.Errorf("invoke: -set takes exactly one value")
		}
		if *className != "" {
			result, err = d.WriteStaticField(ref, member, values[0])
		} else {
			result, err = d.WriteTopLevel(ref, member, values[0])
		}
	case *get:
		if *className != "" {
			result, err = d.ReadStaticField(ref, member)
		} else {
			result, err = d.ReadTopLevel(ref, member)
		}
	case *className != "":
		result, err = d.InvokeStatic(ref, member, values)
	default:
		result, err = d.InvokeTopLevel(ref, member, values)
	}
	if err != nil {
		return err
	}

	fmt.Println(program.FormatValue(result))
	return nil
}

// parseValue reads a command-line argument as null, a bool, an integer, a
// double, or else a string.
func parseValue(s string) program.Value {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
