package manifest

import (
	"fmt"
	"strings"

	"github.com/chazu/mirrorcore/program"
)

// optionalType parses s, treating an empty string as an omitted type.
func (b *builder) optionalType(sc scope, s string) (program.TypeUse, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return b.parseType(sc, s)
}

// classType parses s and requires a class type.
func (b *builder) classType(sc scope, s string) (*program.ClassType, error) {
	t, err := b.parseType(sc, s)
	if err != nil {
		return nil, err
	}
	ct, ok := t.(*program.ClassType)
	if !ok || ct.Class == b.store.VoidClass || ct.Class == b.store.DynamicClass {
		return nil, fmt.Errorf("%q is not a class", s)
	}
	return ct, nil
}

// parseType parses "Name" or "Name<Arg, ...>". Names resolve to type
// parameters of the enclosing class, then to classes visible from the
// library, then to the core library.
func (b *builder) parseType(sc scope, s string) (program.TypeUse, error) {
	s = strings.TrimSpace(s)
	name, rest, generic := strings.Cut(s, "<")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty type in %q", s)
	}

	var args []program.TypeUse
	if generic {
		if !strings.HasSuffix(rest, ">") {
			return nil, fmt.Errorf("unterminated type arguments in %q", s)
		}
		for _, part := range splitTypeArgs(strings.TrimSuffix(rest, ">")) {
			t, err := b.parseType(sc, part)
			if err != nil {
				return nil, err
			}
			args = append(args, t)
		}
	}

	switch name {
	case "void":
		return b.store.VoidType(), nil
	case "dynamic":
		return b.store.DynamicType(), nil
	}
	if sc.cls != nil && !generic {
		for _, p := range sc.cls.TypeParameters() {
			if p.Name() == name {
				return p.Use(), nil
			}
		}
	}

	cls, ambiguity := sc.lib.LookupClass(name)
	if ambiguity != "" {
		return nil, fmt.Errorf("%s", ambiguity)
	}
	if cls == nil {
		cls, _ = b.store.Core().LookupLocal(name).(*program.Class)
	}
	if cls == nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if len(args) > 0 && len(args) != cls.NumTypeParameters() {
		return nil, fmt.Errorf("%s takes %d type arguments, got %d", name, cls.NumTypeParameters(), len(args))
	}
	return program.NewClassType(cls, args...), nil
}

// splitTypeArgs splits on commas outside nested brackets.
func splitTypeArgs(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
