package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ResolvedDep represents a dependency that has been resolved to a local path.
type ResolvedDep struct {
	Name      string    // dependency name
	LocalPath string    // local filesystem path
	Manifest  *Manifest // the dependency's own manifest
}

// Resolver manages dependency resolution.
type Resolver struct {
	manifest *Manifest
}

// NewResolver creates a new dependency resolver.
func NewResolver(m *Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// Resolve resolves all dependencies and returns them in load order
// (topologically sorted: dependencies before dependents).
func (r *Resolver) Resolve() ([]ResolvedDep, error) {
	resolved := make(map[string]bool)
	visiting := map[string]bool{r.manifest.Dir: true}
	return r.resolveAll(r.manifest, resolved, visiting)
}

// resolveAll resolves the dependencies of m recursively. Names are visited
// in sorted order so the load order is stable.
func (r *Resolver) resolveAll(m *Manifest, resolved, visiting map[string]bool) ([]ResolvedDep, error) {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var order []ResolvedDep
	for _, name := range names {
		rd, err := resolveOne(m, name, m.Dependencies[name])
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		if resolved[rd.LocalPath] {
			continue // already resolved
		}
		if visiting[rd.LocalPath] {
			return nil, fmt.Errorf("dependency cycle through %s (%s)", name, rd.LocalPath)
		}

		visiting[rd.LocalPath] = true
		transitive, err := r.resolveAll(rd.Manifest, resolved, visiting)
		if err != nil {
			return nil, err
		}
		delete(visiting, rd.LocalPath)
		resolved[rd.LocalPath] = true

		order = append(order, transitive...)
		order = append(order, *rd)
	}
	return order, nil
}

// resolveOne resolves a single dependency of m.
func resolveOne(m *Manifest, name string, dep Dependency) (*ResolvedDep, error) {
	if dep.Path == "" {
		return nil, fmt.Errorf("dependency %q has no path specified", name)
	}

	localPath := dep.Path
	if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(m.Dir, localPath)
	}
	localPath, err := filepath.Abs(localPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", dep.Path, err)
	}

	// Verify it exists
	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("local dependency %q not found at %s: %w", name, localPath, err)
	}

	depManifest, err := Load(localPath)
	if err != nil {
		return nil, err
	}

	return &ResolvedDep{
		Name:      name,
		LocalPath: localPath,
		Manifest:  depManifest,
	}, nil
}
