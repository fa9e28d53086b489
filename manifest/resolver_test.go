package manifest

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveOrder(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "app"), `
[project]
name = "app"

[dependencies]
zeta = { path = "../zeta" }
alpha = { path = "../alpha" }
`)
	writeManifest(t, filepath.Join(root, "alpha"), `
[project]
name = "alpha"

[dependencies]
base = { path = "../base" }
`)
	writeManifest(t, filepath.Join(root, "zeta"), `
[project]
name = "zeta"

[dependencies]
base = { path = "../base" }
`)
	writeManifest(t, filepath.Join(root, "base"), `
[project]
name = "base"
`)

	m, err := Load(filepath.Join(root, "app"))
	if err != nil {
		t.Fatal(err)
	}
	deps, err := NewResolver(m).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var names []string
	for _, d := range deps {
		names = append(names, d.Manifest.Project.Name)
	}
	// base is shared and loaded once, before both dependents
	want := "base,alpha,zeta"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("load order = %s, want %s", got, want)
	}
}

func TestResolveCycle(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "a"), `
[dependencies]
b = { path = "../b" }
`)
	writeManifest(t, filepath.Join(root, "b"), `
[dependencies]
a = { path = "../a" }
`)

	m, err := Load(filepath.Join(root, "a"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewResolver(m).Resolve()
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Resolve error = %v, want a cycle error", err)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		dep  string
		want string
	}{
		{"no path", `helper = { }`, "no path specified"},
		{"missing dir", `helper = { path = "../nowhere" }`, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, "[dependencies]\n"+tt.dep+"\n")
			m, err := Load(dir)
			if err != nil {
				t.Fatal(err)
			}
			_, err = NewResolver(m).Resolve()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Resolve error = %v, want %q", err, tt.want)
			}
		})
	}
}
