package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "geometry"
version = "0.1.0"

[engine]
debug-name = "geo"
log-verbosity = 2
max-call-depth = 64
metadata-db = "meta.db"

[dependencies]
helper = { path = "../helper" }

[[library]]
name = "main"
url = "app:main"
root = true

[[library.import]]
url = "app:util"
show = ["clamp"]

[[library.class]]
name = "Point"
type-params = ["T extends num"]
annotations = ["sealed", 3]

[[library.class.field]]
name = "x"
final = true

[[library.class.method]]
name = "norm"
params = ["scale: int", "bias"]
optional = 1
body = { param = 0 }
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "geometry" || m.Project.Version != "0.1.0" {
		t.Errorf("project = %+v", m.Project)
	}
	if m.Engine.DebugName != "geo" || m.Engine.LogVerbosity != 2 || m.Engine.MaxCallDepth != 64 {
		t.Errorf("engine = %+v", m.Engine)
	}
	if dep, ok := m.Dependencies["helper"]; !ok || dep.Path != "../helper" {
		t.Errorf("helper dep = %v, want path ../helper", m.Dependencies["helper"])
	}
	if len(m.Libraries) != 1 {
		t.Fatalf("libraries count = %d, want 1", len(m.Libraries))
	}
	lib := m.Libraries[0]
	if !lib.Root || lib.URL != "app:main" {
		t.Errorf("library = %+v", lib)
	}
	if len(lib.Imports) != 1 || lib.Imports[0].Show[0] != "clamp" {
		t.Errorf("imports = %+v", lib.Imports)
	}
	cls := lib.Classes[0]
	if cls.Name != "Point" || len(cls.Fields) != 1 || !cls.Fields[0].Final {
		t.Errorf("class = %+v", cls)
	}
	if len(cls.Annotations) != 2 || cls.Annotations[1] != int64(3) {
		t.Errorf("annotations = %#v", cls.Annotations)
	}
	method := cls.Methods[0]
	if method.Optional != 1 || method.Body.Param == nil || *method.Body.Param != 0 {
		t.Errorf("method = %+v", method)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Debug name falls back to the project name
	if m.Engine.DebugName != "minimal" {
		t.Errorf("default debug name = %q, want minimal", m.Engine.DebugName)
	}
	if m.MetadataDBPath() != "" {
		t.Errorf("MetadataDBPath = %q, want empty", m.MetadataDBPath())
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[project\nname = ")
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no mirrors.toml exists")
	}
}

func TestMetadataDBPath(t *testing.T) {
	m := &Manifest{Dir: "/app", Engine: Engine{MetadataDB: "data/meta.db"}}
	if got := m.MetadataDBPath(); got != "/app/data/meta.db" {
		t.Errorf("relative path = %q, want /app/data/meta.db", got)
	}
	m.Engine.MetadataDB = "/var/meta.db"
	if got := m.MetadataDBPath(); got != "/var/meta.db" {
		t.Errorf("absolute path = %q, want /var/meta.db", got)
	}
}
