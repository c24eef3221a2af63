package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a folio.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "report"
entry = "doc/main.typ"

[eval]
max-call-depth = 32
max-iterations = 500
trace = true
memoize = true

[log]
verbosity = 3
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "report" {
		t.Errorf("project name = %q, want report", m.Project.Name)
	}
	if m.Project.Entry != "doc/main.typ" {
		t.Errorf("project entry = %q, want doc/main.typ", m.Project.Entry)
	}
	if m.Eval.MaxCallDepth != 32 {
		t.Errorf("max-call-depth = %d, want 32", m.Eval.MaxCallDepth)
	}
	if m.Eval.MaxIterations != 500 {
		t.Errorf("max-iterations = %d, want 500", m.Eval.MaxIterations)
	}
	if !m.Eval.Trace || !m.Eval.Memoize {
		t.Errorf("eval flags = %+v, want trace and memoize", m.Eval)
	}
	if m.Log.Verbosity != 3 {
		t.Errorf("verbosity = %d, want 3", m.Log.Verbosity)
	}
	abs, _ := filepath.Abs(dir)
	if m.Dir != abs {
		t.Errorf("dir = %q, want %q", m.Dir, abs)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := Default()
	if m.Project.Entry != def.Project.Entry {
		t.Errorf("entry = %q, want %q", m.Project.Entry, def.Project.Entry)
	}
	if m.Eval.MaxCallDepth != 64 {
		t.Errorf("max-call-depth = %d, want 64", m.Eval.MaxCallDepth)
	}
	if m.Eval.MaxIterations != 10_000 {
		t.Errorf("max-iterations = %d, want 10000", m.Eval.MaxIterations)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"zero call depth", "[eval]\nmax-call-depth = 0\n"},
		{"huge call depth", "[eval]\nmax-call-depth = 5000\n"},
		{"negative iterations", "[eval]\nmax-iterations = -1\n"},
		{"verbosity out of range", "[log]\nverbosity = 9\n"},
		{"absolute entry", "[project]\nentry = \"/main.typ\"\n"},
		{"unknown key", "[eval]\nmax-depth = 3\n"},
		{"wrong type", "[eval]\ntrace = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.text)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.text)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

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
		t.Error("expected nil manifest when no folio.toml exists")
	}
}

func TestResolvePath(t *testing.T) {
	m := &Manifest{Dir: "/proj"}
	tests := []struct {
		from, path string
		want       string
	}{
		{"main.typ", "util.typ", "util.typ"},
		{"chapters/one.typ", "two.typ", "chapters/two.typ"},
		{"chapters/one.typ", "../lib/x.typ", "lib/x.typ"},
		{"chapters/one.typ", "/lib/x.typ", "lib/x.typ"},
		{"a/b/c.typ", "./d.typ", "a/b/d.typ"},
	}
	for _, tt := range tests {
		got, err := m.ResolvePath(tt.from, tt.path)
		if err != nil {
			t.Errorf("ResolvePath(%q, %q) error: %v", tt.from, tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.from, tt.path, got, tt.want)
		}
	}

	for _, p := range []string{"../outside.typ", "/../x.typ", "a/../../x.typ"} {
		if _, err := m.ResolvePath("main.typ", p); !errors.Is(err, ErrEscapesRoot) {
			t.Errorf("ResolvePath(main.typ, %q) error = %v, want ErrEscapesRoot", p, err)
		}
	}

	if got := m.Abs("lib/x.typ"); got != filepath.Join("/proj", "lib", "x.typ") {
		t.Errorf("Abs = %q", got)
	}
}
