// Package manifest handles folio.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "folio.toml"

// ErrEscapesRoot is returned for import paths that leave the project.
var ErrEscapesRoot = errors.New("path escapes the project root")

// Manifest represents a folio.toml project configuration.
type Manifest struct {
	Project Project `toml:"project" json:"project"`
	Eval    Eval    `toml:"eval" json:"eval"`
	Log     Log     `toml:"log" json:"log"`

	// Dir is the directory containing the folio.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Project contains project metadata.
type Project struct {
	Name  string `toml:"name" json:"name"`
	Entry string `toml:"entry" json:"entry"`
}

// Eval configures evaluation limits.
type Eval struct {
	MaxCallDepth  int  `toml:"max-call-depth" json:"max-call-depth"`
	MaxIterations int  `toml:"max-iterations" json:"max-iterations"`
	Trace         bool `toml:"trace" json:"trace"`
	Memoize       bool `toml:"memoize" json:"memoize"`
}

// Log configures logging. Verbosity follows commonlog: -1 is critical
// only, 0 errors, up to 4 for debug output.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file"`
}

// Default returns the configuration used when no folio.toml exists.
func Default() *Manifest {
	return &Manifest{
		Project: Project{Entry: "main.typ"},
		Eval: Eval{
			MaxCallDepth:  64,
			MaxIterations: 10_000,
		},
	}
}

// Load parses a folio.toml file from the given directory. Missing settings
// keep their defaults.
func Load(dir string) (*Manifest, error) {
	p := filepath.Join(dir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", p, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", p, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes and validates manifest text.
func Parse(data []byte) (*Manifest, error) {
	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, err
	}
	if und := md.Undecoded(); len(und) > 0 {
		return nil, fmt.Errorf("unknown key %s", und[0])
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a folio.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
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

// ResolvePath resolves an import path against the importing module. Both
// are slash-separated and relative to the project root; a leading slash
// makes path relative to the root instead of the importing file.
func (m *Manifest) ResolvePath(from, p string) (string, error) {
	var out string
	if strings.HasPrefix(p, "/") {
		out = path.Clean(strings.TrimLeft(p, "/"))
	} else {
		out = path.Join(path.Dir(from), p)
	}
	if out == ".." || strings.HasPrefix(out, "../") || out == "." {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, p)
	}
	return out, nil
}

// Abs returns the file system path of a root-relative module path.
func (m *Manifest) Abs(rel string) string {
	return filepath.Join(m.Dir, filepath.FromSlash(rel))
}
