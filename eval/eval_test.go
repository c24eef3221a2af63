package eval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/folio/internal/asttest"
	"github.com/chazu/folio/manifest"
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/value"
)

// project serves trees from memory and counts loads.
type project struct {
	files map[string]func() ast.Expr
	loads map[string]int
}

func newProject(files map[string]func() ast.Expr) *project {
	return &project{files: files, loads: make(map[string]int)}
}

func (p *project) Load(path string) (ast.Expr, error) {
	build, ok := p.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	p.loads[path]++
	return build(), nil
}

func TestEvalFile(t *testing.T) {
	p := newProject(map[string]func() ast.Expr{
		"main.typ": func() ast.Expr {
			return asttest.Markup(
				asttest.Heading(1, asttest.Text("Report")),
				asttest.Import(asttest.Str("lib/util.typ"), "greet"),
				asttest.Call(asttest.Id("greet"), asttest.Str("world")),
			)
		},
		"lib/util.typ": func() ast.Expr {
			return asttest.Code(
				asttest.LetFunc("greet", asttest.Params("name"), asttest.Add(asttest.Str("hello "), asttest.Id("name"))),
			)
		},
	})
	e := New(nil, p)
	res, err := e.EvalEntry()
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := res.Module.Content.PlainText(); got != "Reporthello world" {
		t.Errorf("text = %q, want %q", got, "Reporthello world")
	}
	if res.Unit == nil || res.Unit.Name != "main.typ" {
		t.Errorf("unit = %v, want main.typ", res.Unit)
	}
}

func TestImportsAreCached(t *testing.T) {
	p := newProject(map[string]func() ast.Expr{
		"main.typ": func() ast.Expr {
			return asttest.Code(
				asttest.Import(asttest.Str("a.typ")),
				asttest.Import(asttest.Str("b.typ")),
				asttest.Let("total", asttest.Add(asttest.Field(asttest.Id("a"), "x"), asttest.Field(asttest.Id("b"), "y"))),
			)
		},
		"a.typ": func() ast.Expr {
			return asttest.Code(asttest.Import(asttest.Str("b.typ")), asttest.Let("x", asttest.Field(asttest.Id("b"), "y")))
		},
		"b.typ": func() ast.Expr {
			return asttest.Code(asttest.Let("y", asttest.Int(2)))
		},
	})
	e := New(nil, p)
	res, err := e.EvalFile("main.typ")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := res.Module.Scope.Get("total")
	if value.Repr(v) != "4" {
		t.Errorf("total = %s, want 4", value.Repr(v))
	}
	if p.loads["b.typ"] != 1 {
		t.Errorf("b.typ loaded %d times, want 1", p.loads["b.typ"])
	}
}

func TestRelativeImports(t *testing.T) {
	p := newProject(map[string]func() ast.Expr{
		"chapters/one.typ": func() ast.Expr {
			return asttest.Code(
				asttest.Import(asttest.Str("two.typ"), "n"),
				asttest.Import(asttest.Str("/top.typ"), "m"),
				asttest.Let("sum", asttest.Add(asttest.Id("n"), asttest.Id("m"))),
			)
		},
		"chapters/two.typ": func() ast.Expr { return asttest.Code(asttest.Let("n", asttest.Int(1))) },
		"top.typ":          func() ast.Expr { return asttest.Code(asttest.Let("m", asttest.Int(10))) },
	})
	res, err := New(nil, p).EvalFile("chapters/one.typ")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v, _ := res.Module.Scope.Get("sum"); value.Repr(v) != "11" {
		t.Errorf("sum = %s, want 11", value.Repr(v))
	}
}

func TestInclude(t *testing.T) {
	p := newProject(map[string]func() ast.Expr{
		"main.typ": func() ast.Expr {
			return asttest.Markup(asttest.Text("a"), asttest.Include(asttest.Str("part.typ")), asttest.Text("c"))
		},
		"part.typ": func() ast.Expr { return asttest.Markup(asttest.Strong(asttest.Text("b"))) },
	})
	res, err := New(nil, p).EvalEntry()
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := res.Module.Content.PlainText(); got != "abc" {
		t.Errorf("text = %q, want abc", got)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]func() ast.Expr
		want  string
	}{
		{
			"cycle",
			map[string]func() ast.Expr{
				"main.typ": func() ast.Expr { return asttest.Code(asttest.Import(asttest.Str("a.typ"))) },
				"a.typ":    func() ast.Expr { return asttest.Code(asttest.Import(asttest.Str("main.typ"))) },
			},
			"cyclic import of main.typ",
		},
		{
			"missing",
			map[string]func() ast.Expr{
				"main.typ": func() ast.Expr { return asttest.Code(asttest.Import(asttest.Str("nope.typ"))) },
			},
			"cannot import nope.typ: file not found",
		},
		{
			"escapes root",
			map[string]func() ast.Expr{
				"main.typ": func() ast.Expr { return asttest.Code(asttest.Import(asttest.Str("../x.typ"))) },
			},
			"path escapes the project root",
		},
		{
			"error in imported module",
			map[string]func() ast.Expr{
				"main.typ": func() ast.Expr { return asttest.Code(asttest.Import(asttest.Str("bad.typ"))) },
				"bad.typ": func() ast.Expr {
					return asttest.Code(asttest.Call(asttest.Id("assert"), asttest.Bool(false)))
				},
			},
			"assertion failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(tt.files)
			_, err := New(nil, p).EvalEntry()
			if err == nil {
				t.Fatalf("expected error %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestNoLoader(t *testing.T) {
	e := New(nil, nil)
	if _, err := e.EvalEntry(); err == nil || !strings.Contains(err.Error(), "no loader configured") {
		t.Errorf("EvalEntry error = %v, want no loader", err)
	}
	_, err := e.Eval(asttest.Code(asttest.Import(asttest.Str("x.typ"))), "main.typ")
	if err == nil || !strings.Contains(err.Error(), "cannot import x.typ: no loader configured") {
		t.Errorf("Eval error = %v, want no loader", err)
	}
}

func TestWarningsAccumulate(t *testing.T) {
	p := newProject(map[string]func() ast.Expr{
		"main.typ": func() ast.Expr {
			return asttest.Markup(asttest.Emph(), asttest.Include(asttest.Str("part.typ")))
		},
		"part.typ": func() ast.Expr { return asttest.Markup(asttest.Strong()) },
	})
	e := New(nil, p)
	res, err := e.EvalEntry()
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	var messages []string
	for _, w := range res.Warnings {
		messages = append(messages, w.Message)
	}
	got := strings.Join(messages, "; ")
	if !strings.Contains(got, "no text within underscores") || !strings.Contains(got, "no text within stars") {
		t.Errorf("warnings = %q", got)
	}
	if len(e.Warnings()) != len(res.Warnings) {
		t.Errorf("evaluator warnings = %d, want %d", len(e.Warnings()), len(res.Warnings))
	}
}

func TestManifestLimits(t *testing.T) {
	m := manifest.Default()
	m.Eval.MaxIterations = 10
	_, err := New(m, nil).Eval(asttest.Code(
		asttest.While(asttest.Bool(true), asttest.Block(asttest.None())),
	), "main.typ")
	if err == nil || !strings.Contains(err.Error(), "loop seems to be infinite") {
		t.Errorf("error = %v, want infinite loop", err)
	}

	m = manifest.Default()
	m.Eval.Memoize = true
	e := New(m, nil)
	res, err := e.Eval(asttest.Code(
		asttest.LetFunc("f", asttest.Params("x"), asttest.Id("x")),
		asttest.Let("a", asttest.Call(asttest.Id("f"), asttest.Int(1))),
		asttest.Let("b", asttest.Call(asttest.Id("f"), asttest.Int(1))),
	), "main.typ")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v, _ := res.Module.Scope.Get("b"); value.Repr(v) != "1" {
		t.Errorf("b = %s, want 1", value.Repr(v))
	}
	if e.memo == nil {
		t.Error("memoize did not install a cache")
	}
}

func TestLoaderFunc(t *testing.T) {
	var seen []string
	loader := LoaderFunc(func(path string) (ast.Expr, error) {
		seen = append(seen, path)
		return asttest.Markup(asttest.Text(path)), nil
	})
	m := manifest.Default()
	m.Project.Entry = "doc/index.typ"
	res, err := New(m, loader).EvalEntry()
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := res.Module.Content.PlainText(); got != "doc/index.typ" {
		t.Errorf("text = %q", got)
	}
	if len(seen) != 1 || seen[0] != "doc/index.typ" {
		t.Errorf("loads = %v", seen)
	}
}
