// Package eval ties the compiler and the virtual machine together: it
// compiles expression trees produced by the parser collaborator, runs them
// against the base library and resolves imports between modules.
package eval

import (
	"fmt"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/folio/compiler"
	"github.com/chazu/folio/lib/std"
	"github.com/chazu/folio/manifest"
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
	"github.com/chazu/folio/vm"
)

var log = commonlog.GetLogger("folio.eval")

// Loader parses a module. path is slash-separated and relative to the
// project root; the result is a *ast.Markup or *ast.Code root.
type Loader interface {
	Load(path string) (ast.Expr, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (ast.Expr, error)

func (f LoaderFunc) Load(path string) (ast.Expr, error) { return f(path) }

// Result is an evaluated module.
type Result struct {
	Module   *value.Module
	Unit     *bytecode.Unit
	Warnings []*diag.Diagnostic
}

// Evaluator evaluates modules of one project. Imported modules are
// evaluated once and cached. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	lib      *value.Scope
	manifest *manifest.Manifest
	loader   Loader
	memo     vm.Memo
	sink     *diag.Sink

	modules map[string]*value.Module
	active  map[string]bool
}

// New creates an evaluator. A nil manifest selects the defaults; a nil
// loader makes every import fail.
func New(m *manifest.Manifest, loader Loader) *Evaluator {
	if m == nil {
		m = manifest.Default()
	}
	e := &Evaluator{
		lib:      std.Library(),
		manifest: m,
		loader:   loader,
		sink:     &diag.Sink{},
		modules:  make(map[string]*value.Module),
		active:   make(map[string]bool),
	}
	if m.Eval.Memoize {
		e.memo = vm.NewMapMemo()
	}
	return e
}

// ConfigureLogging applies the manifest's log settings to commonlog.
func ConfigureLogging(m *manifest.Manifest) {
	var file *string
	if m.Log.File != "" {
		file = &m.Log.File
	}
	commonlog.Configure(m.Log.Verbosity, file)
}

// Library returns the base scope.
func (e *Evaluator) Library() *value.Scope { return e.lib }

// Warnings returns every warning produced so far, including those of
// imported modules.
func (e *Evaluator) Warnings() []*diag.Diagnostic { return e.sink.Warnings() }

// Eval compiles and runs a module rooted at root. path names the module
// for imports and diagnostics.
func (e *Evaluator) Eval(root ast.Expr, path string) (*Result, error) {
	unit, err := compiler.Compile(root, path, e.lib, e.sink)
	if err != nil {
		return nil, err
	}
	machine := vm.New(e.lib, vm.Config{
		World:         e,
		Memo:          e.memo,
		MaxCallDepth:  e.manifest.Eval.MaxCallDepth,
		MaxIterations: e.manifest.Eval.MaxIterations,
		Trace:         e.manifest.Eval.Trace,
	})
	mod, err := machine.RunModule(unit)
	if err != nil {
		return nil, err
	}
	return &Result{Module: mod, Unit: unit, Warnings: e.sink.Warnings()}, nil
}

// EvalFile loads and evaluates a module through the loader.
func (e *Evaluator) EvalFile(path string) (*Result, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("cannot load %s: no loader configured", path)
	}
	root, err := e.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", path, err)
	}
	e.active[path] = true
	defer delete(e.active, path)
	return e.Eval(root, path)
}

// EvalEntry evaluates the project's entry module.
func (e *Evaluator) EvalEntry() (*Result, error) {
	return e.EvalFile(e.manifest.Project.Entry)
}

// Import implements vm.World.
func (e *Evaluator) Import(from, path string, span ast.Span) (*value.Module, error) {
	resolved, err := e.manifest.ResolvePath(from, path)
	if err != nil {
		return nil, diag.Errorf(span, "%v", err)
	}
	if mod, ok := e.modules[resolved]; ok {
		return mod, nil
	}
	if e.active[resolved] {
		return nil, diag.Errorf(span, "cyclic import of %s", resolved)
	}
	if e.loader == nil {
		return nil, diag.Errorf(span, "cannot import %s: no loader configured", resolved)
	}

	root, err := e.loader.Load(resolved)
	if err != nil {
		return nil, diag.Errorf(span, "cannot import %s: %v", resolved, err)
	}
	e.active[resolved] = true
	defer delete(e.active, resolved)

	log.Debugf("evaluating import %s", resolved)
	res, err := e.Eval(root, resolved)
	if err != nil {
		return nil, diag.Trace(err, span, "error occurred while importing this module")
	}
	e.modules[resolved] = res.Module
	return res.Module, nil
}
