// Package compiler turns expression trees into bytecode units.
//
// A Compiler handles one unit: a module or a closure body. It walks the
// tree once, allocating registers monotonically and interning every
// compile-time artifact through the unit's tables. Expressions are compiled
// with one of two protocols:
//
//   - compile produces the value into a readable operand, allocating a
//     fresh register only when the value is not already addressable;
//   - compileInto writes the value into a caller-chosen writable: a
//     register, the frame's joiner or nowhere.
//
// Closures get a child compiler. Free variables of the child are resolved
// through the parent chain and turned into capture descriptors, so a
// variable two closures out is threaded through the intermediate closure.
package compiler

import (
	"errors"
	"path"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

var log = commonlog.GetLogger("folio.compiler")

// Library is the immutable base scope. Its bindings are read through global
// operands and are never writable.
type Library interface {
	Get(name string) (value.Value, bool)
}

// scope is one lexical block of bindings.
type scope struct {
	names []string
	regs  map[string]bytecode.Register
}

func newScope() *scope {
	return &scope{regs: make(map[string]bytecode.Register)}
}

func (s *scope) bind(name string, r bytecode.Register) {
	if _, ok := s.regs[name]; !ok {
		s.names = append(s.names, name)
	}
	s.regs[name] = r
}

// Compiler compiles a single unit.
type Compiler struct {
	b      *bytecode.Builder
	parent *Compiler
	lib    Library
	sink   *diag.Sink

	scopes   []*scope
	captures map[string]bytecode.Register

	display   bool // current joiner mode
	loopDepth int
	inFunc    bool
}

// Compile compiles a module body. Markup roots are evaluated in display
// mode, code roots in scripting mode. Top-level bindings become exports.
// Warnings go to sink, which may be nil.
func Compile(root ast.Expr, name string, lib Library, sink *diag.Sink) (*bytecode.Unit, error) {
	var (
		exprs   []ast.Expr
		display bool
	)
	switch r := root.(type) {
	case *ast.Markup:
		exprs, display = r.Exprs, true
	case *ast.Code:
		exprs = r.Exprs
	default:
		exprs = []ast.Expr{root}
	}

	c := &Compiler{
		b:        bytecode.NewBuilder(name, root.Span(), display),
		lib:      lib,
		sink:     sink,
		scopes:   []*scope{newScope()},
		captures: make(map[string]bytecode.Register),
		display:  display,
	}
	for _, e := range exprs {
		if err := c.compileInto(e, bytecode.Joiner); err != nil {
			return nil, err
		}
	}
	top := c.scopes[0]
	for _, n := range top.names {
		c.b.AddExport(n, top.regs[n])
	}
	u, err := c.finish(root.Span())
	if err != nil {
		return nil, err
	}
	log.Debugf("compiled module %s: %d bytes, %d registers, %d closures",
		name, len(u.Code), u.Registers, len(u.Closures))
	return u, nil
}

func (c *Compiler) finish(span ast.Span) (*bytecode.Unit, error) {
	u, err := c.b.Finish()
	if err != nil {
		if errors.Is(err, bytecode.ErrCapacity) {
			return nil, diag.Errorf(span, "%v", err).
				WithHint("split the code into smaller functions or modules")
		}
		return nil, diag.At(span, err)
	}
	return u, nil
}

// ---------------------------------------------------------------------------
// Scopes and name resolution
// ---------------------------------------------------------------------------

func (c *Compiler) enterScope() { c.scopes = append(c.scopes, newScope()) }
func (c *Compiler) exitScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

// declare binds name to a fresh register in the innermost scope.
func (c *Compiler) declare(name string) bytecode.Register {
	r := c.b.Register()
	c.scopes[len(c.scopes)-1].bind(name, r)
	return r
}

func (c *Compiler) local(name string) (bytecode.Register, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if r, ok := c.scopes[i].regs[name]; ok {
			return r, true
		}
	}
	return 0, false
}

// resolveVar finds name in this unit or an enclosing one. Variables of
// enclosing units are captured into a fresh register of this unit. The
// boolean result reports whether the variable is a capture.
func (c *Compiler) resolveVar(name string) (bytecode.Readable, bool, bool) {
	if r, ok := c.local(name); ok {
		return r.Readable(), false, true
	}
	if r, ok := c.captures[name]; ok {
		return r.Readable(), true, true
	}
	if c.parent == nil {
		return bytecode.Readable{}, false, false
	}
	from, _, ok := c.parent.resolveVar(name)
	if !ok {
		return bytecode.Readable{}, false, false
	}
	r := c.b.Register()
	c.captures[name] = r
	c.b.AddCapture(bytecode.Capture{Name: name, From: from, To: r})
	return r.Readable(), true, true
}

// resolve returns the operand for an identifier: a local, a capture or a
// library binding.
func (c *Compiler) resolve(id *ast.Ident) (bytecode.Readable, error) {
	if rd, _, ok := c.resolveVar(id.Name); ok {
		return rd, nil
	}
	if c.lib != nil {
		if _, ok := c.lib.Get(id.Name); ok {
			return bytecode.Global(c.b.Str(id.Name)), nil
		}
	}
	d := diag.Errorf(id.Sp, "unknown variable: %s", id.Name)
	if c.display {
		d.WithHint("if you meant to display multiple letters as is, try adding spaces between each letter: `%s`",
			strings.Join(strings.Split(id.Name, ""), " "))
	}
	return bytecode.Readable{}, d
}

// importName derives the binding name of `import "path"`.
func importName(source ast.Expr) (string, bool) {
	lit, ok := source.(*ast.StrLit)
	if !ok {
		return "", false
	}
	base := path.Base(lit.Value)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	for i, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && (r == '-' || r >= '0' && r <= '9')) {
			return "", false
		}
	}
	return name, true
}
