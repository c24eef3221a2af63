package compiler

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// bind makes name refer to an existing register in the innermost scope.
func (c *Compiler) bind(name string, r bytecode.Register) {
	c.scopes[len(c.scopes)-1].bind(name, r)
}

func (c *Compiler) compileLet(e *ast.LetBinding, out bytecode.Writable) error {
	defer c.none(e.Sp, out)

	if e.Closure != nil {
		r := c.b.Register()
		if err := c.compileClosure(e.Closure, r.Writable()); err != nil {
			return err
		}
		c.bind(e.Closure.Name, r)
		return nil
	}

	switch p := e.Pattern.(type) {
	case *ast.NormalPattern:
		id, ok := p.Expr.(*ast.Ident)
		if !ok {
			return diag.Errorf(p.Sp, "expected identifier")
		}
		r := c.b.Register()
		if e.Init != nil {
			if err := c.compileInto(e.Init, r.Writable()); err != nil {
				return err
			}
		} else {
			c.b.Emit(e.Sp, bytecode.OpCopy, bytecode.None, r.Writable())
		}
		c.bind(id.Name, r)
		return nil

	case *ast.Placeholder:
		if e.Init == nil {
			return nil
		}
		return c.compileInto(e.Init, bytecode.Discard)
	}

	if e.Init == nil {
		return diag.Errorf(e.Sp, "destructuring requires an initial value")
	}
	v, err := c.compile(e.Init)
	if err != nil {
		return err
	}
	pattern, err := c.compilePattern(e.Pattern, true)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpDestructure, v, pattern)
	return nil
}

func (c *Compiler) compileDestructAssign(e *ast.DestructAssignment, out bytecode.Writable) error {
	v, err := c.compile(e.Value)
	if err != nil {
		return err
	}
	pattern, err := c.compilePattern(e.Pattern, false)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpDestructure, v, pattern)
	c.none(e.Sp, out)
	return nil
}

// compilePattern interns a pattern. With declare set its variables are
// bound to fresh registers in the innermost scope; otherwise every leaf
// must be an assignable location.
func (c *Compiler) compilePattern(p ast.Pattern, declare bool) (bytecode.PatternID, error) {
	switch p := p.(type) {
	case *ast.Placeholder:
		return c.b.Pattern(bytecode.Pattern{Kind: bytecode.PatternPlaceholder}), nil

	case *ast.NormalPattern:
		acc, err := c.patternAccess(p, declare)
		if err != nil {
			return 0, err
		}
		return c.b.Pattern(bytecode.Pattern{Kind: bytecode.PatternSingle, Access: acc}), nil

	case *ast.Destructuring:
		items := make([]bytecode.PatternItem, 0, len(p.Items))
		sinks := 0
		for _, it := range p.Items {
			switch it.Kind {
			case ast.DestructPos:
				sub, err := c.compilePattern(it.Pattern, declare)
				if err != nil {
					return 0, err
				}
				item := bytecode.PatternItem{Kind: bytecode.ItemPos, Pattern: sub, HasPattern: true}
				if np, ok := it.Pattern.(*ast.NormalPattern); ok {
					if id, ok := np.Expr.(*ast.Ident); ok {
						item.Key, item.HasKey = c.b.Str(id.Name), true
					}
				}
				items = append(items, item)

			case ast.DestructNamed:
				sub := it.Pattern
				if sub == nil {
					sub = &ast.NormalPattern{Sp: it.Sp, Expr: &ast.Ident{Sp: it.Sp, Name: it.Name}}
				}
				id, err := c.compilePattern(sub, declare)
				if err != nil {
					return 0, err
				}
				items = append(items, bytecode.PatternItem{
					Kind: bytecode.ItemNamed, Key: c.b.Str(it.Name), HasKey: true,
					Pattern: id, HasPattern: true,
				})

			case ast.DestructSpread:
				sinks++
				if sinks > 1 {
					return 0, diag.Errorf(it.Sp, "only one destructuring sink is allowed")
				}
				item := bytecode.PatternItem{Kind: bytecode.ItemSpread}
				if it.Pattern != nil {
					sub, err := c.compilePattern(it.Pattern, declare)
					if err != nil {
						return 0, err
					}
					item.Pattern, item.HasPattern = sub, true
				}
				items = append(items, item)
			}
		}
		return c.b.Pattern(bytecode.Pattern{Kind: bytecode.PatternDestructure, Items: items}), nil
	}
	return 0, diag.Errorf(p.Span(), "unsupported pattern %T", p)
}

func (c *Compiler) patternAccess(p *ast.NormalPattern, declare bool) (bytecode.AccessID, error) {
	if !declare {
		return c.compileAccess(p.Expr)
	}
	id, ok := p.Expr.(*ast.Ident)
	if !ok {
		return 0, diag.Errorf(p.Sp, "expected identifier")
	}
	r := c.declare(id.Name)
	return c.b.Access(bytecode.Access{Kind: bytecode.AccessRegister, Register: r}), nil
}

// compileAccess describes the storage location an expression denotes.
// Expressions that are not locations become temporaries; writing through
// them fails at run time.
func (c *Compiler) compileAccess(e ast.Expr) (bytecode.AccessID, error) {
	switch e := e.(type) {
	case *ast.Ident:
		rd, isCapture, ok := c.resolveVar(e.Name)
		if ok {
			if isCapture {
				return 0, diag.Errorf(e.Sp, "variables from outside the function are read-only and cannot be modified")
			}
			r, _ := rd.AsRegister()
			return c.b.Access(bytecode.Access{Kind: bytecode.AccessRegister, Register: r}), nil
		}
		if _, err := c.resolve(e); err != nil {
			return 0, err
		}
		return c.b.Access(bytecode.Access{Kind: bytecode.AccessGlobal, Name: c.b.Str(e.Name)}), nil

	case *ast.Parenthesized:
		return c.compileAccess(e.Expr)

	case *ast.FieldAccess:
		parent, err := c.compileAccess(e.Target)
		if err != nil {
			return 0, err
		}
		return c.b.Access(bytecode.Access{Kind: bytecode.AccessField, Parent: parent, Name: c.b.Str(e.Field)}), nil

	case *ast.FuncCall:
		if fa, ok := e.Callee.(*ast.FieldAccess); ok && value.IsAccessorMethod(fa.Field) {
			parent, err := c.compileAccess(fa.Target)
			if err != nil {
				return 0, err
			}
			args, err := c.compileArgs(e.Sp, e.Args)
			if err != nil {
				return 0, err
			}
			return c.b.Access(bytecode.Access{
				Kind: bytecode.AccessMethod, Parent: parent, Name: c.b.Str(fa.Field), Value: args,
			}), nil
		}
	}
	v, err := c.compile(e)
	if err != nil {
		return 0, err
	}
	return c.b.Access(bytecode.Access{Kind: bytecode.AccessTemp, Value: v}), nil
}

// ---------------------------------------------------------------------------
// Closures
// ---------------------------------------------------------------------------

// compileClosure compiles the body into a unit of its own. Defaults are
// evaluated by the creating frame, so they are compiled here.
func (c *Compiler) compileClosure(e *ast.Closure, out bytecode.Writable) error {
	child := &Compiler{
		b:        bytecode.NewBuilder(e.Name, e.Sp, false),
		parent:   c,
		lib:      c.lib,
		sink:     c.sink,
		scopes:   []*scope{newScope()},
		captures: make(map[string]bytecode.Register),
		inFunc:   true,
	}
	if e.Name != "" {
		child.b.SetSelf(child.declare(e.Name))
	}

	seen := make(map[string]bool)
	sink := false
	unique := func(span ast.Span, name string) error {
		if name == "" || name == "_" {
			return nil
		}
		if seen[name] {
			return diag.Errorf(span, "duplicate parameter: %s", name)
		}
		seen[name] = true
		return nil
	}

	for _, p := range e.Params {
		switch p.Kind {
		case ast.ParamPos:
			param := bytecode.Param{Kind: bytecode.ParamPos}
			switch pat := p.Pattern.(type) {
			case *ast.NormalPattern:
				id, ok := pat.Expr.(*ast.Ident)
				if !ok {
					return diag.Errorf(pat.Sp, "expected identifier")
				}
				if err := unique(p.Sp, id.Name); err != nil {
					return err
				}
				param.Name = id.Name
				param.Register = child.declare(id.Name)
			case *ast.Placeholder:
				param.Name = "_"
				param.Register = child.b.Register()
			default:
				param.Register = child.b.Register()
				id, err := child.compilePattern(pat, true)
				if err != nil {
					return err
				}
				param.Pattern, param.HasPattern = id, true
			}
			child.b.AddParam(param)

		case ast.ParamNamed:
			if err := unique(p.Sp, p.Name); err != nil {
				return err
			}
			def := bytecode.None
			if p.Default != nil {
				var err error
				if def, err = c.compile(p.Default); err != nil {
					return err
				}
			}
			child.b.AddParam(bytecode.Param{
				Kind: bytecode.ParamNamed, Name: p.Name, Register: child.declare(p.Name), Default: def,
			})

		case ast.ParamSink:
			if sink {
				return diag.Errorf(p.Sp, "only one argument sink is allowed")
			}
			sink = true
			if err := unique(p.Sp, p.Name); err != nil {
				return err
			}
			param := bytecode.Param{Kind: bytecode.ParamSink, Name: p.Name}
			if p.Name != "" {
				param.Register = child.declare(p.Name)
			} else {
				param.Register = child.b.Register()
			}
			child.b.AddParam(param)
		}
	}

	if err := child.compileInto(e.Body, bytecode.Joiner); err != nil {
		return err
	}
	unit, err := child.finish(e.Sp)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpClosure, c.b.Closure(unit), out)
	return nil
}
