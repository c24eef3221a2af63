package compiler

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
)

func (c *Compiler) compileConditional(e *ast.Conditional, out bytecode.Writable) error {
	cond, err := c.compile(e.Cond)
	if err != nil {
		return err
	}
	otherwise, end := c.b.Jump(), c.b.Jump()
	c.b.Emit(e.Cond.Span(), bytecode.OpJumpIfNot, cond, otherwise)
	if err := c.compileInto(e.IfBody, out); err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpJump, end)
	c.b.Mark(otherwise)
	if e.ElseBody != nil {
		if err := c.compileInto(e.ElseBody, out); err != nil {
			return err
		}
	} else {
		c.none(e.Sp, out)
	}
	c.b.Mark(end)
	return nil
}

// compileWhile emits a WHILE range that the evaluator repeats until the
// range breaks. The condition is re-evaluated at the top of every round.
func (c *Compiler) compileWhile(e *ast.WhileLoop, out bytecode.Writable) error {
	end := c.b.Jump()
	c.b.Emit(e.Sp, bytecode.OpWhile, end, flag(c.display), out)

	cond, err := c.compile(e.Cond)
	if err != nil {
		return err
	}
	body := c.b.Jump()
	c.b.Emit(e.Cond.Span(), bytecode.OpJumpIf, cond, body)
	c.b.Emit(e.Cond.Span(), bytecode.OpBreak)
	c.b.Mark(body)

	c.loopDepth++
	err = c.compileInto(e.Body, bytecode.Joiner)
	c.loopDepth--
	if err != nil {
		return err
	}
	c.b.Mark(end)
	return nil
}

// compileFor emits an ITER range run once per item. The pattern's
// variables live in a scope that only the body sees.
func (c *Compiler) compileFor(e *ast.ForLoop, out bytecode.Writable) error {
	iterable, err := c.compile(e.Iterable)
	if err != nil {
		return err
	}
	end := c.b.Jump()

	c.enterScope()
	defer c.exitScope()
	pattern, err := c.compilePattern(e.Pattern, true)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpIter, iterable, pattern, end, flag(c.display), out)

	c.loopDepth++
	err = c.compileInto(e.Body, bytecode.Joiner)
	c.loopDepth--
	if err != nil {
		return err
	}
	c.b.Mark(end)
	return nil
}

func (c *Compiler) compileReturn(e *ast.FuncReturn) error {
	if !c.inFunc {
		return diag.Errorf(e.Sp, "cannot return outside of function")
	}
	if e.Body == nil {
		c.b.Emit(e.Sp, bytecode.OpReturn, bytecode.U16(0), bytecode.None)
		return nil
	}
	v, err := c.compile(e.Body)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpReturn, bytecode.U16(1), v)
	return nil
}

// compileImport loads a module into a register and binds either the
// module itself or the listed items.
func (c *Compiler) compileImport(e *ast.ModuleImport, out bytecode.Writable) error {
	src, err := c.compile(e.Source)
	if err != nil {
		return err
	}
	mod := c.b.Register()
	c.b.Emit(e.Sp, bytecode.OpImport, src, mod.Writable())

	switch {
	case len(e.Items) > 0:
		for _, item := range e.Items {
			name := item.Name
			if item.Alias != "" {
				name = item.Alias
			}
			r := c.declare(name)
			c.b.Emit(item.Sp, bytecode.OpField, mod.Readable(), c.b.Str(item.Name), r.Writable())
		}
	case e.NewName != "":
		c.bind(e.NewName, mod)
	default:
		name, ok := importName(e.Source)
		if !ok {
			return diag.Errorf(e.Source.Span(), "cannot determine name for module").
				WithHint("you can rename the import with `as`")
		}
		c.bind(name, mod)
	}
	c.none(e.Sp, out)
	return nil
}
