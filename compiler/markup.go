package compiler

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
)

func (c *Compiler) compileStrong(e *ast.Strong, out bytecode.Writable) error {
	if len(e.Body.Exprs) == 0 {
		c.sink.Warn(diag.Warnf(e.Sp, "no text within stars").
			WithHint("using multiple consecutive stars (e.g. **) has no additional effect"))
	}
	body, err := c.markupBody(e.Body)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpStrong, body, out)
	return nil
}

func (c *Compiler) compileEmph(e *ast.Emph, out bytecode.Writable) error {
	if len(e.Body.Exprs) == 0 {
		c.sink.Warn(diag.Warnf(e.Sp, "no text within underscores").
			WithHint("using multiple consecutive underscores (e.g. __) has no additional effect"))
	}
	body, err := c.markupBody(e.Body)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpEmph, body, out)
	return nil
}

func (c *Compiler) compileHeading(e *ast.Heading, out bytecode.Writable) error {
	level := e.Level
	if level < 1 {
		level = 1
	}
	body, err := c.markupBody(e.Body)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpHeading, bytecode.U16(level), body, out)
	return nil
}

// markupBody evaluates nested markup into a register.
func (c *Compiler) markupBody(m *ast.Markup) (bytecode.Readable, error) {
	r := c.b.Register()
	if err := c.compileBlock(m.Sp, m.Exprs, true, r.Writable()); err != nil {
		return bytecode.Readable{}, err
	}
	return r.Readable(), nil
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

// compileSet produces a style list. A false condition yields the empty
// style list, which joins as a no-op.
func (c *Compiler) compileSet(e *ast.SetRule, out bytecode.Writable) error {
	var skip, end bytecode.JumpID
	if e.Condition != nil {
		cond, err := c.compile(e.Condition)
		if err != nil {
			return err
		}
		skip, end = c.b.Jump(), c.b.Jump()
		c.b.Emit(e.Condition.Span(), bytecode.OpJumpIfNot, cond, skip)
	}
	target, err := c.compile(e.Target)
	if err != nil {
		return err
	}
	args, err := c.compileArgs(e.Sp, e.Args)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpSet, target, args, out)
	if e.Condition != nil {
		c.b.Emit(e.Sp, bytecode.OpJump, end)
		c.b.Mark(skip)
		c.copy(e.Sp, bytecode.EmptyStyles, out)
		c.b.Mark(end)
	}
	return nil
}

// compileShow produces a recipe. `show sel: set ...` compiles to a single
// instruction that builds the style list and wraps it.
func (c *Compiler) compileShow(e *ast.ShowRule, out bytecode.Writable) error {
	sel := bytecode.None
	if e.Selector != nil {
		var err error
		if sel, err = c.compile(e.Selector); err != nil {
			return err
		}
	}
	if set, ok := e.Transform.(*ast.SetRule); ok && set.Condition == nil {
		target, err := c.compile(set.Target)
		if err != nil {
			return err
		}
		args, err := c.compileArgs(set.Sp, set.Args)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpShowSet, sel, target, args, out)
		return nil
	}
	transform, err := c.compile(e.Transform)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpShow, sel, transform, out)
	return nil
}
