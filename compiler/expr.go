package compiler

import (
	"fmt"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// compile produces the value of e into a readable. Literals and variables
// need no instructions; everything else lands in a fresh register.
func (c *Compiler) compile(e ast.Expr) (bytecode.Readable, error) {
	switch e := e.(type) {
	case *ast.NoneLit:
		return bytecode.None, nil
	case *ast.AutoLit:
		return bytecode.Auto, nil
	case *ast.BoolLit:
		if e.Value {
			return bytecode.True, nil
		}
		return bytecode.False, nil
	case *ast.IntLit:
		return c.b.Const(value.Int(e.Value)).Readable(), nil
	case *ast.FloatLit:
		return c.b.Const(value.Float(e.Value)).Readable(), nil
	case *ast.NumericLit:
		return c.b.Const(numeric(e)).Readable(), nil
	case *ast.StrLit:
		return c.b.Str(e.Value).Readable(), nil
	case *ast.Text:
		return c.b.Str(e.Text).Readable(), nil
	case *ast.LabelLit:
		return c.b.Label(e.Name).Readable(), nil
	case *ast.Space:
		return c.b.Const(value.NewSpace()).Readable(), nil
	case *ast.Linebreak:
		return c.b.Const(value.NewLinebreak()).Readable(), nil
	case *ast.Parbreak:
		return c.b.Const(value.NewParbreak()).Readable(), nil
	case *ast.Ident:
		return c.resolve(e)
	case *ast.Parenthesized:
		return c.compile(e.Expr)
	}
	r := c.b.Register()
	if err := c.compileInto(e, r.Writable()); err != nil {
		return bytecode.Readable{}, err
	}
	return r.Readable(), nil
}

// compileOperand compiles an operand that is read only after the later
// sibling expressions have run. A local variable is copied out first when
// one of them may reassign it.
func (c *Compiler) compileOperand(e ast.Expr, later ...ast.Expr) (bytecode.Readable, error) {
	rd, err := c.compile(e)
	if err != nil || rd.Kind != bytecode.ReadRegister {
		return rd, err
	}
	if _, ok := unparen(e).(*ast.Ident); !ok {
		return rd, nil
	}
	for _, l := range later {
		if !inert(l) {
			r := c.b.Register()
			c.b.Emit(e.Span(), bytecode.OpCopy, rd, r.Writable())
			return r.Readable(), nil
		}
	}
	return rd, nil
}

// inert reports whether e cannot write to any variable.
func inert(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.NoneLit, *ast.AutoLit, *ast.BoolLit, *ast.IntLit, *ast.FloatLit,
		*ast.NumericLit, *ast.StrLit, *ast.Text, *ast.LabelLit, *ast.Space,
		*ast.Linebreak, *ast.Parbreak, *ast.Ident:
		return true
	case *ast.Parenthesized:
		return inert(e.Expr)
	case *ast.Unary:
		return inert(e.Expr)
	case *ast.Binary:
		return !e.Op.IsAssignment() && inert(e.Lhs) && inert(e.Rhs)
	case *ast.FieldAccess:
		return inert(e.Target)
	}
	return false
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.Parenthesized)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

func argExprs(args []ast.Arg) []ast.Expr {
	exprs := make([]ast.Expr, len(args))
	for i, arg := range args {
		exprs[i] = arg.Expr
	}
	return exprs
}

// compileInto writes the value of e into out.
func (c *Compiler) compileInto(e ast.Expr, out bytecode.Writable) error {
	switch e := e.(type) {
	case *ast.NoneLit, *ast.AutoLit, *ast.BoolLit, *ast.IntLit, *ast.FloatLit,
		*ast.NumericLit, *ast.StrLit, *ast.Text, *ast.LabelLit, *ast.Space,
		*ast.Linebreak, *ast.Parbreak, *ast.Ident:
		rd, err := c.compile(e)
		if err != nil {
			return err
		}
		c.copy(e.Span(), rd, out)
		return nil
	case *ast.Parenthesized:
		return c.compileInto(e.Expr, out)

	case *ast.Markup:
		return c.compileBlock(e.Sp, e.Exprs, true, out)
	case *ast.Code:
		return c.compileBlock(e.Sp, e.Exprs, false, out)
	case *ast.ContentBlock:
		return c.compileBlock(e.Sp, e.Body.Exprs, true, out)
	case *ast.CodeBlock:
		return c.compileBlock(e.Sp, e.Body.Exprs, false, out)
	case *ast.Strong:
		return c.compileStrong(e, out)
	case *ast.Emph:
		return c.compileEmph(e, out)
	case *ast.Heading:
		return c.compileHeading(e, out)

	case *ast.ArrayLit:
		return c.compileArray(e, out)
	case *ast.DictLit:
		return c.compileDict(e, out)
	case *ast.Unary:
		return c.compileUnary(e, out)
	case *ast.Binary:
		return c.compileBinary(e, out)
	case *ast.FieldAccess:
		target, err := c.compile(e.Target)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpField, target, c.b.Str(e.Field), out)
		return nil
	case *ast.FuncCall:
		return c.compileCall(e, out)
	case *ast.Closure:
		return c.compileClosure(e, out)
	case *ast.LetBinding:
		return c.compileLet(e, out)
	case *ast.DestructAssignment:
		return c.compileDestructAssign(e, out)

	case *ast.SetRule:
		return c.compileSet(e, out)
	case *ast.ShowRule:
		return c.compileShow(e, out)
	case *ast.Conditional:
		return c.compileConditional(e, out)
	case *ast.WhileLoop:
		return c.compileWhile(e, out)
	case *ast.ForLoop:
		return c.compileFor(e, out)
	case *ast.LoopBreak:
		if c.loopDepth == 0 {
			return diag.Errorf(e.Sp, "cannot break outside of loop")
		}
		c.b.Emit(e.Sp, bytecode.OpBreak)
		return nil
	case *ast.LoopContinue:
		if c.loopDepth == 0 {
			return diag.Errorf(e.Sp, "cannot continue outside of loop")
		}
		c.b.Emit(e.Sp, bytecode.OpContinue)
		return nil
	case *ast.FuncReturn:
		return c.compileReturn(e)
	case *ast.ModuleImport:
		return c.compileImport(e, out)
	case *ast.ModuleInclude:
		src, err := c.compile(e.Source)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpInclude, src, out)
		return nil
	}
	return diag.Errorf(e.Span(), "unsupported expression %T", e)
}

// copy moves rd into out. Nothing is emitted for discarded results.
func (c *Compiler) copy(span ast.Span, rd bytecode.Readable, out bytecode.Writable) {
	if out.Kind == bytecode.WriteDiscard {
		return
	}
	c.b.Emit(span, bytecode.OpCopy, rd, out)
}

// none gives expressions without a value a defined result. Joining none is
// a no-op, so only register targets need it.
func (c *Compiler) none(span ast.Span, out bytecode.Writable) {
	if out.Kind == bytecode.WriteRegister {
		c.b.Emit(span, bytecode.OpCopy, bytecode.None, out)
	}
}

// compileBlock runs exprs in a nested scope with its own joiner.
func (c *Compiler) compileBlock(span ast.Span, exprs []ast.Expr, display bool, out bytecode.Writable) error {
	end := c.b.Jump()
	c.b.Emit(span, bytecode.OpEnter, end, flag(display), out)

	outer := c.display
	c.display = display
	c.enterScope()
	for _, e := range exprs {
		if err := c.compileInto(e, bytecode.Joiner); err != nil {
			return err
		}
	}
	c.exitScope()
	c.display = outer

	c.b.Mark(end)
	return nil
}

func flag(b bool) bytecode.U16 {
	if b {
		return 1
	}
	return 0
}

func numeric(e *ast.NumericLit) value.Value {
	switch e.Unit {
	case ast.UnitMm:
		return value.Length{Abs: e.Value * 72 / 25.4}
	case ast.UnitCm:
		return value.Length{Abs: e.Value * 72 / 2.54}
	case ast.UnitIn:
		return value.Length{Abs: e.Value * 72}
	case ast.UnitEm:
		return value.Length{Em: e.Value}
	case ast.UnitPercent:
		return value.Ratio(e.Value / 100)
	}
	return value.Length{Abs: e.Value}
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func (c *Compiler) compileArray(e *ast.ArrayLit, out bytecode.Writable) error {
	r := c.b.Register()
	c.b.Emit(e.Sp, bytecode.OpArray, bytecode.U16(len(e.Items)), r)
	for _, item := range e.Items {
		v, err := c.compile(item.Expr)
		if err != nil {
			return err
		}
		op := bytecode.OpPush
		if item.Spread {
			op = bytecode.OpSpread
		}
		c.b.Emit(item.Expr.Span(), op, v, r)
	}
	c.copy(e.Sp, r.Readable(), out)
	return nil
}

func (c *Compiler) compileDict(e *ast.DictLit, out bytecode.Writable) error {
	r := c.b.Register()
	c.b.Emit(e.Sp, bytecode.OpDict, bytecode.U16(len(e.Items)), r)
	for _, item := range e.Items {
		key := c.b.Str(item.Name).Readable()
		if item.Key != nil && !item.Spread {
			k, err := c.compileOperand(item.Key, item.Expr)
			if err != nil {
				return err
			}
			key = k
		}
		v, err := c.compile(item.Expr)
		if err != nil {
			return err
		}
		if item.Spread {
			c.b.Emit(item.Sp, bytecode.OpSpread, v, r)
		} else {
			c.b.Emit(item.Sp, bytecode.OpInsert, key, v, r)
		}
	}
	c.copy(e.Sp, r.Readable(), out)
	return nil
}

// compileArgs builds an argument list in a fresh register.
func (c *Compiler) compileArgs(span ast.Span, args []ast.Arg) (bytecode.Readable, error) {
	r := c.b.Register()
	c.b.Emit(span, bytecode.OpArgs, bytecode.U16(len(args)), r)
	for _, arg := range args {
		v, err := c.compile(arg.Expr)
		if err != nil {
			return bytecode.Readable{}, err
		}
		switch {
		case arg.Spread:
			c.b.Emit(arg.Sp, bytecode.OpSpreadArg, v, r)
		case arg.Name != "":
			c.b.Emit(arg.Sp, bytecode.OpInsertArg, c.b.Str(arg.Name), v, r)
		default:
			c.b.Emit(arg.Sp, bytecode.OpPushArg, v, r)
		}
	}
	return r.Readable(), nil
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

func (c *Compiler) compileUnary(e *ast.Unary, out bytecode.Writable) error {
	v, err := c.compile(e.Expr)
	if err != nil {
		return err
	}
	op := bytecode.OpPos
	switch e.Op {
	case ast.UnNeg:
		op = bytecode.OpNeg
	case ast.UnNot:
		op = bytecode.OpNot
	}
	c.b.Emit(e.Sp, op, v, out)
	return nil
}

var binaryOps = map[ast.BinOp]bytecode.Opcode{
	ast.BinAdd:   bytecode.OpAdd,
	ast.BinSub:   bytecode.OpSub,
	ast.BinMul:   bytecode.OpMul,
	ast.BinDiv:   bytecode.OpDiv,
	ast.BinEq:    bytecode.OpEq,
	ast.BinNeq:   bytecode.OpNeq,
	ast.BinLt:    bytecode.OpLt,
	ast.BinLeq:   bytecode.OpLeq,
	ast.BinGt:    bytecode.OpGt,
	ast.BinGeq:   bytecode.OpGeq,
	ast.BinIn:    bytecode.OpIn,
	ast.BinNotIn: bytecode.OpNotIn,

	ast.BinAddAssign: bytecode.OpAddAssign,
	ast.BinSubAssign: bytecode.OpSubAssign,
	ast.BinMulAssign: bytecode.OpMulAssign,
	ast.BinDivAssign: bytecode.OpDivAssign,
}

func (c *Compiler) compileBinary(e *ast.Binary, out bytecode.Writable) error {
	switch {
	case e.Op == ast.BinAnd || e.Op == ast.BinOr:
		return c.compileShortCircuit(e, out)
	case e.Op == ast.BinAssign:
		return c.compileAssign(e, out)
	case e.Op.IsAssignment():
		return c.compileCompoundAssign(e, out)
	}
	lhs, err := c.compileOperand(e.Lhs, e.Rhs)
	if err != nil {
		return err
	}
	rhs, err := c.compile(e.Rhs)
	if err != nil {
		return err
	}
	op, ok := binaryOps[e.Op]
	if !ok {
		panic(fmt.Sprintf("compiler: no opcode for operator %s", e.Op))
	}
	c.b.Emit(e.Sp, op, lhs, rhs, out)
	return nil
}

// compileShortCircuit evaluates the right operand only when the left one
// does not decide the result.
func (c *Compiler) compileShortCircuit(e *ast.Binary, out bytecode.Writable) error {
	r := c.b.Register()
	if err := c.compileInto(e.Lhs, r.Writable()); err != nil {
		return err
	}
	end := c.b.Jump()
	if e.Op == ast.BinAnd {
		c.b.Emit(e.Sp, bytecode.OpJumpIfNot, r.Readable(), end)
	} else {
		c.b.Emit(e.Sp, bytecode.OpJumpIf, r.Readable(), end)
	}
	rhs, err := c.compile(e.Rhs)
	if err != nil {
		return err
	}
	// Negating twice checks that the right operand is a boolean.
	c.b.Emit(e.Rhs.Span(), bytecode.OpNot, rhs, r.Writable())
	c.b.Emit(e.Rhs.Span(), bytecode.OpNot, r.Readable(), r.Writable())
	c.b.Mark(end)
	c.copy(e.Sp, r.Readable(), out)
	return nil
}

func (c *Compiler) compileAssign(e *ast.Binary, out bytecode.Writable) error {
	v, err := c.compile(e.Rhs)
	if err != nil {
		return err
	}
	lhs := unparen(e.Lhs)
	if fa, ok := lhs.(*ast.FieldAccess); ok {
		parent, err := c.compileAccess(fa.Target)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpAssignField, v, parent, c.b.Str(fa.Field))
	} else {
		acc, err := c.compileAccess(lhs)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpAssign, v, acc)
	}
	c.none(e.Sp, out)
	return nil
}

func (c *Compiler) compileCompoundAssign(e *ast.Binary, out bytecode.Writable) error {
	v, err := c.compile(e.Rhs)
	if err != nil {
		return err
	}
	acc, err := c.compileAccess(e.Lhs)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, binaryOps[e.Op], v, acc)
	c.none(e.Sp, out)
	return nil
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

func (c *Compiler) compileCall(e *ast.FuncCall, out bytecode.Writable) error {
	if fa, ok := e.Callee.(*ast.FieldAccess); ok {
		return c.compileMethodCall(e, fa, out)
	}
	callee, err := c.compileOperand(e.Callee, argExprs(e.Args)...)
	if err != nil {
		return err
	}
	args, err := c.compileArgs(e.Sp, e.Args)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpCall, callee, args, out)
	return nil
}

// compileMethodCall emits a mutating call on the receiver's location for
// the mutating methods and a plain call on its value otherwise.
func (c *Compiler) compileMethodCall(e *ast.FuncCall, fa *ast.FieldAccess, out bytecode.Writable) error {
	method := c.b.Str(fa.Field)
	if value.IsMutatingMethod(fa.Field) {
		recv, err := c.compileAccess(fa.Target)
		if err != nil {
			return err
		}
		args, err := c.compileArgs(e.Sp, e.Args)
		if err != nil {
			return err
		}
		c.b.Emit(e.Sp, bytecode.OpCallMutating, recv, method, args, out)
		return nil
	}
	recv, err := c.compileOperand(fa.Target, argExprs(e.Args)...)
	if err != nil {
		return err
	}
	args, err := c.compileArgs(e.Sp, e.Args)
	if err != nil {
		return err
	}
	c.b.Emit(e.Sp, bytecode.OpCallMethod, recv, method, args, out)
	return nil
}
