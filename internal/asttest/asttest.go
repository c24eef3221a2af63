// Package asttest builds expression trees for tests. Every node gets a
// detached span unless the test sets one.
package asttest

import "github.com/chazu/folio/pkg/ast"

// Markup and code roots.

func Markup(exprs ...ast.Expr) *ast.Markup { return &ast.Markup{Exprs: exprs} }
func Code(exprs ...ast.Expr) *ast.Code     { return &ast.Code{Exprs: exprs} }

func Block(exprs ...ast.Expr) *ast.CodeBlock {
	return &ast.CodeBlock{Body: Code(exprs...)}
}

func Content(exprs ...ast.Expr) *ast.ContentBlock {
	return &ast.ContentBlock{Body: Markup(exprs...)}
}

func Text(s string) *ast.Text { return &ast.Text{Text: s} }
func Space() *ast.Space       { return &ast.Space{} }

func Strong(exprs ...ast.Expr) *ast.Strong { return &ast.Strong{Body: Markup(exprs...)} }
func Emph(exprs ...ast.Expr) *ast.Emph     { return &ast.Emph{Body: Markup(exprs...)} }

func Heading(level int, exprs ...ast.Expr) *ast.Heading {
	return &ast.Heading{Level: level, Body: Markup(exprs...)}
}

// Literals and variables.

func None() *ast.NoneLit                  { return &ast.NoneLit{} }
func Bool(v bool) *ast.BoolLit            { return &ast.BoolLit{Value: v} }
func Int(v int64) *ast.IntLit             { return &ast.IntLit{Value: v} }
func Float(v float64) *ast.FloatLit       { return &ast.FloatLit{Value: v} }
func Str(s string) *ast.StrLit            { return &ast.StrLit{Value: s} }
func Label(name string) *ast.LabelLit     { return &ast.LabelLit{Name: name} }
func Id(name string) *ast.Ident           { return &ast.Ident{Name: name} }
func Paren(e ast.Expr) *ast.Parenthesized { return &ast.Parenthesized{Expr: e} }

func Numeric(v float64, unit ast.Unit) *ast.NumericLit {
	return &ast.NumericLit{Value: v, Unit: unit}
}

// Array builds an array literal from positional items.
func Array(items ...ast.Expr) *ast.ArrayLit {
	lit := &ast.ArrayLit{}
	for _, e := range items {
		lit.Items = append(lit.Items, ast.ArrayItem{Expr: e})
	}
	return lit
}

// Dict builds a dictionary literal from alternating names and values.
func Dict(pairs ...any) *ast.DictLit {
	lit := &ast.DictLit{}
	for i := 0; i+1 < len(pairs); i += 2 {
		lit.Items = append(lit.Items, ast.DictItem{Name: pairs[i].(string), Expr: pairs[i+1].(ast.Expr)})
	}
	return lit
}

// Operators.

func Bin(op ast.BinOp, lhs, rhs ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs}
}

func Add(lhs, rhs ast.Expr) *ast.Binary    { return Bin(ast.BinAdd, lhs, rhs) }
func Assign(lhs, rhs ast.Expr) *ast.Binary { return Bin(ast.BinAssign, lhs, rhs) }

func Unary(op ast.UnOp, e ast.Expr) *ast.Unary { return &ast.Unary{Op: op, Expr: e} }

func Field(target ast.Expr, name string) *ast.FieldAccess {
	return &ast.FieldAccess{Target: target, Field: name}
}

// Calls.

func Pos(e ast.Expr) ast.Arg                { return ast.Arg{Expr: e} }
func Named(name string, e ast.Expr) ast.Arg { return ast.Arg{Name: name, Expr: e} }
func SpreadArg(e ast.Expr) ast.Arg          { return ast.Arg{Spread: true, Expr: e} }

// Call calls callee with positional arguments.
func Call(callee ast.Expr, args ...ast.Expr) *ast.FuncCall {
	call := &ast.FuncCall{Callee: callee}
	for _, e := range args {
		call.Args = append(call.Args, Pos(e))
	}
	return call
}

// CallArgs calls callee with arbitrary arguments.
func CallArgs(callee ast.Expr, args ...ast.Arg) *ast.FuncCall {
	return &ast.FuncCall{Callee: callee, Args: args}
}

// Method calls recv.name with positional arguments.
func Method(recv ast.Expr, name string, args ...ast.Expr) *ast.FuncCall {
	return Call(Field(recv, name), args...)
}

// Bindings and patterns.

func P(name string) *ast.NormalPattern { return &ast.NormalPattern{Expr: Id(name)} }
func Placeholder() *ast.Placeholder    { return &ast.Placeholder{} }

func Let(name string, init ast.Expr) *ast.LetBinding {
	return &ast.LetBinding{Pattern: P(name), Init: init}
}

func LetPattern(p ast.Pattern, init ast.Expr) *ast.LetBinding {
	return &ast.LetBinding{Pattern: p, Init: init}
}

func LetFunc(name string, params []ast.Param, body ast.Expr) *ast.LetBinding {
	return &ast.LetBinding{Closure: &ast.Closure{Name: name, Params: params, Body: body}}
}

func Destructure(items ...ast.DestructItem) *ast.Destructuring {
	return &ast.Destructuring{Items: items}
}

func Item(name string) ast.DestructItem {
	return ast.DestructItem{Kind: ast.DestructPos, Pattern: P(name)}
}

func NamedItem(name string) ast.DestructItem {
	return ast.DestructItem{Kind: ast.DestructNamed, Name: name}
}

// Rest is a spread item; an empty name discards the rest.
func Rest(name string) ast.DestructItem {
	it := ast.DestructItem{Kind: ast.DestructSpread}
	if name != "" {
		it.Pattern = P(name)
	}
	return it
}

func DestructAssign(p ast.Pattern, v ast.Expr) *ast.DestructAssignment {
	return &ast.DestructAssignment{Pattern: p, Value: v}
}

// Closures.

func Closure(params []ast.Param, body ast.Expr) *ast.Closure {
	return &ast.Closure{Params: params, Body: body}
}

// Params declares plain positional parameters.
func Params(names ...string) []ast.Param {
	out := make([]ast.Param, len(names))
	for i, n := range names {
		out[i] = PosParam(n)
	}
	return out
}

func PosParam(name string) ast.Param {
	return ast.Param{Kind: ast.ParamPos, Pattern: P(name)}
}

func NamedParam(name string, def ast.Expr) ast.Param {
	return ast.Param{Kind: ast.ParamNamed, Name: name, Default: def}
}

func SinkParam(name string) ast.Param {
	return ast.Param{Kind: ast.ParamSink, Name: name}
}

// Control flow.

func If(cond, then, otherwise ast.Expr) *ast.Conditional {
	return &ast.Conditional{Cond: cond, IfBody: then, ElseBody: otherwise}
}

func While(cond, body ast.Expr) *ast.WhileLoop { return &ast.WhileLoop{Cond: cond, Body: body} }

func For(p ast.Pattern, iterable, body ast.Expr) *ast.ForLoop {
	return &ast.ForLoop{Pattern: p, Iterable: iterable, Body: body}
}

func Break() *ast.LoopBreak             { return &ast.LoopBreak{} }
func Continue() *ast.LoopContinue       { return &ast.LoopContinue{} }
func Return(e ast.Expr) *ast.FuncReturn { return &ast.FuncReturn{Body: e} }

// Rules and modules.

func Set(target ast.Expr, args ...ast.Arg) *ast.SetRule {
	return &ast.SetRule{Target: target, Args: args}
}

func Show(selector, transform ast.Expr) *ast.ShowRule {
	return &ast.ShowRule{Selector: selector, Transform: transform}
}

func Import(source ast.Expr, items ...string) *ast.ModuleImport {
	imp := &ast.ModuleImport{Source: source}
	for _, it := range items {
		imp.Items = append(imp.Items, ast.ImportItem{Name: it})
	}
	return imp
}

func ImportAs(source ast.Expr, name string) *ast.ModuleImport {
	return &ast.ModuleImport{Source: source, NewName: name}
}

func Include(source ast.Expr) *ast.ModuleInclude { return &ast.ModuleInclude{Source: source} }
