// Package ast defines the expression tree handed to the compiler by the
// parser collaborator.
//
// The tree is never re-parsed or modified here. Every node carries the span
// assigned by the parser so that diagnostics can point back at the source.
// The node set covers both modes of the language: markup (text, strong,
// emphasis, headings, content blocks) and code (expressions, bindings,
// rules, loops, imports).
package ast

// Node is implemented by every tree node.
type Node interface {
	Span() Span
}

// Expr is any node that can be evaluated.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Markup
// ---------------------------------------------------------------------------

// Markup is a sequence of markup expressions evaluated in display mode.
type Markup struct {
	Sp    Span
	Exprs []Expr
}

// Text is a run of plain text.
type Text struct {
	Sp   Span
	Text string
}

// Space is inter-word whitespace.
type Space struct{ Sp Span }

// Linebreak is a forced line break.
type Linebreak struct{ Sp Span }

// Parbreak separates paragraphs.
type Parbreak struct{ Sp Span }

// Strong is strongly emphasized markup: *body*.
type Strong struct {
	Sp   Span
	Body *Markup
}

// Emph is emphasized markup: _body_.
type Emph struct {
	Sp   Span
	Body *Markup
}

// Heading is a section heading: = body.
type Heading struct {
	Sp    Span
	Level int
	Body  *Markup
}

// ContentBlock embeds markup in code: [body].
type ContentBlock struct {
	Sp   Span
	Body *Markup
}

// ---------------------------------------------------------------------------
// Code
// ---------------------------------------------------------------------------

// Code is a sequence of code expressions evaluated in scripting mode.
type Code struct {
	Sp    Span
	Exprs []Expr
}

// CodeBlock is a braced code block: { exprs }.
type CodeBlock struct {
	Sp   Span
	Body *Code
}

// Ident is a variable reference.
type Ident struct {
	Sp   Span
	Name string
}

// NoneLit is the literal none.
type NoneLit struct{ Sp Span }

// AutoLit is the literal auto.
type AutoLit struct{ Sp Span }

// BoolLit is true or false.
type BoolLit struct {
	Sp    Span
	Value bool
}

// IntLit is an integer literal.
type IntLit struct {
	Sp    Span
	Value int64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Sp    Span
	Value float64
}

// Unit is the unit suffix of a numeric literal.
type Unit uint8

const (
	UnitPt Unit = iota
	UnitMm
	UnitCm
	UnitIn
	UnitEm
	UnitPercent
)

// NumericLit is a number with a unit: 12pt, 2em, 50%.
type NumericLit struct {
	Sp    Span
	Value float64
	Unit  Unit
}

// StrLit is a string literal.
type StrLit struct {
	Sp    Span
	Value string
}

// LabelLit is a label: <name>.
type LabelLit struct {
	Sp   Span
	Name string
}

// ArrayItem is one item of an array literal.
type ArrayItem struct {
	Spread bool
	Expr   Expr
}

// ArrayLit is an array literal: (1, 2, ..rest).
type ArrayLit struct {
	Sp    Span
	Items []ArrayItem
}

// DictItem is one item of a dictionary literal. Exactly one of Name and
// Key is set unless Spread is true.
type DictItem struct {
	Sp     Span
	Name   string
	Key    Expr
	Spread bool
	Expr   Expr
}

// DictLit is a dictionary literal: (a: 1, "b": 2, ..rest).
type DictLit struct {
	Sp    Span
	Items []DictItem
}

// Parenthesized is (expr).
type Parenthesized struct {
	Sp   Span
	Expr Expr
}

// UnOp is a unary operator.
type UnOp uint8

const (
	UnPos UnOp = iota
	UnNeg
	UnNot
)

// Unary is a unary operation.
type Unary struct {
	Sp   Span
	Op   UnOp
	Expr Expr
}

// BinOp is a binary operator.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinAnd
	BinOr
	BinEq
	BinNeq
	BinLt
	BinLeq
	BinGt
	BinGeq
	BinIn
	BinNotIn
	BinAssign
	BinAddAssign
	BinSubAssign
	BinMulAssign
	BinDivAssign
)

// IsAssignment reports whether the operator writes to its left operand.
func (op BinOp) IsAssignment() bool {
	return op >= BinAssign
}

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinEq:
		return "=="
	case BinNeq:
		return "!="
	case BinLt:
		return "<"
	case BinLeq:
		return "<="
	case BinGt:
		return ">"
	case BinGeq:
		return ">="
	case BinIn:
		return "in"
	case BinNotIn:
		return "not in"
	case BinAssign:
		return "="
	case BinAddAssign:
		return "+="
	case BinSubAssign:
		return "-="
	case BinMulAssign:
		return "*="
	case BinDivAssign:
		return "/="
	}
	return "?"
}

// Binary is a binary operation, including assignments.
type Binary struct {
	Sp  Span
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

// FieldAccess is target.field.
type FieldAccess struct {
	Sp      Span
	Target  Expr
	Field   string
	FieldSp Span
}

// Arg is one argument of a call. Name is empty for positional arguments.
type Arg struct {
	Sp     Span
	Name   string
	Spread bool
	Expr   Expr
}

// FuncCall is callee(args) with optional trailing content blocks already
// appended to Args by the parser.
type FuncCall struct {
	Sp     Span
	Callee Expr
	Args   []Arg
}

// ParamKind distinguishes closure parameters.
type ParamKind uint8

const (
	ParamPos ParamKind = iota
	ParamNamed
	ParamSink
)

// Param is one closure parameter. Positional parameters bind Pattern;
// named parameters bind Name with Default; sinks bind Name (which may be
// empty to swallow arguments).
type Param struct {
	Sp      Span
	Kind    ParamKind
	Pattern Pattern
	Name    string
	Default Expr
}

// Closure is an anonymous or let-bound function.
type Closure struct {
	Sp     Span
	Name   string
	Params []Param
	Body   Expr
}

// LetBinding is `let pattern = init` or `let name(params) = body`.
// For the closure form Closure is set and Pattern is nil.
type LetBinding struct {
	Sp      Span
	Pattern Pattern
	Init    Expr
	Closure *Closure
}

// DestructAssignment is `(a, b) = value`.
type DestructAssignment struct {
	Sp      Span
	Pattern Pattern
	Value   Expr
}

// SetRule is `set target(args) if condition`.
type SetRule struct {
	Sp        Span
	Target    Expr
	Args      []Arg
	Condition Expr
}

// ShowRule is `show selector: transform`. Selector is nil for show-everything
// rules.
type ShowRule struct {
	Sp        Span
	Selector  Expr
	Transform Expr
}

// Conditional is if/else.
type Conditional struct {
	Sp       Span
	Cond     Expr
	IfBody   Expr
	ElseBody Expr
}

// WhileLoop is `while cond body`.
type WhileLoop struct {
	Sp   Span
	Cond Expr
	Body Expr
}

// ForLoop is `for pattern in iterable body`.
type ForLoop struct {
	Sp       Span
	Pattern  Pattern
	Iterable Expr
	Body     Expr
}

// ImportItem is one name imported from a module, optionally renamed.
type ImportItem struct {
	Sp    Span
	Name  string
	Alias string
}

// ModuleImport is `import source`, `import source as name` or
// `import source: a, b as c`.
type ModuleImport struct {
	Sp      Span
	Source  Expr
	NewName string
	Items   []ImportItem
}

// ModuleInclude is `include source`.
type ModuleInclude struct {
	Sp     Span
	Source Expr
}

// LoopBreak is `break`.
type LoopBreak struct{ Sp Span }

// LoopContinue is `continue`.
type LoopContinue struct{ Sp Span }

// FuncReturn is `return` with an optional value.
type FuncReturn struct {
	Sp   Span
	Body Expr
}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// Pattern is the target of a binding or destructuring assignment.
type Pattern interface {
	Node
	patternNode()
}

// NormalPattern binds or assigns a single expression. In let bindings the
// expression is an *Ident.
type NormalPattern struct {
	Sp   Span
	Expr Expr
}

// Placeholder is `_`.
type Placeholder struct{ Sp Span }

// DestructItemKind distinguishes destructuring items.
type DestructItemKind uint8

const (
	DestructPos DestructItemKind = iota
	DestructNamed
	DestructSpread
)

// DestructItem is one item of a destructuring pattern. Spread items carry
// an optional sink in Pattern.
type DestructItem struct {
	Sp      Span
	Kind    DestructItemKind
	Name    string
	Pattern Pattern
}

// Destructuring is `(a, b: c, ..rest)`.
type Destructuring struct {
	Sp    Span
	Items []DestructItem
}

func (n *Markup) Span() Span             { return n.Sp }
func (n *Text) Span() Span               { return n.Sp }
func (n *Space) Span() Span              { return n.Sp }
func (n *Linebreak) Span() Span          { return n.Sp }
func (n *Parbreak) Span() Span           { return n.Sp }
func (n *Strong) Span() Span             { return n.Sp }
func (n *Emph) Span() Span               { return n.Sp }
func (n *Heading) Span() Span            { return n.Sp }
func (n *ContentBlock) Span() Span       { return n.Sp }
func (n *Code) Span() Span               { return n.Sp }
func (n *CodeBlock) Span() Span          { return n.Sp }
func (n *Ident) Span() Span              { return n.Sp }
func (n *NoneLit) Span() Span            { return n.Sp }
func (n *AutoLit) Span() Span            { return n.Sp }
func (n *BoolLit) Span() Span            { return n.Sp }
func (n *IntLit) Span() Span             { return n.Sp }
func (n *FloatLit) Span() Span           { return n.Sp }
func (n *NumericLit) Span() Span         { return n.Sp }
func (n *StrLit) Span() Span             { return n.Sp }
func (n *LabelLit) Span() Span           { return n.Sp }
func (n *ArrayLit) Span() Span           { return n.Sp }
func (n *DictLit) Span() Span            { return n.Sp }
func (n *Parenthesized) Span() Span      { return n.Sp }
func (n *Unary) Span() Span              { return n.Sp }
func (n *Binary) Span() Span             { return n.Sp }
func (n *FieldAccess) Span() Span        { return n.Sp }
func (n *FuncCall) Span() Span           { return n.Sp }
func (n *Closure) Span() Span            { return n.Sp }
func (n *LetBinding) Span() Span         { return n.Sp }
func (n *DestructAssignment) Span() Span { return n.Sp }
func (n *SetRule) Span() Span            { return n.Sp }
func (n *ShowRule) Span() Span           { return n.Sp }
func (n *Conditional) Span() Span        { return n.Sp }
func (n *WhileLoop) Span() Span          { return n.Sp }
func (n *ForLoop) Span() Span            { return n.Sp }
func (n *ModuleImport) Span() Span       { return n.Sp }
func (n *ModuleInclude) Span() Span      { return n.Sp }
func (n *LoopBreak) Span() Span          { return n.Sp }
func (n *LoopContinue) Span() Span       { return n.Sp }
func (n *FuncReturn) Span() Span         { return n.Sp }
func (n *NormalPattern) Span() Span      { return n.Sp }
func (n *Placeholder) Span() Span        { return n.Sp }
func (n *Destructuring) Span() Span      { return n.Sp }

func (*Markup) exprNode()             {}
func (*Text) exprNode()               {}
func (*Space) exprNode()              {}
func (*Linebreak) exprNode()          {}
func (*Parbreak) exprNode()           {}
func (*Strong) exprNode()             {}
func (*Emph) exprNode()               {}
func (*Heading) exprNode()            {}
func (*ContentBlock) exprNode()       {}
func (*Code) exprNode()               {}
func (*CodeBlock) exprNode()          {}
func (*Ident) exprNode()              {}
func (*NoneLit) exprNode()            {}
func (*AutoLit) exprNode()            {}
func (*BoolLit) exprNode()            {}
func (*IntLit) exprNode()             {}
func (*FloatLit) exprNode()           {}
func (*NumericLit) exprNode()         {}
func (*StrLit) exprNode()             {}
func (*LabelLit) exprNode()           {}
func (*ArrayLit) exprNode()           {}
func (*DictLit) exprNode()            {}
func (*Parenthesized) exprNode()      {}
func (*Unary) exprNode()              {}
func (*Binary) exprNode()             {}
func (*FieldAccess) exprNode()        {}
func (*FuncCall) exprNode()           {}
func (*Closure) exprNode()            {}
func (*LetBinding) exprNode()         {}
func (*DestructAssignment) exprNode() {}
func (*SetRule) exprNode()            {}
func (*ShowRule) exprNode()           {}
func (*Conditional) exprNode()        {}
func (*WhileLoop) exprNode()          {}
func (*ForLoop) exprNode()            {}
func (*ModuleImport) exprNode()       {}
func (*ModuleInclude) exprNode()      {}
func (*LoopBreak) exprNode()          {}
func (*LoopContinue) exprNode()       {}
func (*FuncReturn) exprNode()         {}

func (*NormalPattern) patternNode() {}
func (*Placeholder) patternNode()   {}
func (*Destructuring) patternNode() {}
