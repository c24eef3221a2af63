package vm

import (
	"strings"
	"testing"

	"github.com/chazu/folio/compiler"
	"github.com/chazu/folio/internal/asttest"
	"github.com/chazu/folio/lib/std"
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/value"
)

func run(root ast.Expr, cfg Config) (*value.Module, error) {
	lib := std.Library()
	u, err := compiler.Compile(root, "main.typ", lib, nil)
	if err != nil {
		return nil, err
	}
	return New(lib, cfg).RunModule(u)
}

func mustRun(t *testing.T, root ast.Expr) *value.Module {
	t.Helper()
	mod, err := run(root, Config{})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return mod
}

func expectError(t *testing.T, root ast.Expr, cfg Config, want string) {
	t.Helper()
	_, err := run(root, cfg)
	if err == nil {
		t.Fatalf("expected error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want %q", err, want)
	}
}

// exported returns the repr of a top-level binding.
func exported(t *testing.T, mod *value.Module, name string) string {
	t.Helper()
	v, ok := mod.Scope.Get(name)
	if !ok {
		t.Fatalf("module does not export %s", name)
	}
	return value.Repr(v)
}

func TestArithmetic(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("r", asttest.Add(asttest.Int(1), asttest.Bin(ast.BinMul, asttest.Int(2), asttest.Int(3)))),
	))
	if got := exported(t, mod, "r"); got != "7" {
		t.Errorf("r = %s, want 7", got)
	}
}

func TestCompoundAssign(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("x", asttest.Int(1)),
		asttest.Bin(ast.BinAddAssign, asttest.Id("x"), asttest.Int(2)),
		asttest.Let("s", asttest.Str("a")),
		asttest.Bin(ast.BinAddAssign, asttest.Id("s"), asttest.Str("b")),
		asttest.Let("xs", asttest.Array(asttest.Int(1))),
		asttest.Bin(ast.BinMulAssign, asttest.Id("xs"), asttest.Int(2)),
	))
	tests := []struct {
		name, want string
	}{
		{"x", "3"},
		{"s", `"ab"`},
		{"xs", "(1, 1)"},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEvaluationOrder(t *testing.T) {
	reassign := func(name string, v, result ast.Expr) ast.Expr {
		return asttest.Block(asttest.Assign(asttest.Id(name), v), result)
	}
	logged := func(entry string, result ast.Expr) ast.Expr {
		return asttest.Block(asttest.Method(asttest.Id("log"), "push", asttest.Str(entry)), result)
	}
	mod := mustRun(t, asttest.Code(
		asttest.Let("x", asttest.Int(1)),
		asttest.Let("sum", asttest.Add(asttest.Id("x"), reassign("x", asttest.Int(2), asttest.Id("x")))),

		asttest.Let("k", asttest.Str("a")),
		asttest.Let("d", &ast.DictLit{Items: []ast.DictItem{
			{Key: asttest.Id("k"), Expr: reassign("k", asttest.Str("b"), asttest.Int(1))},
		}}),

		asttest.Let("log", asttest.Array()),
		asttest.Let("order", &ast.DictLit{Items: []ast.DictItem{
			{Key: logged("key", asttest.Str("a")), Expr: logged("value", asttest.Int(1))},
		}}),

		asttest.Let("f", asttest.Closure(asttest.Params("a"), asttest.Add(asttest.Id("a"), asttest.Int(1)))),
		asttest.Let("called", asttest.Call(asttest.Id("f"), reassign("f",
			asttest.Closure(asttest.Params("a"), asttest.Bin(ast.BinMul, asttest.Id("a"), asttest.Int(10))),
			asttest.Int(2),
		))),
	))
	tests := []struct {
		name, want string
	}{
		{"sum", "3"},
		{"x", "2"},
		{"d", "(a: 1)"},
		{"order", "(a: 1)"},
		{"log", `("key", "value")`},
		{"called", "3"},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCompoundAssignTypeErrorKeepsValue(t *testing.T) {
	expectError(t, asttest.Code(
		asttest.Let("x", asttest.Int(1)),
		asttest.Bin(ast.BinAddAssign, asttest.Id("x"), asttest.Str("a")),
	), Config{}, "cannot add")
}

func TestDisplayJoin(t *testing.T) {
	mod := mustRun(t, asttest.Markup(asttest.Text("a"), asttest.Text("b")))
	if n := len(mod.Content.Children()); n != 2 {
		t.Errorf("children = %d, want 2", n)
	}
	if got := mod.Content.PlainText(); got != "ab" {
		t.Errorf("text = %q, want ab", got)
	}

	mod = mustRun(t, asttest.Markup(asttest.Text("n = "), asttest.Int(1), asttest.None()))
	if got := mod.Content.PlainText(); got != "n = 1" {
		t.Errorf("text = %q, want %q", got, "n = 1")
	}
}

func TestScriptingJoin(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("r", asttest.Block(asttest.Str("a"), asttest.None(), asttest.Str("b"))),
		asttest.Let("n", asttest.Block(asttest.Let("tmp", asttest.Int(1)), asttest.Id("tmp"))),
	))
	if got := exported(t, mod, "r"); got != `"ab"` {
		t.Errorf("r = %s, want \"ab\"", got)
	}
	if got := exported(t, mod, "n"); got != "1" {
		t.Errorf("n = %s, want 1", got)
	}

	expectError(t, asttest.Code(asttest.Int(1), asttest.Str("a")), Config{}, "cannot join integer with string")
}

func TestLabelAttachesToPreviousContent(t *testing.T) {
	mod := mustRun(t, asttest.Markup(
		asttest.Strong(asttest.Text("x")),
		asttest.Space(),
		asttest.Label("intro"),
	))
	children := mod.Content.Children()
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if l, ok := children[0].Label(); !ok || l != "intro" {
		t.Errorf("label = %q, %v, want intro", l, ok)
	}
}

func TestFieldAssign(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("d", asttest.Dict("a", asttest.Int(1))),
		asttest.Assign(asttest.Field(asttest.Id("d"), "b"), asttest.Int(2)),
		asttest.Assign(asttest.Field(asttest.Id("d"), "a"), asttest.Int(3)),
		asttest.Let("nested", asttest.Dict("inner", asttest.Dict())),
		asttest.Assign(asttest.Field(asttest.Field(asttest.Id("nested"), "inner"), "k"), asttest.Str("v")),
	))
	if got := exported(t, mod, "d"); got != "(a: 3, b: 2)" {
		t.Errorf("d = %s, want (a: 3, b: 2)", got)
	}
	if got := exported(t, mod, "nested"); got != `(inner: (k: "v"))` {
		t.Errorf("nested = %s", got)
	}
}

func TestFieldMutationErrors(t *testing.T) {
	expectError(t, asttest.Code(
		asttest.Let("d", asttest.Dict("a", asttest.Int(1))),
		asttest.Bin(ast.BinAddAssign, asttest.Field(asttest.Id("d"), "z"), asttest.Int(1)),
	), Config{}, "does not contain key")

	expectError(t, asttest.Code(
		asttest.Let("s", asttest.Str("x")),
		asttest.Assign(asttest.Field(asttest.Id("s"), "a"), asttest.Int(1)),
	), Config{}, "cannot mutate fields on")
}

func TestAccessorAssign(t *testing.T) {
	last := asttest.Method(asttest.Id("arr"), "at", asttest.Unary(ast.UnNeg, asttest.Int(1)))
	mod := mustRun(t, asttest.Code(
		asttest.Let("arr", asttest.Array(asttest.Int(1), asttest.Int(2), asttest.Int(3))),
		asttest.Let("before", last),
		asttest.Assign(asttest.Method(asttest.Id("arr"), "at", asttest.Unary(ast.UnNeg, asttest.Int(1))), asttest.Int(9)),
		asttest.Bin(ast.BinAddAssign, asttest.Method(asttest.Id("arr"), "first"), asttest.Int(10)),
	))
	if got := exported(t, mod, "before"); got != "3" {
		t.Errorf("before = %s, want 3", got)
	}
	if got := exported(t, mod, "arr"); got != "(11, 2, 9)" {
		t.Errorf("arr = %s, want (11, 2, 9)", got)
	}

	expectError(t, asttest.Code(
		asttest.Let("arr", asttest.Array(asttest.Int(1))),
		asttest.Assign(asttest.Method(asttest.Id("arr"), "at", asttest.Int(5)), asttest.Int(0)),
	), Config{}, "out of bounds")
}

func TestMutatingMethods(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("xs", asttest.Array(asttest.Int(1))),
		asttest.Let("snapshot", asttest.Id("xs")),
		asttest.Method(asttest.Id("xs"), "push", asttest.Int(2)),
		asttest.Let("d", asttest.Dict("a", asttest.Int(1))),
		asttest.Let("gone", asttest.Method(asttest.Id("d"), "remove", asttest.Str("a"))),
	))
	if got := exported(t, mod, "xs"); got != "(1, 2)" {
		t.Errorf("xs = %s, want (1, 2)", got)
	}
	if got := exported(t, mod, "snapshot"); got != "(1,)" {
		t.Errorf("snapshot = %s, want (1,)", got)
	}
	if got := exported(t, mod, "d"); got != "(:)" {
		t.Errorf("d = %s, want (:)", got)
	}
	if got := exported(t, mod, "gone"); got != "1" {
		t.Errorf("gone = %s, want 1", got)
	}
}

func TestMutationErrors(t *testing.T) {
	tests := []struct {
		name string
		root ast.Expr
		want string
	}{
		{
			"built-in",
			asttest.Code(asttest.Assign(asttest.Id("repr"), asttest.Int(1))),
			"cannot mutate a built-in: repr",
		},
		{
			"temporary",
			asttest.Code(asttest.Method(asttest.Array(asttest.Int(1)), "push", asttest.Int(2))),
			"cannot mutate a temporary value",
		},
		{
			"temporary through accessor",
			asttest.Code(asttest.Assign(
				asttest.Method(asttest.Array(asttest.Int(1)), "first"),
				asttest.Int(2),
			)),
			"cannot mutate a temporary value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.root, Config{}, tt.want)
		})
	}
}

func TestClosureSnapshots(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("n", asttest.Int(1)),
		asttest.Let("f", asttest.Closure(nil, asttest.Id("n"))),
		asttest.Assign(asttest.Id("n"), asttest.Int(2)),
		asttest.Let("g", asttest.Closure(nil, asttest.Id("n"))),
		asttest.Let("a", asttest.Call(asttest.Id("f"))),
		asttest.Let("b", asttest.Call(asttest.Id("g"))),
	))
	if got := exported(t, mod, "a"); got != "1" {
		t.Errorf("a = %s, want 1", got)
	}
	if got := exported(t, mod, "b"); got != "2" {
		t.Errorf("b = %s, want 2", got)
	}
}

func TestClosureSnapshotsContainers(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("xs", asttest.Array(asttest.Int(1))),
		asttest.Let("f", asttest.Closure(nil, asttest.Method(asttest.Id("xs"), "len"))),
		asttest.Method(asttest.Id("xs"), "push", asttest.Int(2)),
		asttest.Let("n", asttest.Call(asttest.Id("f"))),
	))
	if got := exported(t, mod, "n"); got != "1" {
		t.Errorf("n = %s, want 1", got)
	}
}

func TestParameters(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("d", asttest.Int(1)),
		asttest.LetFunc("named", []ast.Param{asttest.NamedParam("k", asttest.Id("d"))}, asttest.Id("k")),
		asttest.Assign(asttest.Id("d"), asttest.Int(2)),
		asttest.Let("byDefault", asttest.Call(asttest.Id("named"))),
		asttest.Let("explicit", asttest.CallArgs(asttest.Id("named"), asttest.Named("k", asttest.Int(5)))),

		asttest.LetFunc("sink",
			[]ast.Param{asttest.PosParam("a"), asttest.SinkParam("rest"), asttest.PosParam("z")},
			asttest.Array(asttest.Id("a"), asttest.Method(asttest.Id("rest"), "pos"), asttest.Id("z")),
		),
		asttest.Let("spread", asttest.Call(asttest.Id("sink"), asttest.Int(1), asttest.Int(2), asttest.Int(3), asttest.Int(4))),
		asttest.Let("short", asttest.Call(asttest.Id("sink"), asttest.Int(1), asttest.Int(2))),
	))
	tests := []struct {
		name, want string
	}{
		{"byDefault", "1"},
		{"explicit", "5"},
		{"spread", "(1, (2, 3), 4)"},
		{"short", "(1, (), 2)"},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestArgumentErrors(t *testing.T) {
	f := asttest.LetFunc("f", asttest.Params("a"), asttest.Id("a"))
	expectError(t, asttest.Code(f, asttest.Call(asttest.Id("f"))), Config{}, "missing argument: a")
	expectError(t, asttest.Code(f, asttest.Call(asttest.Id("f"), asttest.Int(1), asttest.Int(2))), Config{}, "unexpected argument")
	expectError(t, asttest.Code(asttest.Call(asttest.Int(1))), Config{}, "expected function, found integer")
}

func TestRecursion(t *testing.T) {
	// fact(n) = if n <= 1 { 1 } else { n * fact(n - 1) }
	body := asttest.If(
		asttest.Bin(ast.BinLeq, asttest.Id("n"), asttest.Int(1)),
		asttest.Block(asttest.Int(1)),
		asttest.Block(asttest.Bin(ast.BinMul, asttest.Id("n"),
			asttest.Call(asttest.Id("fact"), asttest.Bin(ast.BinSub, asttest.Id("n"), asttest.Int(1))))),
	)
	mod := mustRun(t, asttest.Code(
		asttest.LetFunc("fact", asttest.Params("n"), body),
		asttest.Let("r", asttest.Call(asttest.Id("fact"), asttest.Int(5))),
	))
	if got := exported(t, mod, "r"); got != "120" {
		t.Errorf("r = %s, want 120", got)
	}
}

func TestReturn(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.LetFunc("early", asttest.Params("x"), asttest.Block(
			asttest.If(asttest.Id("x"), asttest.Return(asttest.Str("yes")), nil),
			asttest.Str("no"),
		)),
		asttest.LetFunc("bare", nil, asttest.Block(
			asttest.Str("a"),
			asttest.Str("b"),
			asttest.Return(nil),
			asttest.Str("c"),
		)),
		asttest.Let("y", asttest.Call(asttest.Id("early"), asttest.Bool(true))),
		asttest.Let("n", asttest.Call(asttest.Id("early"), asttest.Bool(false))),
		asttest.Let("joined", asttest.Call(asttest.Id("bare"))),
	))
	tests := []struct {
		name, want string
	}{
		{"y", `"yes"`},
		{"n", `"no"`},
		{"joined", `"ab"`},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDestructuring(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.LetPattern(
			asttest.Destructure(asttest.Item("a"), asttest.Rest("mid"), asttest.Item("z")),
			asttest.Array(asttest.Int(1), asttest.Int(2), asttest.Int(3), asttest.Int(4)),
		),
		asttest.LetPattern(
			asttest.Destructure(asttest.NamedItem("x"), asttest.Rest("others")),
			asttest.Dict("x", asttest.Int(1), "y", asttest.Int(2)),
		),
		asttest.Let("p", asttest.Int(1)),
		asttest.Let("q", asttest.Int(2)),
		asttest.DestructAssign(
			asttest.Destructure(asttest.Item("p"), asttest.Item("q")),
			asttest.Array(asttest.Id("q"), asttest.Id("p")),
		),
	))
	tests := []struct {
		name, want string
	}{
		{"a", "1"},
		{"mid", "(2, 3)"},
		{"z", "4"},
		{"x", "1"},
		{"others", "(y: 2)"},
		{"p", "2"},
		{"q", "1"},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDestructuringErrors(t *testing.T) {
	pair := asttest.Destructure(asttest.Item("a"), asttest.Item("b"))
	expectError(t, asttest.Code(
		asttest.LetPattern(pair, asttest.Array(asttest.Int(1))),
	), Config{}, "not enough elements to destructure")
	expectError(t, asttest.Code(
		asttest.LetPattern(asttest.Destructure(asttest.Item("a")), asttest.Array(asttest.Int(1), asttest.Int(2))),
	), Config{}, "too many elements to destructure")
	expectError(t, asttest.Code(
		asttest.LetPattern(asttest.Destructure(asttest.Item("a")), asttest.Int(1)),
	), Config{}, "cannot destructure")
}

func TestForLoops(t *testing.T) {
	eq := func(name string, n int64) ast.Expr {
		return asttest.Bin(ast.BinEq, asttest.Id(name), asttest.Int(n))
	}
	mod := mustRun(t, asttest.Code(
		asttest.Let("sum", asttest.Int(0)),
		asttest.For(asttest.P("i"), asttest.Array(asttest.Int(1), asttest.Int(2), asttest.Int(3), asttest.Int(4), asttest.Int(5)), asttest.Block(
			asttest.If(eq("i", 2), asttest.Continue(), nil),
			asttest.If(eq("i", 4), asttest.Break(), nil),
			asttest.Bin(ast.BinAddAssign, asttest.Id("sum"), asttest.Id("i")),
		)),

		asttest.Let("chars", asttest.Array()),
		asttest.For(asttest.P("c"), asttest.Str("e\u0301x"), asttest.Block(
			asttest.Method(asttest.Id("chars"), "push", asttest.Id("c")),
		)),

		asttest.Let("keys", asttest.Str("")),
		asttest.For(
			asttest.Destructure(asttest.Item("k"), asttest.Item("v")),
			asttest.Dict("a", asttest.Int(1), "b", asttest.Int(2)),
			asttest.Block(asttest.Bin(ast.BinAddAssign, asttest.Id("keys"), asttest.Id("k"))),
		),

		asttest.Let("joined", asttest.For(asttest.P("s"), asttest.Array(asttest.Str("x"), asttest.Str("y")), asttest.Block(asttest.Id("s")))),
	))
	tests := []struct {
		name, want string
	}{
		{"sum", "4"},
		{"chars", "(\"e\u0301\", \"x\")"},
		{"keys", `"ab"`},
		{"joined", `"xy"`},
	}
	for _, tt := range tests {
		if got := exported(t, mod, tt.name); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}

	expectError(t, asttest.Code(
		asttest.For(asttest.P("x"), asttest.Int(3), asttest.Block()),
	), Config{}, "cannot loop over integer")
}

func TestWhileLoops(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("i", asttest.Int(0)),
		asttest.While(asttest.Bin(ast.BinLt, asttest.Id("i"), asttest.Int(3)), asttest.Block(
			asttest.Bin(ast.BinAddAssign, asttest.Id("i"), asttest.Int(1)),
		)),
	))
	if got := exported(t, mod, "i"); got != "3" {
		t.Errorf("i = %s, want 3", got)
	}

	expectError(t, asttest.Code(
		asttest.While(asttest.Bool(true), asttest.Block(asttest.None())),
	), Config{MaxIterations: 50}, "loop seems to be infinite")

	expectError(t, asttest.Code(
		asttest.While(asttest.Int(1), asttest.Block()),
	), Config{}, "expected boolean, found integer")
}

func TestCallDepthLimit(t *testing.T) {
	root := asttest.Code(
		asttest.LetFunc("f", asttest.Params("n"), asttest.Call(asttest.Id("f"), asttest.Id("n"))),
		asttest.Call(asttest.Id("f"), asttest.Int(1)),
	)
	expectError(t, root, Config{MaxCallDepth: 16}, "maximum function call depth exceeded")
}

func TestMemoizedCalls(t *testing.T) {
	memo := NewMapMemo()
	root := asttest.Code(
		asttest.LetFunc("f", asttest.Params("x"), asttest.Add(asttest.Id("x"), asttest.Int(1))),
		asttest.Let("a", asttest.Call(asttest.Id("f"), asttest.Int(1))),
		asttest.Let("b", asttest.Call(asttest.Id("f"), asttest.Int(1))),
		asttest.Let("c", asttest.Call(asttest.Id("f"), asttest.Int(2))),
	)
	mod, err := run(root, Config{Memo: memo})
	if err != nil {
		t.Fatal(err)
	}
	if got := exported(t, mod, "b"); got != "2" {
		t.Errorf("b = %s, want 2", got)
	}
	if memo.Len() != 2 {
		t.Errorf("cached = %d, want 2", memo.Len())
	}
	if memo.Hits() != 1 {
		t.Errorf("hits = %d, want 1", memo.Hits())
	}
}

func TestSetRule(t *testing.T) {
	mod := mustRun(t, asttest.Markup(
		asttest.Set(asttest.Id("strong"), asttest.Named("delta", asttest.Int(500))),
		asttest.Strong(asttest.Text("x")),
	))
	c := mod.Content
	if c.Elem() != value.StyledElem {
		t.Fatalf("content is %s, want styled", c.Elem().Name)
	}
	v, ok := c.Styles().Get(value.StrongElem, "delta")
	if !ok || value.Repr(v) != "500" {
		t.Errorf("delta = %v, %v, want 500", v, ok)
	}

	expectError(t, asttest.Markup(
		asttest.Set(asttest.Id("repr")),
	), Config{}, "only element functions can be used in set rules")
}

func TestShowRule(t *testing.T) {
	mod := mustRun(t, asttest.Markup(
		asttest.Show(nil, asttest.Closure(asttest.Params("it"), asttest.Content(asttest.Emph(asttest.Id("it"))))),
		asttest.Text("hi"),
	))
	if mod.Content.Elem() != value.EmphElem {
		t.Errorf("content is %s, want emph", mod.Content.Elem().Name)
	}
	if got := mod.Content.PlainText(); got != "hi" {
		t.Errorf("text = %q, want hi", got)
	}

	mod = mustRun(t, asttest.Markup(
		asttest.Show(asttest.Id("heading"), asttest.Str("H")),
		asttest.Heading(1, asttest.Text("x")),
	))
	if n := len(mod.Content.Styles().Recipes()); n != 1 {
		t.Errorf("recipes = %d, want 1", n)
	}

	expectError(t, asttest.Markup(
		asttest.Show(asttest.Id("repr"), asttest.Str("H")),
	), Config{}, "only element functions can be used as selectors")
}

func TestMarkupElements(t *testing.T) {
	mod := mustRun(t, asttest.Markup(
		asttest.Heading(2, asttest.Text("Title")),
		asttest.Strong(asttest.Text("bold")),
	))
	children := mod.Content.Children()
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	level, err := children[0].Field("level")
	if err != nil || value.Repr(level) != "2" {
		t.Errorf("level = %v, %v, want 2", level, err)
	}
	if children[1].Elem() != value.StrongElem {
		t.Errorf("second child is %s, want strong", children[1].Elem().Name)
	}
}

type fakeWorld struct {
	modules map[string]*value.Module
	from    []string
}

func (w *fakeWorld) Import(from, path string, _ ast.Span) (*value.Module, error) {
	w.from = append(w.from, from)
	mod, ok := w.modules[path]
	if !ok {
		return nil, &missingModule{path}
	}
	return mod, nil
}

type missingModule struct{ path string }

func (e *missingModule) Error() string { return "file not found: " + e.path }

func TestImports(t *testing.T) {
	scope := value.NewScope()
	scope.Define("x", value.Int(41))
	world := &fakeWorld{modules: map[string]*value.Module{
		"util.typ": {Name: "util.typ", Scope: scope, Content: value.NewText("body")},
	}}
	cfg := Config{World: world}

	mod, err := run(asttest.Code(
		asttest.Import(asttest.Str("util.typ"), "x"),
		asttest.Let("y", asttest.Add(asttest.Id("x"), asttest.Int(1))),
		asttest.Import(asttest.Str("util.typ")),
		asttest.Let("z", asttest.Field(asttest.Id("util"), "x")),
		asttest.ImportAs(asttest.Str("util.typ"), "u"),
		asttest.Let("body", asttest.Include(asttest.Str("util.typ"))),
	), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := exported(t, mod, "y"); got != "42" {
		t.Errorf("y = %s, want 42", got)
	}
	if got := exported(t, mod, "z"); got != "41" {
		t.Errorf("z = %s, want 41", got)
	}
	if got := exported(t, mod, "body"); got != "[body]" {
		t.Errorf("body = %s, want [body]", got)
	}
	for _, from := range world.from {
		if from != "main.typ" {
			t.Errorf("import from %q, want main.typ", from)
		}
	}

	expectError(t, asttest.Code(asttest.Import(asttest.Str("missing.typ"))), cfg, "file not found: missing.typ")
	expectError(t, asttest.Code(asttest.Import(asttest.Str("util.typ"), "nope")), cfg, "does not contain `nope`")
	expectError(t, asttest.Code(asttest.Import(asttest.Str("util.typ"))), Config{}, "no world is configured")
}

func TestMutatingMethodNamesOnOtherValues(t *testing.T) {
	scope := value.NewScope()
	scope.Define("push", value.Native("push", func(_ value.Engine, args *value.Args) (value.Value, error) {
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		return value.Str("pushed " + value.Repr(v)), args.Finish()
	}))
	cfg := Config{World: &fakeWorld{modules: map[string]*value.Module{
		"stack.typ": {Name: "stack.typ", Scope: scope},
	}}}

	mod, err := run(asttest.Code(
		asttest.Import(asttest.Str("stack.typ")),
		asttest.Let("r", asttest.Method(asttest.Id("stack"), "push", asttest.Int(1))),
	), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := exported(t, mod, "r"); got != `"pushed 1"` {
		t.Errorf("r = %s, want \"pushed 1\"", got)
	}

	expectError(t, asttest.Code(
		asttest.Let("s", asttest.Str("a")),
		asttest.Method(asttest.Id("s"), "push", asttest.Str("b")),
	), Config{}, "type string has no method `push`")
}

func TestNativeCallbacks(t *testing.T) {
	mod := mustRun(t, asttest.Code(
		asttest.Let("xs", asttest.Method(
			asttest.Array(asttest.Int(1), asttest.Int(2), asttest.Int(3)),
			"map",
			asttest.Closure(asttest.Params("x"), asttest.Bin(ast.BinMul, asttest.Id("x"), asttest.Int(2))),
		)),
	))
	if got := exported(t, mod, "xs"); got != "(2, 4, 6)" {
		t.Errorf("xs = %s, want (2, 4, 6)", got)
	}
}
