package value

import (
	"strings"
	"testing"

	"github.com/chazu/folio/pkg/ast"
)

func args(values ...Value) *Args {
	return NewArgs(ast.Detached, values...)
}

func TestCallMutatingArray(t *testing.T) {
	var slot Value = NewArray(Int(1))
	other := Clone(slot)

	if _, err := CallMutating(&slot, "push", args(Int(2))); err != nil {
		t.Fatal(err)
	}
	if _, err := CallMutating(&slot, "insert", args(Int(0), Int(0))); err != nil {
		t.Fatal(err)
	}
	if got := Repr(slot); got != "(0, 1, 2)" {
		t.Errorf("slot = %s, want (0, 1, 2)", got)
	}
	if got := Repr(other); got != "(1,)" {
		t.Errorf("shared copy = %s, want (1,)", got)
	}

	v, err := CallMutating(&slot, "pop", args())
	if err != nil || !Equal(v, Int(2)) {
		t.Errorf("pop = %v, %v; want 2", v, err)
	}

	a := args(Int(10))
	a.Insert(ast.Detached, "default", Str("none"))
	v, err = CallMutating(&slot, "remove", a)
	if err != nil || !Equal(v, Str("none")) {
		t.Errorf("remove with default = %v, %v", v, err)
	}
}

func TestCallMutatingDict(t *testing.T) {
	var slot Value = NewDict(0)
	if _, err := CallMutating(&slot, "insert", args(Str("k"), Int(1))); err != nil {
		t.Fatal(err)
	}
	if got := Repr(slot); got != "(k: 1)" {
		t.Errorf("slot = %s, want (k: 1)", got)
	}
	v, err := CallMutating(&slot, "remove", args(Str("k")))
	if err != nil || !Equal(v, Int(1)) {
		t.Errorf("remove = %v, %v", v, err)
	}
	if _, err := CallMutating(&slot, "remove", args(Str("k"))); err == nil {
		t.Error("removing a missing key succeeded")
	}
	if _, err := CallMutating(&slot, "push", args(Int(1))); err == nil {
		t.Error("push on a dictionary succeeded")
	}
}

func TestAccessor(t *testing.T) {
	var slot Value = NewArray(Int(1), Int(2), Int(3))
	snapshot := Clone(slot)

	p, err := Accessor(&slot, "at", args(Int(-1)))
	if err != nil {
		t.Fatal(err)
	}
	*p = Int(9)
	p, err = Accessor(&slot, "first", args())
	if err != nil {
		t.Fatal(err)
	}
	*p = Int(0)

	if got := Repr(slot); got != "(0, 2, 9)" {
		t.Errorf("slot = %s, want (0, 2, 9)", got)
	}
	if got := Repr(snapshot); got != "(1, 2, 3)" {
		t.Errorf("snapshot = %s, want (1, 2, 3)", got)
	}

	var d Value = NewDict(0)
	if _, err := Accessor(&d, "first", args()); err == nil {
		t.Error("first on a dictionary succeeded")
	}
	if _, err := Accessor(&slot, "len", args()); err == nil {
		t.Error("len is not an accessor")
	}
}

func TestCallMethod(t *testing.T) {
	d := NewDict(0)
	d.Insert("a", Int(1))
	d.Insert("b", Int(2))

	tests := []struct {
		name   string
		recv   Value
		method string
		args   *Args
		want   string
	}{
		{"array len", NewArray(Int(1), Int(2)), "len", args(), "2"},
		{"array rev", NewArray(Int(1), Int(2)), "rev", args(), "(2, 1)"},
		{"array sum", NewArray(Int(1), Int(2), Int(3)), "sum", args(), "6"},
		{"array contains", NewArray(Str("x")), "contains", args(Str("x")), "true"},
		{"array join", NewArray(Str("a"), Str("b")), "join", args(Str(", ")), `"a, b"`},
		{"array slice", NewArray(Int(1), Int(2), Int(3)), "slice", args(Int(1)), "(2, 3)"},
		{"dict keys", d, "keys", args(), `("a", "b")`},
		{"dict pairs", d, "pairs", args(), `(("a", 1), ("b", 2))`},
		{"str upper", Str("abc"), "upper", args(), `"ABC"`},
		{"str split", Str("a,b"), "split", args(Str(",")), `("a", "b")`},
		{"str at", Str("héllo"), "at", args(Int(1)), `"é"`},
		{"color hex", Color{G: 255, A: 255}, "to-hex", args(), `"#00ff00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CallMethod(nil, tt.recv, tt.method, tt.args)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if Repr(got) != tt.want {
				t.Errorf("got %s, want %s", Repr(got), tt.want)
			}
		})
	}
}

func TestCallMethodErrors(t *testing.T) {
	tests := []struct {
		name   string
		recv   Value
		method string
		args   *Args
		want   string
	}{
		{"unknown", Int(1), "frobnicate", args(), "type integer has no method `frobnicate`"},
		{"mutating temporary", NewArray(), "push", args(Int(1)), "cannot mutate a temporary value"},
		{"extra argument", NewArray(), "len", args(Int(1)), "unexpected argument"},
		{"empty sum", NewArray(), "sum", args(), "cannot calculate sum of empty array"},
		{"missing key", NewDict(0), "at", args(Str("x")), `does not contain key "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CallMethod(nil, tt.recv, tt.method, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
