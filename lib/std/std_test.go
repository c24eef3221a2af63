package std

import (
	"strings"
	"testing"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/value"
)

func call(t *testing.T, name string, args *value.Args) (value.Value, error) {
	t.Helper()
	v, ok := Library().Get(name)
	if !ok {
		t.Fatalf("library has no %s", name)
	}
	fn, ok := v.(value.Func)
	if !ok {
		t.Fatalf("%s is a %s", name, v.Type())
	}
	native, ok := fn.Callable().(*value.NativeFunc)
	if !ok {
		t.Fatalf("%s is not native", name)
	}
	return native.Fn(nil, args)
}

func pos(values ...value.Value) *value.Args {
	return value.NewArgs(ast.Detached, values...)
}

func TestLibraryBindings(t *testing.T) {
	lib := Library()
	for _, name := range []string{"text", "strong", "emph", "heading", "par", "repr", "range", "rgb", "black", "blue"} {
		if _, ok := lib.Get(name); !ok {
			t.Errorf("library has no %s", name)
		}
	}
	v, _ := lib.Get("heading")
	if elem, ok := v.(value.Func).Element(); !ok || elem != value.HeadingElem {
		t.Errorf("heading is not the heading element")
	}
}

func TestNatives(t *testing.T) {
	named := func(args *value.Args, name string, v value.Value) *value.Args {
		args.Insert(ast.Detached, name, v)
		return args
	}
	tests := []struct {
		name string
		args *value.Args
		want string
	}{
		{"repr", pos(value.Str("a")), `"\"a\""`},
		{"type", pos(value.Int(1)), `"integer"`},
		{"type", pos(value.NewArray()), `"array"`},
		{"str", pos(value.Int(12)), `"12"`},
		{"str", pos(value.Float(1.5)), `"1.5"`},
		{"range", pos(value.Int(3)), "(0, 1, 2)"},
		{"range", pos(value.Int(2), value.Int(5)), "(2, 3, 4)"},
		{"range", named(pos(value.Int(5), value.Int(0)), "step", value.Int(-2)), "(5, 3, 1)"},
		{"range", pos(value.Int(0)), "()"},
		{"assert", pos(value.Bool(true)), "none"},
		{"rgb", pos(value.Int(255), value.Int(0), value.Int(0)), `rgb("#ff0000")`},
		{"rgb", pos(value.Str("#fff8")), `rgb("#ffffff88")`},
		{"rgb", pos(value.Ratio(1), value.Int(0), value.Int(0), value.Ratio(0.5)), `rgb("#ff000080")`},
		{"luma", pos(value.Int(0)), `rgb("#000000")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := call(t, tt.name, tt.args)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got := value.Repr(v); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNativeErrors(t *testing.T) {
	withMessage := pos(value.Bool(false))
	withMessage.Insert(ast.Detached, "message", value.Str("bad input"))
	zeroStep := pos(value.Int(3))
	zeroStep.Insert(ast.Detached, "step", value.Int(0))

	tests := []struct {
		name string
		args *value.Args
		want string
	}{
		{"repr", pos(), "missing argument: value"},
		{"repr", pos(value.Int(1), value.Int(2)), "unexpected argument"},
		{"str", pos(value.NewArray()), "expected integer, float, string or label, found array"},
		{"range", zeroStep, "step must not be zero"},
		{"assert", pos(value.Bool(false)), "assertion failed"},
		{"assert", withMessage, "assertion failed: bad input"},
		{"assert", pos(value.Int(1)), "expected boolean"},
		{"panic", pos(value.Str("x"), value.Int(1)), `panicked with: "x", 1`},
		{"panic", pos(), "panicked"},
		{"rgb", pos(value.Int(1), value.Int(2)), "expected 3 or 4 color components, found 2"},
		{"rgb", pos(value.Int(256), value.Int(0), value.Int(0)), "number must be between 0 and 255"},
		{"rgb", pos(value.Str("#zzzzzz")), "non-hexadecimal"},
		{"luma", pos(value.Str("x")), "expected integer or ratio, found string"},
		{"luma", pos(value.Ratio(2)), "ratio must be between 0% and 100%"},
		{"rgb", pos(value.Ratio(-0.5), value.Int(0), value.Int(0)), "ratio must be between 0% and 100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, tt.name, tt.args)
			if err == nil {
				t.Fatalf("expected error %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestLibraryIsFresh(t *testing.T) {
	a := Library()
	a.Define("repr", value.Int(1))
	b := Library()
	if v, _ := b.Get("repr"); v.Type() != value.TypeFunc {
		t.Errorf("repr = %s in a fresh library, want function", v.Type())
	}
}
