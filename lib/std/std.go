// Package std provides the base library: element functions, a handful of
// native functions and named colors.
package std

import (
	"strconv"
	"strings"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// Library returns a fresh base scope. The scope is read-only to evaluated
// code.
func Library() *value.Scope {
	s := value.NewScope()

	for _, elem := range []*value.Element{
		value.TextElem,
		value.StrongElem,
		value.EmphElem,
		value.HeadingElem,
		value.ParElem,
	} {
		s.Define(elem.Name, value.NewFunc(elem))
	}

	s.Define("repr", value.Native("repr", repr))
	s.Define("type", value.Native("type", typeOf))
	s.Define("str", value.Native("str", toStr))
	s.Define("range", value.Native("range", rangeOf))
	s.Define("assert", value.Native("assert", assert))
	s.Define("panic", value.Native("panic", panicWith))
	s.Define("rgb", value.Native("rgb", rgb))
	s.Define("luma", value.Native("luma", luma))

	s.Define("black", value.Color{A: 255})
	s.Define("white", value.Color{R: 255, G: 255, B: 255, A: 255})
	s.Define("red", value.Color{R: 0xff, G: 0x41, B: 0x36, A: 255})
	s.Define("green", value.Color{R: 0x2e, G: 0xcc, B: 0x40, A: 255})
	s.Define("blue", value.Color{R: 0x00, G: 0x74, B: 0xd9, A: 255})
	return s
}

func one(args *value.Args, what string) (value.Value, error) {
	v, err := args.Expect(what)
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func repr(_ value.Engine, args *value.Args) (value.Value, error) {
	v, err := one(args, "value")
	if err != nil {
		return nil, err
	}
	return value.Str(value.Repr(v)), nil
}

func typeOf(_ value.Engine, args *value.Args) (value.Value, error) {
	v, err := one(args, "value")
	if err != nil {
		return nil, err
	}
	return value.Str(v.Type().String()), nil
}

func toStr(_ value.Engine, args *value.Args) (value.Value, error) {
	v, err := one(args, "value")
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case value.Str, value.Int, value.Float, value.Label:
		return value.Str(value.Format(v)), nil
	}
	return nil, diag.Errorf(args.Span, "expected integer, float, string or label, found %s", v.Type())
}

// rangeOf is range(end) or range(start, end, step: 1).
func rangeOf(_ value.Engine, args *value.Args) (value.Value, error) {
	first, err := args.ExpectInt("end")
	if err != nil {
		return nil, err
	}
	start, end := int64(0), first
	if v, ok := args.Eat(); ok {
		if end, err = value.CastInt(v); err != nil {
			return nil, err
		}
		start = first
	}
	step := int64(1)
	if v, ok := args.Named("step"); ok {
		if step, err = value.CastInt(v); err != nil {
			return nil, err
		}
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, diag.Errorf(args.Span, "step must not be zero")
	}

	var items []value.Value
	for x := start; (step > 0 && x < end) || (step < 0 && x > end); x += step {
		items = append(items, value.Int(x))
	}
	return value.NewArray(items...), nil
}

func assert(_ value.Engine, args *value.Args) (value.Value, error) {
	v, err := args.Expect("condition")
	if err != nil {
		return nil, err
	}
	cond, err := value.CastBool(v)
	if err != nil {
		return nil, err
	}
	msg, hasMsg := args.Named("message")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	if cond {
		return value.None, nil
	}
	if hasMsg {
		s, err := value.CastStr(msg)
		if err != nil {
			return nil, err
		}
		return nil, diag.Errorf(ast.Detached, "assertion failed: %s", s)
	}
	return nil, diag.Errorf(ast.Detached, "assertion failed")
}

func panicWith(_ value.Engine, args *value.Args) (value.Value, error) {
	vals := args.Remaining()
	if err := args.Finish(); err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, diag.Errorf(ast.Detached, "panicked")
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = value.Repr(v)
	}
	return nil, diag.Errorf(ast.Detached, "panicked with: %s", strings.Join(parts, ", "))
}

// rgb accepts three or four components in 0..255 or a hex string.
func rgb(_ value.Engine, args *value.Args) (value.Value, error) {
	first, err := args.Expect("red component")
	if err != nil {
		return nil, err
	}
	if s, ok := first.(value.Str); ok {
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return parseHex(string(s))
	}

	comps := append([]value.Value{first}, args.Remaining()...)
	if err := args.Finish(); err != nil {
		return nil, err
	}
	if len(comps) < 3 || len(comps) > 4 {
		return nil, diag.Errorf(args.Span, "expected 3 or 4 color components, found %d", len(comps))
	}
	out := [4]uint8{0, 0, 0, 255}
	for i, c := range comps {
		if out[i], err = component(c); err != nil {
			return nil, err
		}
	}
	return value.Color{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

func luma(_ value.Engine, args *value.Args) (value.Value, error) {
	v, err := one(args, "lightness")
	if err != nil {
		return nil, err
	}
	l, err := component(v)
	if err != nil {
		return nil, err
	}
	return value.Color{R: l, G: l, B: l, A: 255}, nil
}

func component(v value.Value) (uint8, error) {
	switch x := v.(type) {
	case value.Int:
		if x < 0 || x > 255 {
			return 0, diag.Errorf(ast.Detached, "number must be between 0 and 255")
		}
		return uint8(x), nil
	case value.Ratio:
		if x < 0 || x > 1 {
			return 0, diag.Errorf(ast.Detached, "ratio must be between 0%% and 100%%")
		}
		return uint8(float64(x)*255 + 0.5), nil
	}
	return 0, diag.Errorf(ast.Detached, "expected integer or ratio, found %s", v.Type())
}

func parseHex(s string) (value.Value, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 || len(h) == 4 {
		var sb strings.Builder
		for _, r := range h {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		h = sb.String()
	}
	if len(h) == 6 {
		h += "ff"
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if len(h) != 8 || err != nil {
		return nil, diag.Errorf(ast.Detached, "color string contains non-hexadecimal letters")
	}
	return value.Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}
