// Package value implements the runtime values of the language.
//
// Values form a closed sum type: every concrete kind in this package
// implements Value and nothing outside the package is expected to. Container
// kinds (Array, Dict) share their backing storage between copies and count
// owners; Clone registers a new owner in O(1) and the mutating methods copy
// the storage first whenever it is shared. Content trees are immutable and
// shared freely.
package value

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/diag"
)

// Type identifies the kind of a value.
type Type uint8

const (
	TypeNone Type = iota
	TypeAuto
	TypeBool
	TypeInt
	TypeFloat
	TypeLength
	TypeRatio
	TypeStr
	TypeLabel
	TypeColor
	TypeArray
	TypeDict
	TypeContent
	TypeFunc
	TypeArgs
	TypeModule
	TypeStyles
	TypeRecipe
)

var typeNames = [...]string{
	TypeNone:    "none",
	TypeAuto:    "auto",
	TypeBool:    "boolean",
	TypeInt:     "integer",
	TypeFloat:   "float",
	TypeLength:  "length",
	TypeRatio:   "ratio",
	TypeStr:     "string",
	TypeLabel:   "label",
	TypeColor:   "color",
	TypeArray:   "array",
	TypeDict:    "dictionary",
	TypeContent: "content",
	TypeFunc:    "function",
	TypeArgs:    "arguments",
	TypeModule:  "module",
	TypeStyles:  "styles",
	TypeRecipe:  "show rule",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Value is a runtime value.
type Value interface {
	Type() Type
}

// NoneValue is the type of None.
type NoneValue struct{}

// AutoValue is the type of Auto.
type AutoValue struct{}

var (
	None Value = NoneValue{}
	Auto Value = AutoValue{}
)

// Bool is a boolean.
type Bool bool

// Int is a 64-bit signed integer.
type Int int64

// Float is a 64-bit float.
type Float float64

// Length is an absolute length in points plus a font-relative part in em.
type Length struct {
	Abs float64
	Em  float64
}

// Ratio is a relative amount; 0.5 is 50%.
type Ratio float64

// Str is an immutable string.
type Str string

// Label names a location in the document.
type Label string

// Color is an sRGB color with alpha.
type Color struct {
	R, G, B, A uint8
}

func (NoneValue) Type() Type { return TypeNone }
func (AutoValue) Type() Type { return TypeAuto }
func (Bool) Type() Type      { return TypeBool }
func (Int) Type() Type       { return TypeInt }
func (Float) Type() Type     { return TypeFloat }
func (Length) Type() Type    { return TypeLength }
func (Ratio) Type() Type     { return TypeRatio }
func (Str) Type() Type       { return TypeStr }
func (Label) Type() Type     { return TypeLabel }
func (Color) Type() Type     { return TypeColor }

// IsNone reports whether v is none. A nil interface counts as none.
func IsNone(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NoneValue)
	return ok
}

// Clone returns a copy of v that owns its data. For containers this only
// registers another owner of the shared storage.
func Clone(v Value) Value {
	switch x := v.(type) {
	case nil:
		return None
	case Array:
		return x.Clone()
	case Dict:
		return x.Clone()
	case *Args:
		return x.Clone()
	}
	return v
}

// Take moves the value out of slot, leaving none behind.
func Take(slot *Value) Value {
	v := *slot
	*slot = None
	if v == nil {
		return None
	}
	return v
}

// errorf builds a spanless diagnostic; the evaluator anchors it at the
// instruction that failed.
func errorf(format string, args ...any) *diag.Diagnostic {
	return diag.Errorf(ast.Detached, format, args...)
}

// mismatch is the standard "expected X, found Y" error.
func mismatch(expected string, found Value) *diag.Diagnostic {
	return errorf("expected %s, found %s", expected, found.Type())
}

// CastBool extracts a boolean.
func CastBool(v Value) (bool, error) {
	if b, ok := v.(Bool); ok {
		return bool(b), nil
	}
	return false, mismatch("boolean", v)
}

// CastInt extracts an integer.
func CastInt(v Value) (int64, error) {
	if i, ok := v.(Int); ok {
		return int64(i), nil
	}
	return 0, mismatch("integer", v)
}

// CastFloat extracts a number as float, accepting integers.
func CastFloat(v Value) (float64, error) {
	switch x := v.(type) {
	case Int:
		return float64(x), nil
	case Float:
		return float64(x), nil
	}
	return 0, mismatch("float", v)
}

// CastStr extracts a string.
func CastStr(v Value) (string, error) {
	if s, ok := v.(Str); ok {
		return string(s), nil
	}
	return "", mismatch("string", v)
}
