package value

import (
	"math"
	"strings"
)

// ---------------------------------------------------------------------------
// Unary operators
// ---------------------------------------------------------------------------

// Pos applies unary plus.
func Pos(v Value) (Value, error) {
	switch v.(type) {
	case Int, Float, Length, Ratio:
		return v, nil
	}
	return nil, errorf("cannot apply unary '+' to %s", v.Type())
}

// Neg applies unary minus.
func Neg(v Value) (Value, error) {
	switch x := v.(type) {
	case Int:
		if x == math.MinInt64 {
			return nil, errorf("value is too large")
		}
		return -x, nil
	case Float:
		return -x, nil
	case Length:
		return Length{Abs: -x.Abs, Em: -x.Em}, nil
	case Ratio:
		return -x, nil
	}
	return nil, errorf("cannot apply unary '-' to %s", v.Type())
}

// Not applies logical negation.
func Not(v Value) (Value, error) {
	if b, ok := v.(Bool); ok {
		return !b, nil
	}
	return nil, errorf("cannot apply 'not' to %s", v.Type())
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

func addInt(a, b Int) (Value, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return nil, errorf("value is too large")
	}
	return a + b, nil
}

func mulInt(a, b Int) (Value, error) {
	if a == 0 || b == 0 {
		return Int(0), nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, errorf("value is too large")
	}
	return r, nil
}

// Add adds or concatenates two values. None is the identity on both sides.
// Unshared containers on the left are extended in place.
func Add(lhs, rhs Value) (Value, error) {
	switch a := lhs.(type) {
	case NoneValue:
		return rhs, nil
	case Int:
		switch b := rhs.(type) {
		case Int:
			return addInt(a, b)
		case Float:
			return Float(a) + b, nil
		}
	case Float:
		switch b := rhs.(type) {
		case Int:
			return a + Float(b), nil
		case Float:
			return a + b, nil
		}
	case Length:
		if b, ok := rhs.(Length); ok {
			return Length{Abs: a.Abs + b.Abs, Em: a.Em + b.Em}, nil
		}
	case Ratio:
		if b, ok := rhs.(Ratio); ok {
			return a + b, nil
		}
	case Str:
		switch b := rhs.(type) {
		case Str:
			return a + b, nil
		case Content:
			return Sequence(NewText(string(a)), b), nil
		}
	case Array:
		if b, ok := rhs.(Array); ok {
			return a.Concat(b), nil
		}
	case Dict:
		if b, ok := rhs.(Dict); ok {
			return a.Concat(b), nil
		}
	case Content:
		switch b := rhs.(type) {
		case Content:
			return Sequence(a, b), nil
		case Str:
			return Sequence(a, NewText(string(b))), nil
		}
	case Styles:
		if b, ok := rhs.(Styles); ok {
			return a.Chain(b), nil
		}
	}
	if IsNone(rhs) {
		return lhs, nil
	}
	return nil, errorf("cannot add %s and %s", lhs.Type(), rhs.Type())
}

// Sub subtracts two values.
func Sub(lhs, rhs Value) (Value, error) {
	switch a := lhs.(type) {
	case Int:
		switch b := rhs.(type) {
		case Int:
			if b == math.MinInt64 {
				return nil, errorf("value is too large")
			}
			return addInt(a, -b)
		case Float:
			return Float(a) - b, nil
		}
	case Float:
		switch b := rhs.(type) {
		case Int:
			return a - Float(b), nil
		case Float:
			return a - b, nil
		}
	case Length:
		if b, ok := rhs.(Length); ok {
			return Length{Abs: a.Abs - b.Abs, Em: a.Em - b.Em}, nil
		}
	case Ratio:
		if b, ok := rhs.(Ratio); ok {
			return a - b, nil
		}
	}
	return nil, errorf("cannot subtract %s from %s", rhs.Type(), lhs.Type())
}

// Mul multiplies two values. Strings, arrays and content repeat when
// multiplied by an integer.
func Mul(lhs, rhs Value) (Value, error) {
	switch a := lhs.(type) {
	case Int:
		switch b := rhs.(type) {
		case Int:
			return mulInt(a, b)
		case Float:
			return Float(a) * b, nil
		case Length:
			return scaleLength(b, float64(a)), nil
		case Ratio:
			return Ratio(a) * b, nil
		case Str, Array, Content:
			return Mul(rhs, lhs)
		}
	case Float:
		switch b := rhs.(type) {
		case Int:
			return a * Float(b), nil
		case Float:
			return a * b, nil
		case Length:
			return scaleLength(b, float64(a)), nil
		case Ratio:
			return Ratio(a) * b, nil
		}
	case Length:
		if f, err := CastFloat(rhs); err == nil {
			return scaleLength(a, f), nil
		}
	case Ratio:
		switch b := rhs.(type) {
		case Int:
			return a * Ratio(b), nil
		case Float:
			return a * Ratio(b), nil
		case Ratio:
			return a * b, nil
		}
	case Str:
		if n, ok := rhs.(Int); ok {
			if n < 0 {
				return nil, errorf("number must be at least zero")
			}
			return Str(strings.Repeat(string(a), int(n))), nil
		}
	case Array:
		if n, ok := rhs.(Int); ok {
			return a.Repeat(int64(n))
		}
	case Content:
		if n, ok := rhs.(Int); ok {
			return a.Repeat(int64(n))
		}
	}
	return nil, errorf("cannot multiply %s with %s", lhs.Type(), rhs.Type())
}

func scaleLength(l Length, f float64) Length {
	return Length{Abs: l.Abs * f, Em: l.Em * f}
}

// Div divides two values. Integer division yields a float.
func Div(lhs, rhs Value) (Value, error) {
	if isZero(rhs) {
		return nil, errorf("cannot divide by zero")
	}
	switch a := lhs.(type) {
	case Int, Float:
		x, _ := CastFloat(a)
		if y, err := CastFloat(rhs); err == nil {
			return Float(x / y), nil
		}
	case Length:
		switch b := rhs.(type) {
		case Int, Float:
			y, _ := CastFloat(b)
			return scaleLength(a, 1/y), nil
		case Length:
			if a.Em == 0 && b.Em == 0 {
				return Float(a.Abs / b.Abs), nil
			}
			if a.Abs == 0 && b.Abs == 0 {
				return Float(a.Em / b.Em), nil
			}
		}
	case Ratio:
		switch b := rhs.(type) {
		case Int, Float:
			y, _ := CastFloat(b)
			return a / Ratio(y), nil
		case Ratio:
			return Float(a / b), nil
		}
	}
	return nil, errorf("cannot divide %s by %s", lhs.Type(), rhs.Type())
}

func isZero(v Value) bool {
	switch x := v.(type) {
	case Int:
		return x == 0
	case Float:
		return x == 0
	case Ratio:
		return x == 0
	case Length:
		return x.Abs == 0 && x.Em == 0
	}
	return false
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Equal reports structural equality. Integers and floats compare
// numerically.
func Equal(lhs, rhs Value) bool {
	if lhs == nil {
		lhs = None
	}
	if rhs == nil {
		rhs = None
	}
	switch a := lhs.(type) {
	case NoneValue, AutoValue, Bool, Str, Label, Color, Length, Ratio:
		return lhs == rhs
	case Int:
		switch b := rhs.(type) {
		case Int:
			return a == b
		case Float:
			return Float(a) == b
		}
	case Float:
		switch b := rhs.(type) {
		case Int:
			return a == Float(b)
		case Float:
			return a == b
		}
	case Array:
		b, ok := rhs.(Array)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for i, item := range a.Items() {
			if !Equal(item, b.Items()[i]) {
				return false
			}
		}
		return true
	case Dict:
		b, ok := rhs.(Dict)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for k, v := range a.All() {
			j, ok := b.lookup(k)
			if !ok || !Equal(v, b.rep.vals[j]) {
				return false
			}
		}
		return true
	case Content:
		b, ok := rhs.(Content)
		return ok && contentEqual(a, b)
	case Func:
		b, ok := rhs.(Func)
		return ok && a.c == b.c
	case Styles:
		b, ok := rhs.(Styles)
		return ok && stylesEqual(a, b)
	case *Args:
		b, ok := rhs.(*Args)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if a.Items[i].Name != b.Items[i].Name || !Equal(a.Items[i].Value, b.Items[i].Value) {
				return false
			}
		}
		return true
	case *Module:
		b, ok := rhs.(*Module)
		return ok && a == b
	case *Recipe:
		b, ok := rhs.(*Recipe)
		return ok && a == b
	}
	return false
}

// Compare orders two values: -1, 0 or 1.
func Compare(lhs, rhs Value) (int, error) {
	switch a := lhs.(type) {
	case Int, Float:
		if _, ok := a.(Int); ok {
			if b, ok := rhs.(Int); ok {
				return cmpOrdered(a.(Int), b), nil
			}
		}
		x, _ := CastFloat(a)
		if y, err := CastFloat(rhs); err == nil {
			return cmpOrdered(x, y), nil
		}
	case Str:
		if b, ok := rhs.(Str); ok {
			return strings.Compare(string(a), string(b)), nil
		}
	case Bool:
		if b, ok := rhs.(Bool); ok {
			return cmpOrdered(boolInt(a), boolInt(b)), nil
		}
	case Length:
		if b, ok := rhs.(Length); ok && a.Em == 0 && b.Em == 0 {
			return cmpOrdered(a.Abs, b.Abs), nil
		}
	case Ratio:
		if b, ok := rhs.(Ratio); ok {
			return cmpOrdered(a, b), nil
		}
	}
	return 0, errorf("cannot compare %s with %s", lhs.Type(), rhs.Type())
}

func boolInt(b Bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[T ~int | ~int64 | ~float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// In reports whether lhs is contained in rhs.
func In(lhs, rhs Value) (Value, error) {
	switch b := rhs.(type) {
	case Str:
		if a, ok := lhs.(Str); ok {
			return Bool(strings.Contains(string(b), string(a))), nil
		}
	case Array:
		return Bool(b.Contains(lhs)), nil
	case Dict:
		if a, ok := lhs.(Str); ok {
			return Bool(b.Has(string(a))), nil
		}
	}
	return nil, errorf("cannot apply 'in' to %s and %s", lhs.Type(), rhs.Type())
}

// ---------------------------------------------------------------------------
// Join
// ---------------------------------------------------------------------------

// Join combines two sequential results of a code block. None is skipped;
// content absorbs strings; everything else combines like addition.
func Join(lhs, rhs Value) (Value, error) {
	switch {
	case IsNone(rhs):
		return lhs, nil
	case IsNone(lhs):
		return rhs, nil
	}
	switch a := lhs.(type) {
	case Content:
		switch b := rhs.(type) {
		case Content, Str, Int, Float:
			return Sequence(a, ToContent(b)), nil
		}
	case Str, Int, Float:
		if b, ok := rhs.(Content); ok {
			return Sequence(ToContent(a), b), nil
		}
	}
	out, err := Add(lhs, rhs)
	if err != nil {
		return nil, errorf("cannot join %s with %s", lhs.Type(), rhs.Type())
	}
	return out, nil
}
