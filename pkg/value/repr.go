package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Repr returns the source-like representation of a value.
func Repr(v Value) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

// Format returns the display form of a value as used by str() and string
// interpolation: strings are not quoted and floats drop a trailing ".0".
func Format(v Value) string {
	switch x := v.(type) {
	case Str:
		return string(x)
	case Label:
		return string(x)
	case Float:
		return formatFloat(float64(x), false)
	case Content:
		return x.PlainText()
	}
	return Repr(v)
}

func formatFloat(f float64, repr bool) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if repr && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func writeRepr(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil, NoneValue:
		sb.WriteString("none")
	case AutoValue:
		sb.WriteString("auto")
	case Bool:
		sb.WriteString(strconv.FormatBool(bool(x)))
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		sb.WriteString(formatFloat(float64(x), true))
	case Length:
		writeLength(sb, x)
	case Ratio:
		sb.WriteString(formatFloat(float64(x)*100, false))
		sb.WriteByte('%')
	case Str:
		sb.WriteString(strconv.Quote(string(x)))
	case Label:
		sb.WriteString("<" + string(x) + ">")
	case Color:
		sb.WriteString(`rgb("` + x.Hex() + `")`)
	case Array:
		writeArray(sb, x)
	case Dict:
		writeDict(sb, x)
	case Content:
		writeContent(sb, x)
	case Func:
		if name := x.Name(); name != "" {
			sb.WriteString(name)
		} else {
			sb.WriteString("(..) => ..")
		}
	case *Args:
		sb.WriteString("arguments(")
		for i, arg := range x.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if arg.Name != "" {
				sb.WriteString(arg.Name + ": ")
			}
			writeRepr(sb, arg.Value)
		}
		sb.WriteByte(')')
	case *Module:
		sb.WriteString("<module " + x.Name + ">")
	case Styles:
		sb.WriteString("..")
	case *Recipe:
		sb.WriteString("show-rule")
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

func writeLength(sb *strings.Builder, l Length) {
	switch {
	case l.Em == 0:
		sb.WriteString(formatFloat(l.Abs, false) + "pt")
	case l.Abs == 0:
		sb.WriteString(formatFloat(l.Em, false) + "em")
	default:
		sb.WriteString(formatFloat(l.Abs, false) + "pt + " + formatFloat(l.Em, false) + "em")
	}
}

func writeArray(sb *strings.Builder, a Array) {
	sb.WriteByte('(')
	for i, item := range a.Items() {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, item)
	}
	if a.Len() == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
}

func writeDict(sb *strings.Builder, d Dict) {
	if d.Len() == 0 {
		sb.WriteString("(:)")
		return
	}
	sb.WriteByte('(')
	i := 0
	for k, v := range d.All() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if isIdent(k) {
			sb.WriteString(k)
		} else {
			sb.WriteString(strconv.Quote(k))
		}
		sb.WriteString(": ")
		writeRepr(sb, v)
		i++
	}
	sb.WriteByte(')')
}

func writeContent(sb *strings.Builder, c Content) {
	switch elem := c.Elem(); {
	case c.IsEmpty():
		sb.WriteString("[]")
	case elem == TextElem:
		sb.WriteString("[" + c.PlainText() + "]")
	case elem == SpaceElem:
		sb.WriteString("[ ]")
	case elem == SequenceElem:
		sb.WriteString("sequence(")
		for i, child := range c.Children() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeContent(sb, child)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(elem.Name + "(")
		i := 0
		for k, v := range c.Fields().All() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + ": ")
			writeRepr(sb, v)
			i++
		}
		sb.WriteByte(')')
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}

// Hex returns the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
