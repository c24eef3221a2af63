package value

import "math"

// Key returns a structural identity for v built from plain slices, strings
// and integers, suitable for deterministic encoding and hashing. Equal
// values of the same kind have equal keys. Spans never contribute.
func Key(v Value) any {
	if v == nil {
		v = None
	}
	t := uint8(v.Type())
	switch x := v.(type) {
	case NoneValue, AutoValue:
		return []any{t}
	case Bool:
		return []any{t, bool(x)}
	case Int:
		return []any{t, int64(x)}
	case Float:
		return []any{t, math.Float64bits(float64(x))}
	case Length:
		return []any{t, math.Float64bits(x.Abs), math.Float64bits(x.Em)}
	case Ratio:
		return []any{t, math.Float64bits(float64(x))}
	case Str:
		return []any{t, string(x)}
	case Label:
		return []any{t, string(x)}
	case Color:
		return []any{t, x.R, x.G, x.B, x.A}
	case Array:
		out := make([]any, 0, x.Len()+1)
		out = append(out, t)
		for _, item := range x.Items() {
			out = append(out, Key(item))
		}
		return out
	case Dict:
		out := make([]any, 0, 2*x.Len()+1)
		out = append(out, t)
		for k, item := range x.All() {
			out = append(out, k, Key(item))
		}
		return out
	case Content:
		return contentKey(x)
	case Func:
		if h, ok := x.c.(Hasher); ok {
			return []any{t, h.HashKey()}
		}
		return []any{t, x.Name()}
	case *Args:
		out := make([]any, 0, 2*len(x.Items)+1)
		out = append(out, t)
		for _, arg := range x.Items {
			out = append(out, arg.Name, Key(arg.Value))
		}
		return out
	case *Module:
		return []any{t, x.Name}
	case Styles:
		return []any{t, stylesKey(x)}
	case *Recipe:
		return recipeKey(x)
	}
	return []any{t}
}

func contentKey(c Content) any {
	if c.n == nil {
		return []any{uint8(TypeContent)}
	}
	children := make([]any, len(c.n.children))
	for i, child := range c.n.children {
		children[i] = contentKey(child)
	}
	return []any{
		uint8(TypeContent),
		c.n.elem.Name,
		Key(c.n.fields),
		children,
		stylesKey(c.n.styles),
		string(c.n.label),
	}
}

func stylesKey(s Styles) []any {
	out := make([]any, len(s.list))
	for i, st := range s.list {
		if st.Recipe != nil {
			out[i] = recipeKey(st.Recipe)
			continue
		}
		out[i] = []any{st.Elem.Name, st.Field, Key(st.Value)}
	}
	return out
}

func recipeKey(r *Recipe) any {
	var sel any
	if r.Selector != nil {
		sel = Key(r.Selector)
	}
	return []any{uint8(TypeRecipe), sel, Key(r.Transform)}
}
