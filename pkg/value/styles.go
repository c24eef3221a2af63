package value

import "github.com/chazu/folio/pkg/ast"

// Style is a single style property or a show recipe attached for the
// layout engine.
type Style struct {
	Elem   *Element
	Field  string
	Value  Value
	Recipe *Recipe
}

// Styles is an immutable list of styles. Later entries take precedence.
type Styles struct {
	list []Style
}

// NewStyles builds a style list.
func NewStyles(list ...Style) Styles {
	return Styles{list: list}
}

func (Styles) Type() Type { return TypeStyles }

// Len returns the number of entries.
func (s Styles) Len() int { return len(s.list) }

// Items returns the entries. The slice must not be modified.
func (s Styles) Items() []Style { return s.list }

// Chain returns the entries of s followed by those of next.
func (s Styles) Chain(next Styles) Styles {
	if s.Len() == 0 {
		return next
	}
	if next.Len() == 0 {
		return s
	}
	list := make([]Style, 0, len(s.list)+len(next.list))
	list = append(list, s.list...)
	list = append(list, next.list...)
	return Styles{list: list}
}

// Get returns the effective value of a property.
func (s Styles) Get(elem *Element, field string) (Value, bool) {
	for i := len(s.list) - 1; i >= 0; i-- {
		st := s.list[i]
		if st.Recipe == nil && st.Elem == elem && st.Field == field {
			return st.Value, true
		}
	}
	return nil, false
}

// Recipes returns the show recipes attached as styles.
func (s Styles) Recipes() []*Recipe {
	var out []*Recipe
	for _, st := range s.list {
		if st.Recipe != nil {
			out = append(out, st.Recipe)
		}
	}
	return out
}

func stylesEqual(a, b Styles) bool {
	if len(a.list) != len(b.list) {
		return false
	}
	for i := range a.list {
		x, y := a.list[i], b.list[i]
		if x.Recipe != nil || y.Recipe != nil {
			if x.Recipe != y.Recipe {
				return false
			}
			continue
		}
		if x.Elem != y.Elem || x.Field != y.Field || !Equal(x.Value, y.Value) {
			return false
		}
	}
	return true
}

// Recipe is a show rule. A nil Selector matches everything.
type Recipe struct {
	Span      ast.Span
	Selector  Value
	Transform Value
}

func (*Recipe) Type() Type { return TypeRecipe }

// CheckSelector validates the selector of a show rule: an element
// function, a string or a label.
func CheckSelector(v Value) error {
	switch x := v.(type) {
	case Str, Label:
		return nil
	case Func:
		if _, ok := x.Element(); ok {
			return nil
		}
		return errorf("only element functions can be used as selectors")
	}
	return mismatch("selector", v)
}

// CheckTransform validates the transform of a show rule.
func CheckTransform(v Value) error {
	switch v.(type) {
	case Func, Content, Str, Styles, NoneValue:
		return nil
	}
	return mismatch("content, function, or styles", v)
}

// Apply runs the transform on content.
func (r *Recipe) Apply(e Engine, c Content) (Content, error) {
	switch t := r.Transform.(type) {
	case Func:
		out, err := e.Call(t, NewArgs(r.Span, c))
		if err != nil {
			return Content{}, err
		}
		return ToContent(out), nil
	case Styles:
		return c.Styled(t), nil
	default:
		return ToContent(t), nil
	}
}
