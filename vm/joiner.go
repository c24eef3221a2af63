package vm

import (
	"github.com/chazu/folio/pkg/value"
)

// segment collects output after a style list or recipe was joined. The
// base segment has neither.
type segment struct {
	styles value.Styles
	recipe *value.Recipe

	val   value.Value     // scripting mode
	items []value.Content // display mode
}

// joiner merges the sequential results of a scope.
//
// In display mode every result is turned into content and appended to a
// sequence. In scripting mode the first result is held as is and later
// ones are combined with value.Join. In both modes style lists and recipes
// open a segment that captures everything joined after them; finish closes
// segments innermost first.
type joiner struct {
	vm      *VM
	display bool
	segs    []segment
}

func newJoiner(vm *VM, display bool) *joiner {
	return &joiner{vm: vm, display: display, segs: make([]segment, 1, 2)}
}

func (j *joiner) top() *segment { return &j.segs[len(j.segs)-1] }

func (j *joiner) join(v value.Value) error {
	switch x := v.(type) {
	case nil, value.NoneValue:
		return nil
	case value.Styles:
		if x.Len() > 0 {
			j.segs = append(j.segs, segment{styles: x})
		}
		return nil
	case *value.Recipe:
		j.segs = append(j.segs, segment{recipe: x})
		return nil
	}
	return j.add(j.top(), v)
}

func (j *joiner) add(s *segment, v value.Value) error {
	if !j.display {
		out, err := value.Join(s.val, v)
		if err != nil {
			return err
		}
		s.val = out
		return nil
	}
	if l, ok := v.(value.Label); ok {
		for i := len(s.items) - 1; i >= 0; i-- {
			if s.items[i].Elem() != value.SpaceElem {
				s.items[i] = s.items[i].WithLabel(l)
				return nil
			}
		}
		return nil
	}
	if c := value.ToContent(v); !c.IsEmpty() {
		s.items = append(s.items, c)
	}
	return nil
}

func (j *joiner) value(s *segment) value.Value {
	if j.display {
		return value.Sequence(s.items...)
	}
	if s.val == nil {
		return value.None
	}
	return s.val
}

// finish closes open segments and returns the joined result. In display
// mode the result is always content.
func (j *joiner) finish() (value.Value, error) {
	for len(j.segs) > 1 {
		s := j.segs[len(j.segs)-1]
		j.segs = j.segs[:len(j.segs)-1]

		body := value.ToContent(j.value(&s))
		if body.IsEmpty() && s.recipe == nil {
			continue
		}
		var out value.Content
		switch {
		case s.recipe == nil:
			out = body.Styled(s.styles)
		case s.recipe.Selector == nil:
			var err error
			if out, err = s.recipe.Apply(j.vm, body); err != nil {
				return nil, err
			}
		default:
			out = body.Styled(value.NewStyles(value.Style{Recipe: s.recipe}))
		}
		if err := j.add(j.top(), out); err != nil {
			return nil, err
		}
	}
	return j.value(j.top()), nil
}
