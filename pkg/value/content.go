package value

import "strings"

// Content is an immutable document tree node. The zero Content is the empty
// sequence. Copies share the node.
type Content struct {
	n *node
}

type node struct {
	elem     *Element
	fields   Dict
	children []Content
	styles   Styles
	label    Label
}

func (Content) Type() Type { return TypeContent }

// NewText returns a text node.
func NewText(text string) Content {
	fields := NewDict(1)
	fields.Insert("text", Str(text))
	return Content{&node{elem: TextElem, fields: fields}}
}

// NewSpace returns a space node.
func NewSpace() Content { return Content{&node{elem: SpaceElem}} }

// NewLinebreak returns a line break node.
func NewLinebreak() Content { return Content{&node{elem: LinebreakElem}} }

// NewParbreak returns a paragraph break node.
func NewParbreak() Content { return Content{&node{elem: ParbreakElem}} }

// NewElem returns a node of elem with the given fields.
func NewElem(elem *Element, fields Dict) Content {
	return Content{&node{elem: elem, fields: fields}}
}

// Sequence concatenates content. Nested sequences are flattened, empty
// items dropped and a single remaining item returned as is.
func Sequence(items ...Content) Content {
	var flat []Content
	for _, c := range items {
		switch {
		case c.IsEmpty():
		case c.n.elem == SequenceElem && c.n.label == "":
			flat = append(flat, c.n.children...)
		default:
			flat = append(flat, c)
		}
	}
	switch len(flat) {
	case 0:
		return Content{}
	case 1:
		return flat[0]
	}
	return Content{&node{elem: SequenceElem, children: flat}}
}

// Elem returns the element of the node.
func (c Content) Elem() *Element {
	if c.n == nil {
		return SequenceElem
	}
	return c.n.elem
}

// IsEmpty reports whether c is the empty sequence.
func (c Content) IsEmpty() bool {
	return c.n == nil || (c.n.elem == SequenceElem && len(c.n.children) == 0 && c.n.label == "")
}

// Children returns the items of a sequence or the child of styled content.
func (c Content) Children() []Content {
	if c.n == nil {
		return nil
	}
	return c.n.children
}

// Styles returns the styles of styled content.
func (c Content) Styles() Styles {
	if c.n == nil {
		return Styles{}
	}
	return c.n.styles
}

// Styled wraps c in styles. Consecutive styles on the same child merge.
func (c Content) Styled(s Styles) Content {
	if s.Len() == 0 {
		return c
	}
	if c.n != nil && c.n.elem == StyledElem && c.n.label == "" {
		return Content{&node{elem: StyledElem, children: c.n.children, styles: s.Chain(c.n.styles)}}
	}
	return Content{&node{elem: StyledElem, children: []Content{c}, styles: s}}
}

// Label returns the attached label, if any.
func (c Content) Label() (Label, bool) {
	if c.n == nil || c.n.label == "" {
		return "", false
	}
	return c.n.label, true
}

// WithLabel returns a copy of c with a label attached.
func (c Content) WithLabel(l Label) Content {
	var cp node
	if c.n != nil {
		cp = *c.n
	} else {
		cp.elem = SequenceElem
	}
	cp.label = l
	return Content{&cp}
}

// Field returns a field of the node.
func (c Content) Field(name string) (Value, error) {
	if c.n != nil {
		if v, ok := c.n.fields.Get(name); ok {
			return v, nil
		}
	}
	switch elem := c.Elem(); {
	case name == "children" && elem == SequenceElem:
		return NewArray(contentValues(c.Children())...), nil
	case name == "child" && elem == StyledElem:
		return c.n.children[0], nil
	case name == "label":
		if l, ok := c.Label(); ok {
			return l, nil
		}
	}
	return nil, errorf("content does not contain field %q", name)
}

// Fields returns all fields as a dictionary.
func (c Content) Fields() Dict {
	out := NewDict(0)
	if c.n == nil {
		out.Insert("children", NewArray())
		return out
	}
	for k, v := range c.n.fields.All() {
		out.Insert(k, Clone(v))
	}
	switch c.n.elem {
	case SequenceElem:
		out.Insert("children", NewArray(contentValues(c.n.children)...))
	case StyledElem:
		out.Insert("child", c.n.children[0])
	}
	if c.n.label != "" {
		out.Insert("label", c.n.label)
	}
	return out
}

// PlainText extracts the text of the tree.
func (c Content) PlainText() string {
	var sb strings.Builder
	c.plainText(&sb)
	return sb.String()
}

func (c Content) plainText(sb *strings.Builder) {
	if c.n == nil {
		return
	}
	switch c.n.elem {
	case TextElem:
		if v, ok := c.n.fields.Get("text"); ok {
			sb.WriteString(string(v.(Str)))
		}
	case SpaceElem:
		sb.WriteByte(' ')
	case LinebreakElem:
		sb.WriteByte('\n')
	case ParbreakElem:
		sb.WriteString("\n\n")
	case SequenceElem, StyledElem:
		for _, child := range c.n.children {
			child.plainText(sb)
		}
	default:
		if v, ok := c.n.fields.Get("body"); ok {
			if body, ok := v.(Content); ok {
				body.plainText(sb)
			}
		}
	}
}

// Repeat concatenates c with itself n times.
func (c Content) Repeat(n int64) (Content, error) {
	if n < 0 {
		return Content{}, errorf("number must be at least zero")
	}
	items := make([]Content, n)
	for i := range items {
		items[i] = c
	}
	return Sequence(items...), nil
}

func contentValues(items []Content) []Value {
	out := make([]Value, len(items))
	for i, c := range items {
		out[i] = c
	}
	return out
}

func contentEqual(a, b Content) bool {
	if a.n == b.n {
		return true
	}
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}
	if a.n == nil || b.n == nil {
		return false
	}
	if a.n.elem != b.n.elem || a.n.label != b.n.label || len(a.n.children) != len(b.n.children) {
		return false
	}
	if !Equal(a.n.fields, b.n.fields) || !stylesEqual(a.n.styles, b.n.styles) {
		return false
	}
	for i := range a.n.children {
		if !contentEqual(a.n.children[i], b.n.children[i]) {
			return false
		}
	}
	return true
}

// ToContent converts a value into displayable content: strings and numbers
// become text, none becomes nothing, other values show their
// representation.
func ToContent(v Value) Content {
	switch x := v.(type) {
	case nil, NoneValue:
		return Content{}
	case Content:
		return x
	case Str:
		return NewText(string(x))
	case Int, Float, Label:
		return NewText(Format(v))
	}
	return NewText(Repr(v))
}
