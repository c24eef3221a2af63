package value

// FieldInfo describes one field of an element.
type FieldInfo struct {
	Name       string
	Positional bool
	Required   bool
	Settable   bool
	Default    Value
	Cast       func(Value) (Value, error)
}

// Element is a kind of content. Element functions construct content of
// their kind; set rules on them produce styles for their settable fields.
type Element struct {
	Name   string
	Fields []FieldInfo

	construct func(e *Element, args *Args) (Content, error)
}

func (e *Element) FuncName() string { return e.Name }

func (e *Element) HashKey() any { return []any{"elem", e.Name} }

// Field looks up a field description.
func (e *Element) Field(name string) (FieldInfo, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// Construct builds content of this element from call arguments.
func (e *Element) Construct(args *Args) (Content, error) {
	if e.construct != nil {
		return e.construct(e, args)
	}
	fields, err := e.takeFields(args, false)
	if err != nil {
		return Content{}, err
	}
	if err := args.Finish(); err != nil {
		return Content{}, err
	}
	return NewElem(e, fields), nil
}

// Set turns the named arguments of a set rule into styles.
func (e *Element) Set(args *Args) (Styles, error) {
	fields, err := e.takeFields(args, true)
	if err != nil {
		return Styles{}, err
	}
	if err := args.Finish(); err != nil {
		return Styles{}, err
	}
	list := make([]Style, 0, fields.Len())
	for k, v := range fields.All() {
		list = append(list, Style{Elem: e, Field: k, Value: Clone(v)})
	}
	return NewStyles(list...), nil
}

func (e *Element) takeFields(args *Args, settableOnly bool) (Dict, error) {
	fields := NewDict(len(e.Fields))
	for _, f := range e.Fields {
		var (
			v   Value
			ok  bool
			err error
		)
		switch {
		case settableOnly && !f.Settable:
			continue
		case f.Positional && f.Required:
			if v, err = args.Expect(f.Name); err != nil {
				return Dict{}, err
			}
			ok = true
		case f.Positional:
			v, ok = args.Eat()
		default:
			v, ok = args.Named(f.Name)
		}
		if !ok {
			continue
		}
		if f.Cast != nil {
			if v, err = f.Cast(v); err != nil {
				return Dict{}, err
			}
		}
		fields.Insert(f.Name, v)
	}
	return fields, nil
}

func castContent(v Value) (Value, error) { return ToContent(v), nil }

func castInt(v Value) (Value, error) {
	_, err := CastInt(v)
	return v, err
}

func castBool(v Value) (Value, error) {
	_, err := CastBool(v)
	return v, err
}

func castColor(v Value) (Value, error) {
	if _, ok := v.(Color); !ok {
		return nil, mismatch("color", v)
	}
	return v, nil
}

func castLength(v Value) (Value, error) {
	if _, ok := v.(Length); !ok {
		return nil, mismatch("length", v)
	}
	return v, nil
}

func castStrOrNone(v Value) (Value, error) {
	switch v.(type) {
	case Str, NoneValue:
		return v, nil
	}
	return nil, mismatch("string or none", v)
}

func castHeadingLevel(v Value) (Value, error) {
	n, err := CastInt(v)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errorf("level must be at least one")
	}
	return v, nil
}

// The built-in elements. Sequence and styled content are structural and
// have no user-facing constructor arguments.
var (
	SequenceElem  = &Element{Name: "sequence"}
	StyledElem    = &Element{Name: "styled"}
	SpaceElem     = &Element{Name: "space"}
	LinebreakElem = &Element{Name: "linebreak"}
	ParbreakElem  = &Element{Name: "parbreak"}

	TextElem = &Element{
		Name: "text",
		Fields: []FieldInfo{
			{Name: "fill", Settable: true, Default: Color{A: 255}, Cast: castColor},
			{Name: "size", Settable: true, Default: Length{Abs: 11}, Cast: castLength},
			{Name: "weight", Settable: true, Default: Int(400), Cast: castInt},
			{Name: "text", Positional: true, Required: true},
		},
	}

	StrongElem = &Element{
		Name: "strong",
		Fields: []FieldInfo{
			{Name: "delta", Settable: true, Default: Int(300), Cast: castInt},
			{Name: "body", Positional: true, Required: true, Cast: castContent},
		},
	}

	EmphElem = &Element{
		Name: "emph",
		Fields: []FieldInfo{
			{Name: "body", Positional: true, Required: true, Cast: castContent},
		},
	}

	HeadingElem = &Element{
		Name: "heading",
		Fields: []FieldInfo{
			{Name: "level", Settable: true, Default: Int(1), Cast: castHeadingLevel},
			{Name: "numbering", Settable: true, Default: None, Cast: castStrOrNone},
			{Name: "body", Positional: true, Required: true, Cast: castContent},
		},
	}

	ParElem = &Element{
		Name: "par",
		Fields: []FieldInfo{
			{Name: "justify", Settable: true, Default: Bool(false), Cast: castBool},
			{Name: "body", Positional: true, Required: true, Cast: castContent},
		},
	}
)

func init() {
	TextElem.construct = constructText
}

// constructText accepts a string, which becomes a text node, or content,
// which is styled with the given text properties.
func constructText(e *Element, args *Args) (Content, error) {
	settable, err := e.takeFields(args, true)
	if err != nil {
		return Content{}, err
	}
	body, err := args.Expect("body")
	if err != nil {
		return Content{}, err
	}
	if err := args.Finish(); err != nil {
		return Content{}, err
	}

	var c Content
	switch b := body.(type) {
	case Str:
		c = NewText(string(b))
	case Content:
		c = b
	default:
		return Content{}, mismatch("string or content", body)
	}
	if settable.Len() == 0 {
		return c, nil
	}
	list := make([]Style, 0, settable.Len())
	for k, v := range settable.All() {
		list = append(list, Style{Elem: e, Field: k, Value: Clone(v)})
	}
	return c.Styled(NewStyles(list...)), nil
}
