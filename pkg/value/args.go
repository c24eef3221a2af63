package value

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/diag"
)

// Arg is one call argument. Name is empty for positional arguments.
type Arg struct {
	Span  ast.Span
	Name  string
	Value Value
}

// Args are the arguments of a call. Functions consume them with Eat,
// Expect and Named and finally call Finish to reject leftovers.
type Args struct {
	Span  ast.Span
	Items []Arg
}

// NewArgs builds positional arguments.
func NewArgs(span ast.Span, values ...Value) *Args {
	args := &Args{Span: span, Items: make([]Arg, 0, len(values))}
	for _, v := range values {
		args.Push(span, v)
	}
	return args
}

func (*Args) Type() Type { return TypeArgs }

// Clone copies the argument list.
func (a *Args) Clone() *Args {
	out := &Args{Span: a.Span, Items: make([]Arg, len(a.Items))}
	for i, arg := range a.Items {
		out.Items[i] = Arg{Span: arg.Span, Name: arg.Name, Value: Clone(arg.Value)}
	}
	return out
}

// Push appends a positional argument.
func (a *Args) Push(span ast.Span, v Value) {
	a.Items = append(a.Items, Arg{Span: span, Value: v})
}

// Insert appends a named argument.
func (a *Args) Insert(span ast.Span, name string, v Value) {
	a.Items = append(a.Items, Arg{Span: span, Name: name, Value: v})
}

// Spread appends the contents of v: array items as positional arguments,
// dictionary entries as named ones, and arguments as they are. Spreading
// none adds nothing.
func (a *Args) Spread(span ast.Span, v Value) error {
	switch x := v.(type) {
	case NoneValue:
	case Array:
		for _, item := range x.Items() {
			a.Push(span, Clone(item))
		}
	case Dict:
		for k, item := range x.All() {
			a.Insert(span, k, Clone(item))
		}
	case *Args:
		for _, arg := range x.Items {
			a.Items = append(a.Items, Arg{Span: arg.Span, Name: arg.Name, Value: Clone(arg.Value)})
		}
	default:
		return errorf("cannot spread %s", v.Type())
	}
	return nil
}

// Eat consumes the first positional argument, if any.
func (a *Args) Eat() (Value, bool) {
	for i, arg := range a.Items {
		if arg.Name == "" {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return arg.Value, true
		}
	}
	return nil, false
}

// Expect consumes a required positional argument.
func (a *Args) Expect(what string) (Value, error) {
	v, ok := a.Eat()
	if !ok {
		return nil, diag.Errorf(a.Span, "missing argument: %s", what)
	}
	return v, nil
}

// Named consumes all arguments with the given name and returns the last
// one.
func (a *Args) Named(name string) (Value, bool) {
	var (
		found Value
		ok    bool
	)
	kept := a.Items[:0]
	for _, arg := range a.Items {
		if arg.Name == name {
			found, ok = arg.Value, true
			continue
		}
		kept = append(kept, arg)
	}
	a.Items = kept
	return found, ok
}

// Remaining consumes every positional argument.
func (a *Args) Remaining() []Value {
	var out []Value
	for {
		v, ok := a.Eat()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Finish fails on the first argument nobody consumed.
func (a *Args) Finish() error {
	if len(a.Items) == 0 {
		return nil
	}
	arg := a.Items[0]
	if arg.Name != "" {
		return diag.Errorf(arg.Span, "unexpected argument: %s", arg.Name)
	}
	return diag.Errorf(arg.Span, "unexpected argument")
}

// Positional collects the positional arguments into an array.
func (a *Args) Positional() Array {
	var items []Value
	for _, arg := range a.Items {
		if arg.Name == "" {
			items = append(items, Clone(arg.Value))
		}
	}
	return NewArray(items...)
}

// NamedDict collects the named arguments into a dictionary.
func (a *Args) NamedDict() Dict {
	d := NewDict(0)
	for _, arg := range a.Items {
		if arg.Name != "" {
			d.Insert(arg.Name, Clone(arg.Value))
		}
	}
	return d
}

// ExpectInt consumes a required integer argument.
func (a *Args) ExpectInt(what string) (int64, error) {
	v, err := a.Expect(what)
	if err != nil {
		return 0, err
	}
	return CastInt(v)
}
