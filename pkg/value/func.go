package value

// Callable is the implementation behind a Func: a native function, an
// element or a closure built by the evaluator.
type Callable interface {
	FuncName() string
}

// Hasher is implemented by callables with a structural identity, used for
// memoization keys.
type Hasher interface {
	HashKey() any
}

// Engine calls functions on behalf of methods and natives that take
// callbacks. The evaluator implements it.
type Engine interface {
	Call(f Func, args *Args) (Value, error)
}

// Func is a function value.
type Func struct {
	c Callable
}

// NewFunc wraps a callable.
func NewFunc(c Callable) Func {
	return Func{c: c}
}

func (Func) Type() Type { return TypeFunc }

// Callable returns the implementation.
func (f Func) Callable() Callable { return f.c }

// Name returns the function name, or "" for anonymous closures.
func (f Func) Name() string {
	if f.c == nil {
		return ""
	}
	return f.c.FuncName()
}

// Element returns the element when f is an element function.
func (f Func) Element() (*Element, bool) {
	e, ok := f.c.(*Element)
	return e, ok
}

// NativeFunc is a function implemented in Go.
type NativeFunc struct {
	Name string
	Fn   func(e Engine, args *Args) (Value, error)
}

func (n *NativeFunc) FuncName() string { return n.Name }

func (n *NativeFunc) HashKey() any { return []any{"native", n.Name} }

// Native is a shorthand for a native function value.
func Native(name string, fn func(e Engine, args *Args) (Value, error)) Func {
	return NewFunc(&NativeFunc{Name: name, Fn: fn})
}
