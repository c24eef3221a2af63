package vm

import (
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// Closure is a compiled function together with the values it captured
// and the defaults of its named parameters, both taken when the closure
// was created.
type Closure struct {
	unit     *bytecode.Unit
	module   string
	captured []value.Value
	defaults []value.Value // indexed like unit.Params
}

// FuncName implements value.Callable.
func (c *Closure) FuncName() string { return c.unit.Name }

// Unit returns the compiled body.
func (c *Closure) Unit() *bytecode.Unit { return c.unit }

// HashKey implements value.Hasher. Two closures are the same function when
// their bodies are structurally equal and they captured equal values.
func (c *Closure) HashKey() any {
	captured := make([]any, len(c.captured))
	for i, v := range c.captured {
		captured[i] = value.Key(v)
	}
	defaults := make([]any, len(c.defaults))
	for i, v := range c.defaults {
		defaults[i] = value.Key(v)
	}
	return []any{"closure", c.unit.Hash[:], captured, defaults}
}

// makeClosure snapshots captures and defaults from the creating frame.
func (f *frame) makeClosure(u *bytecode.Unit) value.Func {
	c := &Closure{
		unit:     u,
		module:   f.module,
		captured: make([]value.Value, len(u.Captures)),
		defaults: make([]value.Value, len(u.Params)),
	}
	for i, cp := range u.Captures {
		c.captured[i] = f.read(cp.From)
	}
	for i, p := range u.Params {
		if p.Kind == bytecode.ParamNamed {
			c.defaults[i] = f.read(p.Default)
		}
	}
	return value.NewFunc(c)
}

// callClosure runs a closure in a fresh frame.
func (vm *VM) callClosure(fn value.Func, c *Closure, args *value.Args) (value.Value, error) {
	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, diag.Errorf(args.Span, "maximum function call depth exceeded")
	}

	var key [32]byte
	memo := vm.cfg.Memo
	if memo != nil {
		var err error
		if key, err = bytecode.Digest([]any{value.Key(fn), value.Key(args)}); err != nil {
			memo = nil
		} else if v, ok := memo.Get(key); ok {
			return value.Clone(v), nil
		}
	}

	vm.depth++
	defer func() { vm.depth-- }()

	u := c.unit
	f := vm.newFrame(u, c.module)
	for i, cp := range u.Captures {
		f.regs[cp.To] = value.Clone(c.captured[i])
	}
	if u.HasSelf {
		f.regs[u.Self] = fn
	}
	if err := f.bindParams(c, args); err != nil {
		return nil, err
	}

	j := newJoiner(vm, u.Display)
	fl, err := f.run(0, len(u.Code), j)
	if err != nil {
		return nil, diag.Trace(err, args.Span, "error occurred in this function call")
	}
	out, err := j.finish()
	if err != nil {
		return nil, diag.At(u.Span, err)
	}
	if fl == flowReturn && f.explicit {
		out = f.ret
	}

	if memo != nil {
		memo.Insert(key, value.Clone(out))
	}
	return out, nil
}

// bindParams installs the arguments. Named parameters are taken first,
// then positional parameters before the sink from the front and those after
// it from the back. The sink takes whatever remains.
func (f *frame) bindParams(c *Closure, args *value.Args) error {
	params := f.unit.Params
	for i, p := range params {
		if p.Kind != bytecode.ParamNamed {
			continue
		}
		v, ok := args.Named(p.Name)
		if !ok {
			v = value.Clone(c.defaults[i])
		}
		f.regs[p.Register] = v
	}

	sink := -1
	for i, p := range params {
		if p.Kind == bytecode.ParamSink {
			sink = i
		}
	}

	bind := func(p bytecode.Param, v value.Value) error {
		f.regs[p.Register] = v
		if p.HasPattern {
			return f.destructure(p.Pattern, value.Clone(v))
		}
		return nil
	}

	for i, p := range params {
		if p.Kind != bytecode.ParamPos || (sink >= 0 && i > sink) {
			continue
		}
		v, err := args.Expect(paramName(p))
		if err != nil {
			return err
		}
		if err := bind(p, v); err != nil {
			return err
		}
	}
	if sink < 0 {
		return args.Finish()
	}

	for i := len(params) - 1; i > sink; i-- {
		p := params[i]
		if p.Kind != bytecode.ParamPos {
			continue
		}
		v, ok := takeLast(args)
		if !ok {
			return diag.Errorf(args.Span, "missing argument: %s", paramName(p))
		}
		if err := bind(p, v); err != nil {
			return err
		}
	}

	rest := &value.Args{Span: args.Span, Items: args.Items}
	args.Items = nil
	f.regs[params[sink].Register] = rest
	return nil
}

func paramName(p bytecode.Param) string {
	if p.Name == "" {
		return "argument"
	}
	return p.Name
}

// takeLast removes the last positional argument.
func takeLast(args *value.Args) (value.Value, bool) {
	for i := len(args.Items) - 1; i >= 0; i-- {
		if args.Items[i].Name == "" {
			v := args.Items[i].Value
			args.Items = append(args.Items[:i], args.Items[i+1:]...)
			return v, true
		}
	}
	return nil, false
}
