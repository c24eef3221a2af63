package vm

import (
	"fmt"

	"github.com/rivo/uniseg"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// flow is a pending control-flow event.
type flow uint8

const (
	flowNone flow = iota
	flowBreak
	flowContinue
	flowReturn
)

func (fl flow) String() string {
	switch fl {
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	case flowReturn:
		return "return"
	}
	return "none"
}

// frame is one invocation of a unit.
type frame struct {
	vm     *VM
	unit   *bytecode.Unit
	module string
	regs   []value.Value

	ret      value.Value // value of an explicit return
	explicit bool
}

func (vm *VM) newFrame(u *bytecode.Unit, module string) *frame {
	regs := make([]value.Value, u.Registers)
	for i := range regs {
		regs[i] = value.None
	}
	return &frame{vm: vm, unit: u, module: module, regs: regs}
}

// read fetches an operand. Register and constant values are cloned.
func (f *frame) read(rd bytecode.Readable) value.Value {
	switch rd.Kind {
	case bytecode.ReadNone:
		return value.None
	case bytecode.ReadAuto:
		return value.Auto
	case bytecode.ReadTrue:
		return value.Bool(true)
	case bytecode.ReadFalse:
		return value.Bool(false)
	case bytecode.ReadEmptyStyles:
		return value.NewStyles()
	case bytecode.ReadRegister:
		return value.Clone(f.regs[rd.Index])
	case bytecode.ReadConst:
		return value.Clone(f.unit.Constants[rd.Index])
	case bytecode.ReadString:
		return value.Str(f.unit.Strings[rd.Index])
	case bytecode.ReadLabel:
		return value.Label(f.unit.Labels[rd.Index])
	case bytecode.ReadGlobal:
		name := f.unit.Strings[rd.Index]
		if v, ok := f.vm.lib.Get(name); ok {
			return v
		}
		panic(fmt.Sprintf("vm: global %q is not in the library", name))
	}
	panic(fmt.Sprintf("vm: bad readable kind %d", rd.Kind))
}

// write stores a result.
func (f *frame) write(w bytecode.Writable, v value.Value, j *joiner) error {
	switch w.Kind {
	case bytecode.WriteDiscard:
		return nil
	case bytecode.WriteRegister:
		f.regs[w.Index] = v
		return nil
	case bytecode.WriteJoiner:
		return j.join(v)
	}
	panic(fmt.Sprintf("vm: bad writable kind %d", w.Kind))
}

func (f *frame) jump(id uint16, start, end int) int {
	target := f.unit.Jumps[id]
	if target < start || target > end {
		panic(fmt.Sprintf("vm: jump %d to %04X leaves range %04X-%04X", id, target, start, end))
	}
	return target
}

func expectBool(v value.Value) (bool, error) {
	b, ok := v.(value.Bool)
	if !ok {
		return false, diag.Errorf(ast.Detached, "expected boolean, found %s", v.Type())
	}
	return bool(b), nil
}

var binaryOps = map[bytecode.Opcode]func(a, b value.Value) (value.Value, error){
	bytecode.OpAdd: value.Add,
	bytecode.OpSub: value.Sub,
	bytecode.OpMul: value.Mul,
	bytecode.OpDiv: value.Div,
	bytecode.OpEq: func(a, b value.Value) (value.Value, error) {
		return value.Bool(value.Equal(a, b)), nil
	},
	bytecode.OpNeq: func(a, b value.Value) (value.Value, error) {
		return value.Bool(!value.Equal(a, b)), nil
	},
	bytecode.OpLt:  compareWith(func(c int) bool { return c < 0 }),
	bytecode.OpLeq: compareWith(func(c int) bool { return c <= 0 }),
	bytecode.OpGt:  compareWith(func(c int) bool { return c > 0 }),
	bytecode.OpGeq: compareWith(func(c int) bool { return c >= 0 }),
	bytecode.OpIn:  value.In,
	bytecode.OpNotIn: func(a, b value.Value) (value.Value, error) {
		in, err := value.In(a, b)
		if err != nil {
			return nil, err
		}
		return value.Not(in)
	},
}

func compareWith(pred func(int) bool) func(a, b value.Value) (value.Value, error) {
	return func(a, b value.Value) (value.Value, error) {
		c, err := value.Compare(a, b)
		if err != nil {
			return nil, err
		}
		return value.Bool(pred(c)), nil
	}
}

var compoundOps = map[bytecode.Opcode]func(a, b value.Value) (value.Value, error){
	bytecode.OpAddAssign: value.Add,
	bytecode.OpSubAssign: value.Sub,
	bytecode.OpMulAssign: value.Mul,
	bytecode.OpDivAssign: value.Div,
}

// run executes code[start:end] into j. Errors are anchored at the span of
// the failing instruction.
func (f *frame) run(start, end int, j *joiner) (flow, error) {
	ip := start
	for ip < end {
		fl, next, err := f.step(ip, start, end, j)
		if err != nil {
			return flowNone, diag.At(f.unit.SpanAt(ip), err)
		}
		if fl != flowNone {
			return fl, nil
		}
		ip = next
	}
	return flowNone, nil
}

// step executes the instruction at ip and returns the offset of the next
// one, or a flow event that ends the current range.
func (f *frame) step(ip, start, end int, j *joiner) (flow, int, error) {
	code := f.unit.Code
	op := bytecode.Opcode(code[ip])
	r := bytecode.Reader{Code: code, Pos: ip + 1}
	span := f.unit.SpanAt(ip)
	if f.vm.cfg.Trace {
		line, _ := f.unit.DisassembleAt(ip)
		log.Debugf("%s %04X %s", f.unit.Name, ip, line)
	}
	next := ip + op.InstructionLen()

	switch op {
	case bytecode.OpCopy:
		v := f.read(r.Readable())
		return flowNone, next, f.write(r.Writable(), v, j)

	case bytecode.OpPos, bytecode.OpNeg, bytecode.OpNot:
		v := f.read(r.Readable())
		var (
			out value.Value
			err error
		)
		switch op {
		case bytecode.OpPos:
			out, err = value.Pos(v)
		case bytecode.OpNeg:
			out, err = value.Neg(v)
		default:
			out, err = value.Not(v)
		}
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv,
		bytecode.OpEq, bytecode.OpNeq, bytecode.OpLt, bytecode.OpLeq,
		bytecode.OpGt, bytecode.OpGeq, bytecode.OpIn, bytecode.OpNotIn:
		a := f.read(r.Readable())
		b := f.read(r.Readable())
		out, err := binaryOps[op](a, b)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	// Mutation

	case bytecode.OpAssign:
		v := f.read(r.Readable())
		slot, err := f.access(bytecode.AccessID(r.U16()))
		if err != nil {
			return flowNone, 0, err
		}
		*slot = v
		return flowNone, next, nil

	case bytecode.OpAddAssign, bytecode.OpSubAssign, bytecode.OpMulAssign, bytecode.OpDivAssign:
		v := f.read(r.Readable())
		slot, err := f.access(bytecode.AccessID(r.U16()))
		if err != nil {
			return flowNone, 0, err
		}
		old := value.Take(slot)
		out, err := compoundOps[op](old, v)
		if err != nil {
			*slot = old
			return flowNone, 0, err
		}
		*slot = out
		return flowNone, next, nil

	case bytecode.OpAssignField:
		v := f.read(r.Readable())
		parent := bytecode.AccessID(r.U16())
		field := f.unit.Strings[r.U16()]
		return flowNone, next, f.assignField(parent, field, v)

	case bytecode.OpDestructure:
		v := f.read(r.Readable())
		return flowNone, next, f.destructure(bytecode.PatternID(r.U16()), v)

	// Collections

	case bytecode.OpArray:
		n := r.U16()
		f.regs[r.U16()] = value.NewArray(make([]value.Value, 0, n)...)
		return flowNone, next, nil

	case bytecode.OpDict:
		n := r.U16()
		f.regs[r.U16()] = value.NewDict(int(n))
		return flowNone, next, nil

	case bytecode.OpArgs:
		n := r.U16()
		args := value.NewArgs(span)
		args.Items = make([]value.Arg, 0, n)
		f.regs[r.U16()] = args
		return flowNone, next, nil

	case bytecode.OpPush:
		v := f.read(r.Readable())
		reg := r.U16()
		arr := f.regs[reg].(value.Array)
		arr.Push(v)
		f.regs[reg] = arr
		return flowNone, next, nil

	case bytecode.OpInsert:
		k := f.read(r.Readable())
		v := f.read(r.Readable())
		reg := r.U16()
		key, err := value.CastStr(k)
		if err != nil {
			return flowNone, 0, err
		}
		d := f.regs[reg].(value.Dict)
		d.Insert(key, v)
		f.regs[reg] = d
		return flowNone, next, nil

	case bytecode.OpSpread:
		v := f.read(r.Readable())
		reg := r.U16()
		out, err := spread(f.regs[reg], v)
		if err != nil {
			return flowNone, 0, err
		}
		f.regs[reg] = out
		return flowNone, next, nil

	case bytecode.OpPushArg:
		v := f.read(r.Readable())
		f.regs[r.U16()].(*value.Args).Push(span, v)
		return flowNone, next, nil

	case bytecode.OpInsertArg:
		name := f.unit.Strings[r.U16()]
		v := f.read(r.Readable())
		f.regs[r.U16()].(*value.Args).Insert(span, name, v)
		return flowNone, next, nil

	case bytecode.OpSpreadArg:
		v := f.read(r.Readable())
		return flowNone, next, f.regs[r.U16()].(*value.Args).Spread(span, v)

	// Access and calls

	case bytecode.OpField:
		target := f.read(r.Readable())
		field := f.unit.Strings[r.U16()]
		out, err := fieldOf(target, field)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpCall:
		callee := f.read(r.Readable())
		args := f.read(r.Readable()).(*value.Args)
		fn, ok := callee.(value.Func)
		if !ok {
			return flowNone, 0, diag.Errorf(span, "expected function, found %s", callee.Type())
		}
		out, err := f.vm.Call(fn, args)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpCallMethod:
		recv := f.read(r.Readable())
		method := f.unit.Strings[r.U16()]
		args := f.read(r.Readable()).(*value.Args)
		out, err := f.callMethod(recv, method, args)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpCallMutating:
		acc := bytecode.AccessID(r.U16())
		method := f.unit.Strings[r.U16()]
		args := f.read(r.Readable()).(*value.Args)
		slot, err := f.access(acc)
		if err != nil {
			return flowNone, 0, err
		}
		var out value.Value
		switch (*slot).(type) {
		case value.Array, value.Dict:
			out, err = value.CallMutating(slot, method, args)
		default:
			// Only containers mutate; other receivers dispatch normally.
			out, err = f.callMethod(*slot, method, args)
		}
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpClosure:
		fn := f.makeClosure(f.unit.Closures[r.U16()])
		return flowNone, next, f.write(r.Writable(), fn, j)

	// Control flow

	case bytecode.OpJump:
		return flowNone, f.jump(r.U16(), start, end), nil

	case bytecode.OpJumpIf, bytecode.OpJumpIfNot:
		cond, err := expectBool(f.read(r.Readable()))
		if err != nil {
			return flowNone, 0, err
		}
		target := f.jump(r.U16(), start, end)
		if cond == (op == bytecode.OpJumpIf) {
			return flowNone, target, nil
		}
		return flowNone, next, nil

	case bytecode.OpEnter:
		stop := f.jump(r.U16(), next, end)
		inner := newJoiner(f.vm, r.U16() != 0)
		fl, err := f.run(next, stop, inner)
		if err != nil {
			return flowNone, 0, err
		}
		out, err := inner.finish()
		if err != nil {
			return flowNone, 0, err
		}
		if err := f.write(r.Writable(), out, j); err != nil {
			return flowNone, 0, err
		}
		return fl, stop, nil

	case bytecode.OpWhile:
		stop := f.jump(r.U16(), next, end)
		inner := newJoiner(f.vm, r.U16() != 0)
		fl, err := f.loopWhile(next, stop, inner)
		if err != nil {
			return flowNone, 0, err
		}
		out, err := inner.finish()
		if err != nil {
			return flowNone, 0, err
		}
		if err := f.write(r.Writable(), out, j); err != nil {
			return flowNone, 0, err
		}
		return fl, stop, nil

	case bytecode.OpIter:
		iterable := f.read(r.Readable())
		pattern := bytecode.PatternID(r.U16())
		stop := f.jump(r.U16(), next, end)
		inner := newJoiner(f.vm, r.U16() != 0)
		fl, err := f.loopIter(iterable, pattern, next, stop, inner)
		if err != nil {
			return flowNone, 0, err
		}
		out, err := inner.finish()
		if err != nil {
			return flowNone, 0, err
		}
		if err := f.write(r.Writable(), out, j); err != nil {
			return flowNone, 0, err
		}
		return fl, stop, nil

	case bytecode.OpBreak:
		return flowBreak, next, nil

	case bytecode.OpContinue:
		return flowContinue, next, nil

	case bytecode.OpReturn:
		explicit := r.U16() != 0
		v := f.read(r.Readable())
		if explicit {
			f.ret, f.explicit = v, true
		}
		return flowReturn, next, nil

	// Rules and markup

	case bytecode.OpSet:
		target := f.read(r.Readable())
		args := f.read(r.Readable()).(*value.Args)
		styles, err := setRule(target, args)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), styles, j)

	case bytecode.OpShow:
		sel := f.read(r.Readable())
		transform := f.read(r.Readable())
		recipe, err := showRule(span, sel, transform)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), recipe, j)

	case bytecode.OpShowSet:
		sel := f.read(r.Readable())
		target := f.read(r.Readable())
		args := f.read(r.Readable()).(*value.Args)
		styles, err := setRule(target, args)
		if err != nil {
			return flowNone, 0, err
		}
		recipe, err := showRule(span, sel, styles)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), recipe, j)

	case bytecode.OpStrong, bytecode.OpEmph:
		body := f.read(r.Readable())
		elem := value.StrongElem
		if op == bytecode.OpEmph {
			elem = value.EmphElem
		}
		out, err := elem.Construct(value.NewArgs(span, body))
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpHeading:
		level := r.U16()
		body := f.read(r.Readable())
		args := value.NewArgs(span, body)
		args.Insert(span, "level", value.Int(level))
		out, err := value.HeadingElem.Construct(args)
		if err != nil {
			return flowNone, 0, err
		}
		return flowNone, next, f.write(r.Writable(), out, j)

	case bytecode.OpImport, bytecode.OpInclude:
		mod, err := f.importModule(f.read(r.Readable()), span)
		if err != nil {
			return flowNone, 0, err
		}
		var out value.Value = mod
		if op == bytecode.OpInclude {
			out = mod.Content
		}
		return flowNone, next, f.write(r.Writable(), out, j)
	}
	panic(fmt.Sprintf("vm: unknown opcode 0x%02X at %04X in %s", byte(op), ip, f.unit.Name))
}

// loopWhile repeats a WHILE range until it breaks or returns.
func (f *frame) loopWhile(start, end int, j *joiner) (flow, error) {
	for i := 0; ; i++ {
		if i >= f.vm.cfg.MaxIterations {
			return flowNone, diag.Errorf(f.unit.SpanAt(start-1), "loop seems to be infinite")
		}
		fl, err := f.run(start, end, j)
		if err != nil {
			return flowNone, err
		}
		switch fl {
		case flowBreak:
			return flowNone, nil
		case flowReturn:
			return fl, nil
		}
	}
}

// loopIter runs an ITER range once per item of iterable.
func (f *frame) loopIter(iterable value.Value, pattern bytecode.PatternID, start, end int, j *joiner) (flow, error) {
	each := func(item value.Value) (flow, error) {
		if err := f.destructure(pattern, item); err != nil {
			return flowNone, err
		}
		return f.run(start, end, j)
	}

	var items []value.Value
	switch x := iterable.(type) {
	case value.Array:
		items = x.Items()
	case value.Dict:
		for k, v := range x.All() {
			items = append(items, value.NewArray(value.Str(k), value.Clone(v)))
		}
	case value.Str:
		g := uniseg.NewGraphemes(string(x))
		for g.Next() {
			items = append(items, value.Str(g.Str()))
		}
	case *value.Args:
		items = x.Positional().Items()
	default:
		return flowNone, diag.Errorf(ast.Detached, "cannot loop over %s", iterable.Type())
	}

	for _, item := range items {
		fl, err := each(value.Clone(item))
		if err != nil {
			return flowNone, err
		}
		switch fl {
		case flowBreak:
			return flowNone, nil
		case flowReturn:
			return fl, nil
		}
	}
	return flowNone, nil
}

// spread appends v to the collection under construction.
func spread(coll, v value.Value) (value.Value, error) {
	if value.IsNone(v) {
		return coll, nil
	}
	switch c := coll.(type) {
	case value.Array:
		src, ok := v.(value.Array)
		if !ok {
			return nil, diag.Errorf(ast.Detached, "cannot spread %s into array", v.Type())
		}
		return c.Concat(src), nil
	case value.Dict:
		src, ok := v.(value.Dict)
		if !ok {
			return nil, diag.Errorf(ast.Detached, "cannot spread %s into dictionary", v.Type())
		}
		return c.Concat(src), nil
	}
	panic(fmt.Sprintf("vm: spread into %s", coll.Type()))
}

// fieldOf reads target.field.
func fieldOf(target value.Value, field string) (value.Value, error) {
	switch t := target.(type) {
	case value.Dict:
		return t.At(field)
	case value.Content:
		return t.Field(field)
	case *value.Module:
		return t.Field(field)
	case value.Func:
		if elem, ok := t.Element(); ok {
			if info, ok := elem.Field(field); ok && info.Settable {
				return info.Default, nil
			}
		}
	}
	return nil, diag.Errorf(ast.Detached, "cannot access fields on type %s", target.Type())
}

// callMethod dispatches recv.method(args). Calling a module's function is
// written like a method call.
func (f *frame) callMethod(recv value.Value, method string, args *value.Args) (value.Value, error) {
	if mod, ok := recv.(*value.Module); ok {
		callee, err := mod.Field(method)
		if err != nil {
			return nil, err
		}
		fn, ok := callee.(value.Func)
		if !ok {
			return nil, diag.Errorf(ast.Detached, "expected function, found %s", callee.Type())
		}
		return f.vm.Call(fn, args)
	}
	return value.CallMethod(f.vm, recv, method, args)
}

// assignField implements `parent.field = v`: an insert-or-update on the
// dictionary parent resolves to. A local dictionary is updated in place.
func (f *frame) assignField(parent bytecode.AccessID, field string, v value.Value) error {
	var slot *value.Value
	if acc := f.unit.Accesses[parent]; acc.Kind == bytecode.AccessRegister {
		slot = &f.regs[acc.Register]
	} else {
		var err error
		if slot, err = f.access(parent); err != nil {
			return err
		}
	}
	d, ok := (*slot).(value.Dict)
	if !ok {
		return diag.Errorf(ast.Detached, "cannot mutate fields on %s", (*slot).Type())
	}
	d.Insert(field, v)
	*slot = d
	return nil
}

// setRule turns a set rule into styles.
func setRule(target value.Value, args *value.Args) (value.Styles, error) {
	fn, ok := target.(value.Func)
	if !ok {
		return value.Styles{}, diag.Errorf(ast.Detached, "expected function, found %s", target.Type())
	}
	elem, ok := fn.Element()
	if !ok {
		return value.Styles{}, diag.Errorf(ast.Detached, "only element functions can be used in set rules")
	}
	return elem.Set(args)
}

// showRule validates and builds a recipe. A none selector matches
// everything.
func showRule(span ast.Span, sel, transform value.Value) (*value.Recipe, error) {
	recipe := &value.Recipe{Span: span, Transform: transform}
	if !value.IsNone(sel) {
		if err := value.CheckSelector(sel); err != nil {
			return nil, err
		}
		recipe.Selector = sel
	}
	if err := value.CheckTransform(transform); err != nil {
		return nil, err
	}
	return recipe, nil
}

// importModule resolves the source of an import or include.
func (f *frame) importModule(source value.Value, span ast.Span) (*value.Module, error) {
	switch s := source.(type) {
	case *value.Module:
		return s, nil
	case value.Str:
		if f.vm.cfg.World == nil {
			return nil, diag.Errorf(span, "cannot import %q: no world is configured", string(s))
		}
		log.Debugf("importing %s from %s", string(s), f.module)
		return f.vm.cfg.World.Import(f.module, string(s), span)
	}
	return nil, diag.Errorf(span, "expected path or module, found %s", source.Type())
}
