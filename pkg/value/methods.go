package value

import (
	"strings"
	"unicode/utf8"
)

// MutatingOp is a method that changes its receiver in place.
type MutatingOp uint8

const (
	MutPush MutatingOp = iota
	MutPop
	MutInsert
	MutRemove
)

// AccessorOp is a method that selects a location inside its receiver.
type AccessorOp uint8

const (
	AccFirst AccessorOp = iota
	AccLast
	AccAt
)

var mutatingMethods = map[string]MutatingOp{
	"push":   MutPush,
	"pop":    MutPop,
	"insert": MutInsert,
	"remove": MutRemove,
}

var accessorMethods = map[string]AccessorOp{
	"first": AccFirst,
	"last":  AccLast,
	"at":    AccAt,
}

// IsMutatingMethod reports whether method changes its receiver.
func IsMutatingMethod(method string) bool {
	_, ok := mutatingMethods[method]
	return ok
}

// IsAccessorMethod reports whether method can yield a mutable location.
func IsAccessorMethod(method string) bool {
	_, ok := accessorMethods[method]
	return ok
}

func noMethod(v Value, method string) error {
	return errorf("type %s has no method `%s`", v.Type(), method)
}

// CallMutating applies a mutating method to the value in slot.
func CallMutating(slot *Value, method string, args *Args) (Value, error) {
	op, ok := mutatingMethods[method]
	if !ok {
		return nil, noMethod(*slot, method)
	}
	switch recv := (*slot).(type) {
	case Array:
		out, err := arrayMutating(&recv, op, args)
		*slot = recv
		return out, err
	case Dict:
		out, err := dictMutating(&recv, op, method, args)
		*slot = recv
		return out, err
	}
	return nil, noMethod(*slot, method)
}

func arrayMutating(a *Array, op MutatingOp, args *Args) (Value, error) {
	switch op {
	case MutPush:
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		a.Push(v)
		return None, nil
	case MutPop:
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return a.Pop()
	case MutInsert:
		index, err := args.ExpectInt("index")
		if err != nil {
			return nil, err
		}
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return None, a.Insert(index, v)
	default:
		index, err := args.ExpectInt("index")
		if err != nil {
			return nil, err
		}
		def, hasDef := args.Named("default")
		if err := args.Finish(); err != nil {
			return nil, err
		}
		out, err := a.Remove(index)
		if err != nil && hasDef {
			return def, nil
		}
		return out, err
	}
}

func dictMutating(d *Dict, op MutatingOp, method string, args *Args) (Value, error) {
	switch op {
	case MutInsert:
		key, err := expectKey(args)
		if err != nil {
			return nil, err
		}
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		d.Insert(key, v)
		return None, nil
	case MutRemove:
		key, err := expectKey(args)
		if err != nil {
			return nil, err
		}
		def, hasDef := args.Named("default")
		if err := args.Finish(); err != nil {
			return nil, err
		}
		if v, ok := d.Remove(key); ok {
			return v, nil
		}
		if hasDef {
			return def, nil
		}
		return nil, missingKey(key)
	}
	return nil, noMethod(*d, method)
}

func expectKey(args *Args) (string, error) {
	v, err := args.Expect("key")
	if err != nil {
		return "", err
	}
	return CastStr(v)
}

// Accessor resolves an accessor method on the value in slot to the
// location it selects. Only arrays and dictionaries have accessors, and a
// dictionary only has `at`.
func Accessor(slot *Value, method string, args *Args) (*Value, error) {
	op, ok := accessorMethods[method]
	if !ok {
		return nil, errorf("cannot mutate a temporary value")
	}
	switch recv := (*slot).(type) {
	case Array:
		var (
			p   *Value
			err error
		)
		switch op {
		case AccFirst:
			if err = args.Finish(); err == nil {
				p, err = recv.FirstMut()
			}
		case AccLast:
			if err = args.Finish(); err == nil {
				p, err = recv.LastMut()
			}
		case AccAt:
			var index int64
			if index, err = args.ExpectInt("index"); err == nil {
				if err = args.Finish(); err == nil {
					p, err = recv.AtMut(index)
				}
			}
		}
		*slot = recv
		return p, err
	case Dict:
		if op != AccAt {
			return nil, noMethod(recv, method)
		}
		key, err := expectKey(args)
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		p, err := recv.AtMut(key)
		*slot = recv
		return p, err
	}
	return nil, noMethod(*slot, method)
}

// ---------------------------------------------------------------------------
// Plain methods
// ---------------------------------------------------------------------------

type method func(e Engine, recv Value, args *Args) (Value, error)

var (
	arrayMethods   map[string]method
	dictMethods    map[string]method
	strMethods     map[string]method
	contentMethods map[string]method
	argsMethods    map[string]method
	colorMethods   map[string]method
)

func init() {
	arrayMethods = map[string]method{
		"len":      arrayLen,
		"first":    arrayFirst,
		"last":     arrayLast,
		"at":       arrayAt,
		"slice":    arraySlice,
		"contains": arrayContains,
		"join":     arrayJoin,
		"map":      arrayMap,
		"filter":   arrayFilter,
		"rev":      arrayRev,
		"sum":      arraySum,
	}
	dictMethods = map[string]method{
		"len":      dictLen,
		"at":       dictAt,
		"keys":     dictKeys,
		"values":   dictValues,
		"pairs":    dictPairs,
		"contains": dictContains,
	}
	strMethods = map[string]method{
		"len":      strLen,
		"upper":    strUpper,
		"lower":    strLower,
		"contains": strContains,
		"split":    strSplit,
		"trim":     strTrim,
		"at":       strAt,
	}
	contentMethods = map[string]method{
		"text":   contentText,
		"fields": contentFields,
		"func":   contentFunc,
	}
	argsMethods = map[string]method{
		"pos":   argsPos,
		"named": argsNamed,
	}
	colorMethods = map[string]method{
		"to-hex": colorToHex,
	}
}

// CallMethod calls a non-mutating method on a value.
func CallMethod(e Engine, recv Value, name string, args *Args) (Value, error) {
	var table map[string]method
	switch recv.(type) {
	case Array:
		table = arrayMethods
	case Dict:
		table = dictMethods
	case Str:
		table = strMethods
	case Content:
		table = contentMethods
	case *Args:
		table = argsMethods
	case Color:
		table = colorMethods
	}
	m, ok := table[name]
	if !ok {
		if IsMutatingMethod(name) && (recv.Type() == TypeArray || recv.Type() == TypeDict) {
			return nil, errorf("cannot mutate a temporary value")
		}
		return nil, noMethod(recv, name)
	}
	return m(e, recv, args)
}

func noArgs(out Value, args *Args) (Value, error) {
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func arrayLen(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Int(recv.(Array).Len()), args)
}

func arrayFirst(_ Engine, recv Value, args *Args) (Value, error) {
	if err := args.Finish(); err != nil {
		return nil, err
	}
	a := recv.(Array)
	if a.Len() == 0 {
		return nil, errorf("array is empty")
	}
	return a.At(0)
}

func arrayLast(_ Engine, recv Value, args *Args) (Value, error) {
	if err := args.Finish(); err != nil {
		return nil, err
	}
	a := recv.(Array)
	if a.Len() == 0 {
		return nil, errorf("array is empty")
	}
	return a.At(-1)
}

func arrayAt(_ Engine, recv Value, args *Args) (Value, error) {
	index, err := args.ExpectInt("index")
	if err != nil {
		return nil, err
	}
	def, hasDef := args.Named("default")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	v, err := recv.(Array).At(index)
	if err != nil && hasDef {
		return def, nil
	}
	return v, err
}

func arraySlice(_ Engine, recv Value, args *Args) (Value, error) {
	start, err := args.ExpectInt("start")
	if err != nil {
		return nil, err
	}
	var end *int64
	if v, ok := args.Eat(); ok {
		n, err := CastInt(v)
		if err != nil {
			return nil, err
		}
		end = &n
	}
	if v, ok := args.Named("count"); ok {
		n, err := CastInt(v)
		if err != nil {
			return nil, err
		}
		n += start
		end = &n
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return recv.(Array).Slice(start, end)
}

func arrayContains(_ Engine, recv Value, args *Args) (Value, error) {
	v, err := args.Expect("value")
	if err != nil {
		return nil, err
	}
	return noArgs(Bool(recv.(Array).Contains(v)), args)
}

func arrayJoin(_ Engine, recv Value, args *Args) (Value, error) {
	sep, _ := args.Eat()
	last, hasLast := args.Named("last")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	var out Value = None
	items := recv.(Array).Items()
	for i, item := range items {
		var err error
		if i > 0 {
			s := sep
			if hasLast && i == len(items)-1 {
				s = last
			}
			if out, err = Join(out, Clone(s)); err != nil {
				return nil, err
			}
		}
		if out, err = Join(out, Clone(item)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expectFunc(args *Args) (Func, error) {
	v, err := args.Expect("function")
	if err != nil {
		return Func{}, err
	}
	f, ok := v.(Func)
	if !ok {
		return Func{}, mismatch("function", v)
	}
	return f, args.Finish()
}

func arrayMap(e Engine, recv Value, args *Args) (Value, error) {
	f, err := expectFunc(args)
	if err != nil {
		return nil, err
	}
	items := recv.(Array).Items()
	out := make([]Value, 0, len(items))
	for _, item := range items {
		v, err := e.Call(f, NewArgs(args.Span, Clone(item)))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return NewArray(out...), nil
}

func arrayFilter(e Engine, recv Value, args *Args) (Value, error) {
	f, err := expectFunc(args)
	if err != nil {
		return nil, err
	}
	var out []Value
	for _, item := range recv.(Array).Items() {
		v, err := e.Call(f, NewArgs(args.Span, Clone(item)))
		if err != nil {
			return nil, err
		}
		keep, err := CastBool(v)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, Clone(item))
		}
	}
	return NewArray(out...), nil
}

func arrayRev(_ Engine, recv Value, args *Args) (Value, error) {
	if err := args.Finish(); err != nil {
		return nil, err
	}
	items := recv.(Array).Items()
	out := make([]Value, len(items))
	for i, item := range items {
		out[len(items)-1-i] = Clone(item)
	}
	return NewArray(out...), nil
}

func arraySum(_ Engine, recv Value, args *Args) (Value, error) {
	def, hasDef := args.Named("default")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	items := recv.(Array).Items()
	if len(items) == 0 {
		if hasDef {
			return def, nil
		}
		return nil, errorf("cannot calculate sum of empty array with no default")
	}
	acc := Clone(items[0])
	for _, item := range items[1:] {
		var err error
		if acc, err = Add(acc, Clone(item)); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func dictLen(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Int(recv.(Dict).Len()), args)
}

func dictAt(_ Engine, recv Value, args *Args) (Value, error) {
	key, err := expectKey(args)
	if err != nil {
		return nil, err
	}
	def, hasDef := args.Named("default")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	if v, ok := recv.(Dict).Get(key); ok {
		return v, nil
	}
	if hasDef {
		return def, nil
	}
	return nil, missingKey(key)
}

func dictKeys(_ Engine, recv Value, args *Args) (Value, error) {
	keys := recv.(Dict).Keys()
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i] = Str(k)
	}
	return noArgs(NewArray(out...), args)
}

func dictValues(_ Engine, recv Value, args *Args) (Value, error) {
	var out []Value
	for _, v := range recv.(Dict).All() {
		out = append(out, Clone(v))
	}
	return noArgs(NewArray(out...), args)
}

func dictPairs(_ Engine, recv Value, args *Args) (Value, error) {
	var out []Value
	for k, v := range recv.(Dict).All() {
		out = append(out, NewArray(Str(k), Clone(v)))
	}
	return noArgs(NewArray(out...), args)
}

func dictContains(_ Engine, recv Value, args *Args) (Value, error) {
	key, err := expectKey(args)
	if err != nil {
		return nil, err
	}
	return noArgs(Bool(recv.(Dict).Has(key)), args)
}

func strLen(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Int(len(recv.(Str))), args)
}

func strUpper(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Str(strings.ToUpper(string(recv.(Str)))), args)
}

func strLower(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Str(strings.ToLower(string(recv.(Str)))), args)
}

func strContains(_ Engine, recv Value, args *Args) (Value, error) {
	v, err := args.Expect("pattern")
	if err != nil {
		return nil, err
	}
	pat, err := CastStr(v)
	if err != nil {
		return nil, err
	}
	return noArgs(Bool(strings.Contains(string(recv.(Str)), pat)), args)
}

func strSplit(_ Engine, recv Value, args *Args) (Value, error) {
	s := string(recv.(Str))
	var parts []string
	if v, ok := args.Eat(); ok {
		sep, err := CastStr(v)
		if err != nil {
			return nil, err
		}
		parts = strings.Split(s, sep)
	} else {
		parts = strings.Fields(s)
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = Str(p)
	}
	return noArgs(NewArray(out...), args)
}

func strTrim(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Str(strings.TrimSpace(string(recv.(Str)))), args)
}

func strAt(_ Engine, recv Value, args *Args) (Value, error) {
	index, err := args.ExpectInt("index")
	if err != nil {
		return nil, err
	}
	def, hasDef := args.Named("default")
	if err := args.Finish(); err != nil {
		return nil, err
	}
	runes := []rune(string(recv.(Str)))
	i := index
	if i < 0 {
		i += int64(len(runes))
	}
	if i < 0 || i >= int64(len(runes)) {
		if hasDef {
			return def, nil
		}
		return nil, errorf("string index out of bounds (index: %d, len: %d)", index, utf8.RuneCountInString(string(recv.(Str))))
	}
	return Str(string(runes[i])), nil
}

func contentText(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Str(recv.(Content).PlainText()), args)
}

func contentFields(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(recv.(Content).Fields(), args)
}

func contentFunc(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(NewFunc(recv.(Content).Elem()), args)
}

func argsPos(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(recv.(*Args).Positional(), args)
}

func argsNamed(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(recv.(*Args).NamedDict(), args)
}

func colorToHex(_ Engine, recv Value, args *Args) (Value, error) {
	return noArgs(Str(recv.(Color).Hex()), args)
}
