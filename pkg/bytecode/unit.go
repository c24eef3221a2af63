package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/value"
)

// ---------------------------------------------------------------------------
// Descriptors
// ---------------------------------------------------------------------------

// AccessKind distinguishes access descriptors.
type AccessKind uint8

const (
	AccessRegister AccessKind = iota // a local variable
	AccessGlobal                     // a library binding, never writable
	AccessTemp                       // a computed value, never writable
	AccessField                      // Parent.Name
	AccessMethod                     // Parent.Name(Value), an accessor method
)

// Access describes how to reach a storage location from an expression.
type Access struct {
	Kind     AccessKind
	Register Register
	Name     StringID
	Parent   AccessID
	Value    Readable // AccessTemp: the value; AccessMethod: the arguments
}

// PatternKind distinguishes patterns.
type PatternKind uint8

const (
	PatternSingle PatternKind = iota
	PatternPlaceholder
	PatternDestructure
)

// ItemKind distinguishes items of a destructuring pattern.
type ItemKind uint8

const (
	ItemPos ItemKind = iota
	ItemNamed
	ItemSpread
)

// PatternItem is one item of a destructuring pattern. Named items read Key
// from a dictionary. Positional items whose pattern is a plain variable
// carry its name in Key so they can also destructure dictionaries. Spread
// items without a sink have HasPattern unset.
type PatternItem struct {
	Kind       ItemKind
	Key        StringID
	HasKey     bool
	Pattern    PatternID
	HasPattern bool
}

// Pattern is the target of a binding or destructuring assignment. Single
// patterns write through an access descriptor, so let bindings and
// assignments share one path.
type Pattern struct {
	Kind   PatternKind
	Access AccessID
	Items  []PatternItem
}

// ParamKind distinguishes closure parameters.
type ParamKind uint8

const (
	ParamPos ParamKind = iota
	ParamNamed
	ParamSink
)

// Param describes one closure parameter. Default is read in the frame that
// creates the closure. A sink without a name swallows its arguments.
type Param struct {
	Kind       ParamKind
	Name       string
	Register   Register
	Pattern    PatternID
	HasPattern bool
	Default    Readable
}

// Capture copies a value from the creating frame into the closure's frame.
type Capture struct {
	Name string
	From Readable
	To   Register
}

// Export is a top-level binding of a module unit.
type Export struct {
	Name     string
	Register Register
}

// SpanEntry maps an instruction offset to its source span.
type SpanEntry struct {
	Offset int
	Span   ast.Span
}

// ---------------------------------------------------------------------------
// Unit
// ---------------------------------------------------------------------------

// Unit is a compiled module or closure body. It is immutable once built
// and may be executed by any number of frames concurrently.
type Unit struct {
	Name      string
	Span      ast.Span
	Display   bool // joins in display mode
	Code      []byte
	Spans     []SpanEntry
	Registers int

	Constants []value.Value
	Strings   []string
	Labels    []string
	Accesses  []Access
	Patterns  []Pattern
	Closures  []*Unit
	Jumps     []int

	Params   []Param
	Captures []Capture
	HasSelf  bool
	Self     Register
	Exports  []Export

	Hash [32]byte
}

// SpanAt returns the span of the instruction at offset.
func (u *Unit) SpanAt(offset int) ast.Span {
	i := sort.Search(len(u.Spans), func(i int) bool { return u.Spans[i].Offset > offset })
	if i == 0 {
		return u.Span
	}
	return u.Spans[i-1].Span
}

// Reader decodes operands from the code of a unit.
type Reader struct {
	Code []byte
	Pos  int
}

// U16 decodes a raw 16-bit operand.
func (r *Reader) U16() uint16 {
	v := binary.LittleEndian.Uint16(r.Code[r.Pos:])
	r.Pos += 2
	return v
}

// Readable decodes a readable operand.
func (r *Reader) Readable() Readable {
	k := ReadKind(r.Code[r.Pos])
	r.Pos++
	return Readable{Kind: k, Index: r.U16()}
}

// Writable decodes a writable operand.
func (r *Reader) Writable() Writable {
	k := WriteKind(r.Code[r.Pos])
	r.Pos++
	return Writable{Kind: k, Index: r.U16()}
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

// Operand is an encodable instruction operand.
type Operand interface {
	operandKind() OperandKind
	appendTo(dst []byte) []byte
}

// U16 is a raw count or flag operand.
type U16 uint16

func appendU16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func (Readable) operandKind() OperandKind  { return OperandRead }
func (Writable) operandKind() OperandKind  { return OperandWrite }
func (U16) operandKind() OperandKind       { return OperandU16 }
func (Register) operandKind() OperandKind  { return OperandU16 }
func (StringID) operandKind() OperandKind  { return OperandU16 }
func (AccessID) operandKind() OperandKind  { return OperandU16 }
func (PatternID) operandKind() OperandKind { return OperandU16 }
func (ClosureID) operandKind() OperandKind { return OperandU16 }
func (JumpID) operandKind() OperandKind    { return OperandU16 }

func (r Readable) appendTo(dst []byte) []byte  { return appendU16(append(dst, byte(r.Kind)), r.Index) }
func (w Writable) appendTo(dst []byte) []byte  { return appendU16(append(dst, byte(w.Kind)), w.Index) }
func (v U16) appendTo(dst []byte) []byte       { return appendU16(dst, uint16(v)) }
func (v Register) appendTo(dst []byte) []byte  { return appendU16(dst, uint16(v)) }
func (v StringID) appendTo(dst []byte) []byte  { return appendU16(dst, uint16(v)) }
func (v AccessID) appendTo(dst []byte) []byte  { return appendU16(dst, uint16(v)) }
func (v PatternID) appendTo(dst []byte) []byte { return appendU16(dst, uint16(v)) }
func (v ClosureID) appendTo(dst []byte) []byte { return appendU16(dst, uint16(v)) }
func (v JumpID) appendTo(dst []byte) []byte    { return appendU16(dst, uint16(v)) }

// Builder assembles a Unit. Table overflows are sticky: the failing call
// returns id zero and Finish reports the first error.
type Builder struct {
	unit      *Unit
	constants *Remapper[value.Value]
	strings   *Remapper[string]
	labels    *Remapper[string]
	accesses  *Remapper[Access]
	patterns  *Remapper[Pattern]
	closures  *Remapper[*Unit]
	err       error
}

// NewBuilder starts a unit.
func NewBuilder(name string, span ast.Span, display bool) *Builder {
	return &Builder{
		unit:      &Unit{Name: name, Span: span, Display: display, Code: make([]byte, 0, 64)},
		constants: NewRemapper(value.Key),
		strings:   NewRemapper(func(s string) any { return s }),
		labels:    NewRemapper(func(s string) any { return s }),
		accesses:  NewRemapper(func(a Access) any { return a }),
		patterns:  NewRemapper(func(p Pattern) any { return p }),
		closures:  NewRemapper(func(u *Unit) any { return u.Hash[:] }),
	}
}

// Err returns the first table error.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func insert[T any](b *Builder, r *Remapper[T], item T) uint16 {
	id, err := r.Insert(item)
	if err != nil {
		b.fail(err)
	}
	return id
}

// Register allocates a fresh register. Registers are never reused.
func (b *Builder) Register() Register {
	if b.unit.Registers > math.MaxUint16 {
		b.fail(fmt.Errorf("too many registers: %w", ErrCapacity))
		return 0
	}
	r := Register(b.unit.Registers)
	b.unit.Registers++
	return r
}

// Registers returns the number of registers allocated so far.
func (b *Builder) Registers() int { return b.unit.Registers }

func (b *Builder) Const(v value.Value) ConstID       { return ConstID(insert(b, b.constants, v)) }
func (b *Builder) Str(s string) StringID             { return StringID(insert(b, b.strings, s)) }
func (b *Builder) Label(s string) LabelID            { return LabelID(insert(b, b.labels, s)) }
func (b *Builder) Access(a Access) AccessID          { return AccessID(insert(b, b.accesses, a)) }
func (b *Builder) Pattern(p Pattern) PatternID       { return PatternID(insert(b, b.patterns, p)) }
func (b *Builder) Closure(u *Unit) ClosureID         { return ClosureID(insert(b, b.closures, u)) }
func (b *Builder) AddParam(p Param)                  { b.unit.Params = append(b.unit.Params, p) }
func (b *Builder) AddCapture(c Capture)              { b.unit.Captures = append(b.unit.Captures, c) }
func (b *Builder) AddExport(name string, r Register) { b.unit.Exports = append(b.unit.Exports, Export{name, r}) }

// SetSelf installs the register holding the closure itself.
func (b *Builder) SetSelf(r Register) {
	b.unit.HasSelf = true
	b.unit.Self = r
}

// Jump creates an unresolved jump target.
func (b *Builder) Jump() JumpID {
	if len(b.unit.Jumps) > math.MaxUint16 {
		b.fail(fmt.Errorf("too many jumps: %w", ErrCapacity))
		return 0
	}
	b.unit.Jumps = append(b.unit.Jumps, -1)
	return JumpID(len(b.unit.Jumps) - 1)
}

// Mark resolves j to the current end of the code.
func (b *Builder) Mark(j JumpID) {
	b.unit.Jumps[j] = len(b.unit.Code)
}

// Emit appends an instruction. The operands must match the opcode's
// layout; a mismatch is a compiler bug and panics.
func (b *Builder) Emit(span ast.Span, op Opcode, operands ...Operand) {
	info, ok := opcodeInfoTable[op]
	if !ok || len(info.Operands) != len(operands) {
		panic(fmt.Sprintf("bytecode: bad operand count for %s", op))
	}
	offset := len(b.unit.Code)
	code := append(b.unit.Code, byte(op))
	for i, o := range operands {
		if o.operandKind() != info.Operands[i] {
			panic(fmt.Sprintf("bytecode: operand %d of %s has the wrong kind", i, op))
		}
		code = o.appendTo(code)
	}
	b.unit.Code = code
	if n := len(b.unit.Spans); n == 0 || b.unit.Spans[n-1].Span != span {
		b.unit.Spans = append(b.unit.Spans, SpanEntry{Offset: offset, Span: span})
	}
}

// Finish seals the unit and computes its structural hash.
func (b *Builder) Finish() (*Unit, error) {
	if b.err != nil {
		return nil, b.err
	}
	u := b.unit
	for i, target := range u.Jumps {
		if target < 0 {
			panic(fmt.Sprintf("bytecode: jump %d of %s never marked", i, u.Name))
		}
	}
	u.Constants = b.constants.Values()
	u.Strings = b.strings.Values()
	u.Labels = b.labels.Values()
	u.Accesses = b.accesses.Values()
	u.Patterns = b.patterns.Values()
	u.Closures = b.closures.Values()

	h, err := Digest(unitKey(u))
	if err != nil {
		return nil, err
	}
	u.Hash = h
	b.unit = nil
	return u, nil
}

// unitKey is the structural identity of a unit. Spans and the name are
// left out, so identical bodies compiled at different positions share a
// hash.
func unitKey(u *Unit) any {
	consts := make([]any, len(u.Constants))
	for i, c := range u.Constants {
		consts[i] = value.Key(c)
	}
	closures := make([]any, len(u.Closures))
	for i, c := range u.Closures {
		closures[i] = c.Hash[:]
	}
	return []any{
		u.Display, u.Code, u.Registers, consts, u.Strings, u.Labels,
		u.Accesses, u.Patterns, closures, u.Jumps, u.Params, u.Captures,
		u.HasSelf, u.Self, u.Exports,
	}
}
