package bytecode

import "fmt"

// Fixed-width ids. Each indexes one table of a Unit or the register file of
// a frame.
type (
	Register  uint16
	ConstID   uint16
	StringID  uint16
	LabelID   uint16
	AccessID  uint16
	PatternID uint16
	ClosureID uint16
	JumpID    uint16
)

// ReadKind says where a readable operand takes its value from.
type ReadKind uint8

const (
	ReadNone ReadKind = iota
	ReadAuto
	ReadTrue
	ReadFalse
	ReadEmptyStyles
	ReadRegister
	ReadConst
	ReadString
	ReadLabel
	ReadGlobal // library binding; Index is a StringID naming it
)

var readKindNames = [...]string{
	ReadNone:        "none",
	ReadAuto:        "auto",
	ReadTrue:        "true",
	ReadFalse:       "false",
	ReadEmptyStyles: "styles()",
	ReadRegister:    "r",
	ReadConst:       "const",
	ReadString:      "str",
	ReadLabel:       "label",
	ReadGlobal:      "global",
}

// Readable is an operand the VM reads a value from.
type Readable struct {
	Kind  ReadKind
	Index uint16
}

// Readable constructors.
var (
	None        = Readable{Kind: ReadNone}
	Auto        = Readable{Kind: ReadAuto}
	True        = Readable{Kind: ReadTrue}
	False       = Readable{Kind: ReadFalse}
	EmptyStyles = Readable{Kind: ReadEmptyStyles}
)

func (r Register) Readable() Readable { return Readable{Kind: ReadRegister, Index: uint16(r)} }
func (r Register) Writable() Writable { return Writable{Kind: WriteRegister, Index: uint16(r)} }
func (c ConstID) Readable() Readable  { return Readable{Kind: ReadConst, Index: uint16(c)} }
func (s StringID) Readable() Readable { return Readable{Kind: ReadString, Index: uint16(s)} }
func (l LabelID) Readable() Readable  { return Readable{Kind: ReadLabel, Index: uint16(l)} }
func Global(name StringID) Readable   { return Readable{Kind: ReadGlobal, Index: uint16(name)} }
func (r Register) String() string     { return fmt.Sprintf("r%d", uint16(r)) }

// AsRegister returns the register when the operand is one.
func (r Readable) AsRegister() (Register, bool) {
	return Register(r.Index), r.Kind == ReadRegister
}

func (r Readable) String() string {
	if int(r.Kind) >= len(readKindNames) {
		return fmt.Sprintf("?%d", r.Kind)
	}
	switch r.Kind {
	case ReadRegister:
		return fmt.Sprintf("r%d", r.Index)
	case ReadConst, ReadString, ReadLabel, ReadGlobal:
		return fmt.Sprintf("%s[%d]", readKindNames[r.Kind], r.Index)
	}
	return readKindNames[r.Kind]
}

// WriteKind says where a writable operand stores its value.
type WriteKind uint8

const (
	WriteDiscard WriteKind = iota
	WriteRegister
	WriteJoiner
)

// Writable is an operand the VM writes a value into.
type Writable struct {
	Kind  WriteKind
	Index uint16
}

// Writable constructors.
var (
	Discard = Writable{Kind: WriteDiscard}
	Joiner  = Writable{Kind: WriteJoiner}
)

// AsRegister returns the register when the operand is one.
func (w Writable) AsRegister() (Register, bool) {
	return Register(w.Index), w.Kind == WriteRegister
}

func (w Writable) String() string {
	switch w.Kind {
	case WriteRegister:
		return fmt.Sprintf("r%d", w.Index)
	case WriteJoiner:
		return "joiner"
	}
	return "_"
}
