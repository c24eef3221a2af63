package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Moves and operators (0x00-0x1F)
	// ========================================================================

	OpCopy  Opcode = 0x00 // src:R out:W
	OpPos   Opcode = 0x01 // v:R out:W
	OpNeg   Opcode = 0x02 // v:R out:W
	OpNot   Opcode = 0x03 // v:R out:W
	OpAdd   Opcode = 0x08 // lhs:R rhs:R out:W
	OpSub   Opcode = 0x09 // lhs:R rhs:R out:W
	OpMul   Opcode = 0x0A // lhs:R rhs:R out:W
	OpDiv   Opcode = 0x0B // lhs:R rhs:R out:W
	OpEq    Opcode = 0x10 // lhs:R rhs:R out:W
	OpNeq   Opcode = 0x11 // lhs:R rhs:R out:W
	OpLt    Opcode = 0x12 // lhs:R rhs:R out:W
	OpLeq   Opcode = 0x13 // lhs:R rhs:R out:W
	OpGt    Opcode = 0x14 // lhs:R rhs:R out:W
	OpGeq   Opcode = 0x15 // lhs:R rhs:R out:W
	OpIn    Opcode = 0x16 // lhs:R rhs:R out:W
	OpNotIn Opcode = 0x17 // lhs:R rhs:R out:W

	// ========================================================================
	// Assignment (0x20-0x2F)
	// ========================================================================

	OpAssign      Opcode = 0x20 // v:R target:access
	OpAssignField Opcode = 0x21 // v:R parent:access field:string
	OpAddAssign   Opcode = 0x22 // v:R target:access
	OpSubAssign   Opcode = 0x23 // v:R target:access
	OpMulAssign   Opcode = 0x24 // v:R target:access
	OpDivAssign   Opcode = 0x25 // v:R target:access
	OpDestructure Opcode = 0x26 // v:R pattern:pattern

	// ========================================================================
	// Collections and arguments (0x30-0x3F)
	// ========================================================================

	OpArray     Opcode = 0x30 // capacity:u16 out:reg
	OpPush      Opcode = 0x31 // v:R arr:reg
	OpDict      Opcode = 0x32 // capacity:u16 out:reg
	OpInsert    Opcode = 0x33 // key:R v:R dict:reg
	OpSpread    Opcode = 0x34 // v:R coll:reg
	OpArgs      Opcode = 0x35 // capacity:u16 out:reg
	OpPushArg   Opcode = 0x36 // v:R args:reg
	OpInsertArg Opcode = 0x37 // name:string v:R args:reg
	OpSpreadArg Opcode = 0x38 // v:R args:reg

	// ========================================================================
	// Fields, calls and closures (0x40-0x4F)
	// ========================================================================

	OpField        Opcode = 0x40 // target:R field:string out:W
	OpCall         Opcode = 0x41 // callee:R args:R out:W
	OpCallMethod   Opcode = 0x42 // recv:R method:string args:R out:W
	OpCallMutating Opcode = 0x43 // recv:access method:string args:R out:W
	OpClosure      Opcode = 0x44 // closure:closure out:W

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpJump      Opcode = 0x50 // to:jump
	OpJumpIf    Opcode = 0x51 // cond:R to:jump
	OpJumpIfNot Opcode = 0x52 // cond:R to:jump
	OpEnter     Opcode = 0x53 // end:jump display:u16 out:W
	OpWhile     Opcode = 0x54 // end:jump display:u16 out:W
	OpIter      Opcode = 0x55 // iterable:R pattern:pattern end:jump display:u16 out:W
	OpBreak     Opcode = 0x56
	OpContinue  Opcode = 0x57
	OpReturn    Opcode = 0x58 // explicit:u16 v:R

	// ========================================================================
	// Markup, rules and modules (0x60-0x6F)
	// ========================================================================

	OpSet     Opcode = 0x60 // target:R args:R out:W
	OpShow    Opcode = 0x61 // selector:R transform:R out:W
	OpShowSet Opcode = 0x62 // selector:R target:R args:R out:W
	OpStrong  Opcode = 0x63 // body:R out:W
	OpEmph    Opcode = 0x64 // body:R out:W
	OpHeading Opcode = 0x65 // level:u16 body:R out:W
	OpImport  Opcode = 0x66 // source:R out:W
	OpInclude Opcode = 0x67 // source:R out:W
)

// OperandKind is the encoding of one operand.
type OperandKind uint8

const (
	OperandRead  OperandKind = iota // readable: kind byte + u16
	OperandWrite                    // writable: kind byte + u16
	OperandU16                      // raw u16: id, register or count
)

// Width returns the number of bytes the operand occupies.
func (k OperandKind) Width() int {
	if k == OperandU16 {
		return 2
	}
	return 3
}

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name     string        // Human-readable name
	Operands []OperandKind // Operand layout following the opcode byte
}

const (
	rd  = OperandRead
	wr  = OperandWrite
	n16 = OperandU16
)

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpCopy:  {"COPY", []OperandKind{rd, wr}},
	OpPos:   {"POS", []OperandKind{rd, wr}},
	OpNeg:   {"NEG", []OperandKind{rd, wr}},
	OpNot:   {"NOT", []OperandKind{rd, wr}},
	OpAdd:   {"ADD", []OperandKind{rd, rd, wr}},
	OpSub:   {"SUB", []OperandKind{rd, rd, wr}},
	OpMul:   {"MUL", []OperandKind{rd, rd, wr}},
	OpDiv:   {"DIV", []OperandKind{rd, rd, wr}},
	OpEq:    {"EQ", []OperandKind{rd, rd, wr}},
	OpNeq:   {"NEQ", []OperandKind{rd, rd, wr}},
	OpLt:    {"LT", []OperandKind{rd, rd, wr}},
	OpLeq:   {"LEQ", []OperandKind{rd, rd, wr}},
	OpGt:    {"GT", []OperandKind{rd, rd, wr}},
	OpGeq:   {"GEQ", []OperandKind{rd, rd, wr}},
	OpIn:    {"IN", []OperandKind{rd, rd, wr}},
	OpNotIn: {"NOT_IN", []OperandKind{rd, rd, wr}},

	OpAssign:      {"ASSIGN", []OperandKind{rd, n16}},
	OpAssignField: {"ASSIGN_FIELD", []OperandKind{rd, n16, n16}},
	OpAddAssign:   {"ADD_ASSIGN", []OperandKind{rd, n16}},
	OpSubAssign:   {"SUB_ASSIGN", []OperandKind{rd, n16}},
	OpMulAssign:   {"MUL_ASSIGN", []OperandKind{rd, n16}},
	OpDivAssign:   {"DIV_ASSIGN", []OperandKind{rd, n16}},
	OpDestructure: {"DESTRUCTURE", []OperandKind{rd, n16}},

	OpArray:     {"ARRAY", []OperandKind{n16, n16}},
	OpPush:      {"PUSH", []OperandKind{rd, n16}},
	OpDict:      {"DICT", []OperandKind{n16, n16}},
	OpInsert:    {"INSERT", []OperandKind{rd, rd, n16}},
	OpSpread:    {"SPREAD", []OperandKind{rd, n16}},
	OpArgs:      {"ARGS", []OperandKind{n16, n16}},
	OpPushArg:   {"PUSH_ARG", []OperandKind{rd, n16}},
	OpInsertArg: {"INSERT_ARG", []OperandKind{n16, rd, n16}},
	OpSpreadArg: {"SPREAD_ARG", []OperandKind{rd, n16}},

	OpField:        {"FIELD", []OperandKind{rd, n16, wr}},
	OpCall:         {"CALL", []OperandKind{rd, rd, wr}},
	OpCallMethod:   {"CALL_METHOD", []OperandKind{rd, n16, rd, wr}},
	OpCallMutating: {"CALL_MUTATING", []OperandKind{n16, n16, rd, wr}},
	OpClosure:      {"CLOSURE", []OperandKind{n16, wr}},

	OpJump:      {"JUMP", []OperandKind{n16}},
	OpJumpIf:    {"JUMP_IF", []OperandKind{rd, n16}},
	OpJumpIfNot: {"JUMP_IF_NOT", []OperandKind{rd, n16}},
	OpEnter:     {"ENTER", []OperandKind{n16, n16, wr}},
	OpWhile:     {"WHILE", []OperandKind{n16, n16, wr}},
	OpIter:      {"ITER", []OperandKind{rd, n16, n16, n16, wr}},
	OpBreak:     {"BREAK", nil},
	OpContinue:  {"CONTINUE", nil},
	OpReturn:    {"RETURN", []OperandKind{n16, rd}},

	OpSet:     {"SET", []OperandKind{rd, rd, wr}},
	OpShow:    {"SHOW", []OperandKind{rd, rd, wr}},
	OpShowSet: {"SHOW_SET", []OperandKind{rd, rd, rd, wr}},
	OpStrong:  {"STRONG", []OperandKind{rd, wr}},
	OpEmph:    {"EMPH", []OperandKind{rd, wr}},
	OpHeading: {"HEADING", []OperandKind{n16, rd, wr}},
	OpImport:  {"IMPORT", []OperandKind{rd, wr}},
	OpInclude: {"INCLUDE", []OperandKind{rd, wr}},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	n := 0
	for _, k := range GetOpcodeInfo(op).Operands {
		n += k.Width()
	}
	return n
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsJump returns true if this opcode transfers control within the unit.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpJumpIfNot
}

// IsScope returns true if this opcode runs a nested range of code.
func (op Opcode) IsScope() bool {
	return op >= OpEnter && op <= OpIter
}

// IsFlow returns true if this opcode raises a break, continue or return.
func (op Opcode) IsFlow() bool {
	return op >= OpBreak && op <= OpReturn
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
