package bytecode

import (
	"fmt"
	"strings"

	"github.com/chazu/folio/pkg/value"
)

// Disassemble returns a human-readable listing of the unit and, after it,
// of every closure unit it references.
func (u *Unit) Disassemble() string {
	var sb strings.Builder
	u.disassemble(&sb)
	return sb.String()
}

func (u *Unit) disassemble(sb *strings.Builder) {
	// Header
	name := u.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(sb, "; === %s ===\n", name)
	mode := "code"
	if u.Display {
		mode = "markup"
	}
	fmt.Fprintf(sb, "; Mode: %s, Registers: %d, Hash: %x\n", mode, u.Registers, u.Hash[:6])

	// Parameters
	if len(u.Params) > 0 {
		sb.WriteString("; Parameters:\n")
		for _, p := range u.Params {
			switch p.Kind {
			case ParamPos:
				fmt.Fprintf(sb, ";   %s -> r%d\n", p.Name, p.Register)
			case ParamNamed:
				fmt.Fprintf(sb, ";   %s: %s -> r%d\n", p.Name, p.Default, p.Register)
			case ParamSink:
				fmt.Fprintf(sb, ";   ..%s -> r%d\n", p.Name, p.Register)
			}
		}
	}

	// Captures
	if len(u.Captures) > 0 {
		sb.WriteString("; Captures:\n")
		for _, c := range u.Captures {
			fmt.Fprintf(sb, ";   %s (%s -> r%d)\n", c.Name, c.From, c.To)
		}
	}
	if u.HasSelf {
		fmt.Fprintf(sb, "; Self: r%d\n", u.Self)
	}

	// Constants
	if len(u.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, c := range u.Constants {
			display := value.Repr(c)
			// Truncate long values for readability
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			display = strings.ReplaceAll(display, "\n", "\\n")
			fmt.Fprintf(sb, ";   [%3d] %s\n", i, display)
		}
	}
	if len(u.Strings) > 0 {
		sb.WriteString("; Strings:\n")
		for i, s := range u.Strings {
			fmt.Fprintf(sb, ";   [%3d] %q\n", i, s)
		}
	}

	// Code section
	sb.WriteString("; Code:\n")
	offset := 0
	for offset < len(u.Code) {
		line, n := u.disassembleInstruction(offset)
		fmt.Fprintf(sb, "%04X  %-40s ; %s\n", offset, line, u.SpanAt(offset))
		offset += n
	}
	if len(u.Exports) > 0 {
		sb.WriteString("; Exports:")
		for _, e := range u.Exports {
			fmt.Fprintf(sb, " %s=r%d", e.Name, e.Register)
		}
		sb.WriteString("\n")
	}

	for _, c := range u.Closures {
		sb.WriteString("\n")
		c.disassemble(sb)
	}
}

// DisassembleAt formats the instruction at offset and returns its length.
func (u *Unit) DisassembleAt(offset int) (string, int) {
	return u.disassembleInstruction(offset)
}

// disassembleInstruction disassembles a single instruction at the given offset.
// Returns the formatted string and the instruction length.
func (u *Unit) disassembleInstruction(offset int) (string, int) {
	if offset >= len(u.Code) {
		return "<end of code>", 0
	}

	op := Opcode(u.Code[offset])
	info := GetOpcodeInfo(op)
	r := Reader{Code: u.Code, Pos: offset + 1}
	if r.Pos+op.OperandLen() > len(u.Code) {
		return fmt.Sprintf("%s <truncated>", info.Name), len(u.Code) - offset
	}

	parts := make([]string, 0, len(info.Operands))
	for i, k := range info.Operands {
		switch k {
		case OperandRead:
			parts = append(parts, u.describeReadable(r.Readable()))
		case OperandWrite:
			parts = append(parts, r.Writable().String())
		case OperandU16:
			parts = append(parts, u.describeU16(op, i, r.U16()))
		}
	}
	return strings.TrimSpace(info.Name + " " + strings.Join(parts, ", ")), r.Pos - offset
}

func (u *Unit) describeReadable(rd Readable) string {
	switch rd.Kind {
	case ReadString, ReadGlobal:
		if int(rd.Index) < len(u.Strings) {
			if rd.Kind == ReadGlobal {
				return "global " + u.Strings[rd.Index]
			}
			return fmt.Sprintf("%q", u.Strings[rd.Index])
		}
	case ReadLabel:
		if int(rd.Index) < len(u.Labels) {
			return "<" + u.Labels[rd.Index] + ">"
		}
	case ReadConst:
		if int(rd.Index) < len(u.Constants) {
			return value.Repr(u.Constants[rd.Index])
		}
	}
	return rd.String()
}

// describeU16 names raw operands: string ids are shown as the string, jump
// ids with their target offset, registers with an r prefix.
func (u *Unit) describeU16(op Opcode, i int, v uint16) string {
	str := func() string {
		if int(v) < len(u.Strings) {
			return fmt.Sprintf("%q", u.Strings[v])
		}
		return fmt.Sprintf("str[%d]", v)
	}
	jump := func() string {
		if int(v) < len(u.Jumps) {
			return fmt.Sprintf("@%04X", u.Jumps[v])
		}
		return fmt.Sprintf("jump[%d]", v)
	}
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign:
		return fmt.Sprintf("access[%d]", v)
	case OpAssignField:
		if i == 1 {
			return fmt.Sprintf("access[%d]", v)
		}
		return str()
	case OpDestructure:
		return fmt.Sprintf("pattern[%d]", v)
	case OpArray, OpDict, OpArgs:
		if i == 0 {
			return fmt.Sprintf("cap=%d", v)
		}
		return fmt.Sprintf("r%d", v)
	case OpPush, OpInsert, OpSpread, OpPushArg, OpSpreadArg:
		return fmt.Sprintf("r%d", v)
	case OpInsertArg:
		if i == 0 {
			return str()
		}
		return fmt.Sprintf("r%d", v)
	case OpField, OpCallMethod:
		return str()
	case OpCallMutating:
		if i == 0 {
			return fmt.Sprintf("access[%d]", v)
		}
		return str()
	case OpClosure:
		return fmt.Sprintf("closure[%d]", v)
	case OpJump, OpJumpIf, OpJumpIfNot:
		return jump()
	case OpEnter, OpWhile:
		if i == 0 {
			return jump()
		}
		return fmt.Sprintf("display=%d", v)
	case OpIter:
		switch i {
		case 1:
			return fmt.Sprintf("pattern[%d]", v)
		case 2:
			return jump()
		}
		return fmt.Sprintf("display=%d", v)
	case OpHeading:
		return fmt.Sprintf("level=%d", v)
	case OpReturn:
		return fmt.Sprintf("explicit=%d", v)
	}
	return fmt.Sprintf("%d", v)
}
