// Package bytecode defines the compiled form of modules and closures: the
// operand model, the instruction set and the Unit that bundles code with
// its tables.
//
// # Operands
//
// Instructions reference values through fixed-width operands:
//
//   - Readable: where a value comes from. A register, an entry of one of the
//     unit's tables (constants, strings, labels), a library binding looked up
//     by name, or one of the immediates none, auto, true, false and the
//     empty style list. Encoded as a kind byte and a 16-bit index.
//
//   - Writable: where a result goes. A register, the frame's joiner or
//     nowhere. Encoded the same way.
//
//   - Raw 16-bit operands: table ids (access, pattern, closure, jump,
//     string), registers and small counts.
//
// The layout of every opcode is listed in its OpcodeInfo, which the
// Builder, the disassembler and the evaluator share.
//
// # Tables
//
// Constants, strings, labels, access descriptors, patterns and closures are
// interned through a Remapper. Its structural hash is the SHA-256 of the
// canonical CBOR encoding of the item's key, so two artifacts compiled
// from different source positions collapse to one id. Ids are sequential
// from zero and never reused. A table holds at most 65536 entries;
// overflowing it fails compilation with ErrCapacity.
//
// # Units
//
// A Unit is produced once per module or closure body and is immutable
// afterwards. Registers are allocated monotonically and never recycled.
// Nested scopes (blocks, loops) do not get units of their own: the
// ENTER, WHILE and ITER instructions run the range of code that follows
// them up to their end jump with a fresh joiner.
package bytecode
