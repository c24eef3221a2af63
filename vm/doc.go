// Package vm executes compiled units.
//
// The evaluator is a register machine. Every invocation of a unit gets a
// frame with a flat register file sized by the compiler; instructions read
// operands from registers, constant tables or the library, and write their
// result to a register, the frame's joiner or nowhere.
//
// Nested scopes do not get frames of their own. ENTER, WHILE and ITER run
// a sub-range of the unit's code with a fresh joiner and report control
// flow (break, continue, return) to the range that started them.
//
// Reading a register clones the value in it. Containers are copy-on-write,
// so the clone is cheap and a later mutation through the clone never shows
// through the register it was read from.
package vm
