// Package cpu implements the execution unit and assembler for the regvm system.
//
// The execution unit consists of sixteen 64-bit general-purpose registers
// (r0-r15), a program counter (pc), and a running flag. It executes
// already-decoded instructions from a closed set of five: load, move,
// add, jump and halt. Addition wraps modulo 2^64, and an instruction with
// an invalid register operand is rejected before any state changes.
//
// The assembler provides a small assembly language for the instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
