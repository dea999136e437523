package cpu

import (
	"fmt"
)

// REGISTER_COUNT is the number of general-purpose registers.
const REGISTER_COUNT = 16

// Op identifies an instruction variant.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_LOAD = Op(0) // load
	OP_MOVE = Op(1) // move
	OP_ADD  = Op(2) // add
	OP_JUMP = Op(3) // jump
	OP_HALT = Op(4) // halt
)

// Instruction is a single decoded operation for the execution unit.
//
// The set of instructions is closed: only the types in this file
// implement it.
type Instruction interface {
	fmt.Stringer
	// Op returns the variant of the instruction.
	Op() Op
	instruction()
}

// LoadImmediate sets register Reg to Value.
type LoadImmediate struct {
	Reg   uint
	Value uint64
}

// Move copies register Src to register Dest.
type Move struct {
	Dest uint
	Src  uint
}

// Add sets register Dest to the sum of registers Dest and Src, modulo 2^64.
type Add struct {
	Dest uint
	Src  uint
}

// Jump sets the program counter to Address.
type Jump struct {
	Address uint64
}

// Halt stops the execution unit.
type Halt struct{}

var (
	_ Instruction = LoadImmediate{}
	_ Instruction = Move{}
	_ Instruction = Add{}
	_ Instruction = Jump{}
	_ Instruction = Halt{}
)

func (LoadImmediate) Op() Op { return OP_LOAD }
func (Move) Op() Op          { return OP_MOVE }
func (Add) Op() Op           { return OP_ADD }
func (Jump) Op() Op          { return OP_JUMP }
func (Halt) Op() Op          { return OP_HALT }

func (LoadImmediate) instruction() {}
func (Move) instruction()          {}
func (Add) instruction()           {}
func (Jump) instruction()          {}
func (Halt) instruction()          {}

// String returns the assembly language representation of this instruction.
func (inst LoadImmediate) String() string {
	return fmt.Sprintf("%v r%d %#x", inst.Op(), inst.Reg, inst.Value)
}

// String returns the assembly language representation of this instruction.
func (inst Move) String() string {
	return fmt.Sprintf("%v r%d r%d", inst.Op(), inst.Dest, inst.Src)
}

// String returns the assembly language representation of this instruction.
func (inst Add) String() string {
	return fmt.Sprintf("%v r%d r%d", inst.Op(), inst.Dest, inst.Src)
}

// String returns the assembly language representation of this instruction.
func (inst Jump) String() string {
	return fmt.Sprintf("%v %#x", inst.Op(), inst.Address)
}

// String returns the assembly language representation of this instruction.
func (inst Halt) String() string {
	return inst.Op().String()
}

// checkRegisters returns an ErrRegister naming every register out of range.
func checkRegisters(regs ...uint) (err error) {
	var bad ErrRegister
	for _, reg := range regs {
		if reg >= REGISTER_COUNT {
			bad = append(bad, reg)
		}
	}

	if len(bad) != 0 {
		err = bad
	}

	return
}
