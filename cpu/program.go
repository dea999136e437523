package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instruction.
type Opcode struct {
	LineNo      int
	Pc          uint64
	Words       []string
	Instruction Instruction
	LinkLabel   string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Debug returns the opcode located at pc, or nil.
func (prog *Program) Debug(pc uint64) (op *Opcode) {
	for n := range prog.Opcodes {
		if prog.Opcodes[n].Pc == pc {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// All iterates over the instructions of the program by address.
func (prog *Program) All() iter.Seq2[uint64, Instruction] {
	return func(yield func(pc uint64, inst Instruction) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Pc, op.Instruction) {
				return
			}
		}
	}
}

// Instructions returns the decoded instruction sequence, indexed by pc.
func (prog *Program) Instructions() (insts []Instruction) {
	insts = make([]Instruction, 0, len(prog.Opcodes))
	for _, inst := range prog.All() {
		insts = append(insts, inst)
	}

	return
}
