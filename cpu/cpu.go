package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"go.uber.org/zap"
)

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
}

// Cpu is the simulation context for a single execution unit.
type Cpu struct {
	Register [REGISTER_COUNT]uint64 // Register bank.
	Pc       uint64                 // Program counter. Not checked against any bound.
	Running  bool                   // Set by Load, cleared by Halt.

	Ticks int // Successfully executed instructions since reset.

	logger *zap.Logger
}

// Option configures a Cpu.
type Option func(cpu *Cpu)

// WithLogger sets the logger used for execution traces.
func WithLogger(logger *zap.Logger) Option {
	return func(cpu *Cpu) {
		cpu.logger = logger
	}
}

// NewCpu creates a new, idle execution unit with zeroed registers.
func NewCpu(opts ...Option) (cpu *Cpu) {
	cpu = &Cpu{
		logger: zap.L(),
	}

	for _, opt := range opts {
		opt(cpu)
	}

	cpu.logger = cpu.logger.Named("cpu")

	return
}

func (cpu *Cpu) log() *zap.Logger {
	if cpu.logger == nil {
		return zap.L()
	}
	return cpu.logger
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %04X_%04X_%04X_%04X\n", "pc",
		cpu.Pc>>48, (cpu.Pc>>32)&0xffff, (cpu.Pc>>16)&0xffff, cpu.Pc&0xffff)
	text += fmt.Sprintf("% 5s: %v\n", "run", cpu.Running)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X_%04X_%04X_%04X\n", fmt.Sprintf("r%d", n),
			val>>48, (val>>32)&0xffff, (val>>16)&0xffff, val&0xffff)
	}

	return
}

// Reset the CPU state.
// - Clears the registers and program counter.
// - Marks the unit as not running.
// - Zeros statistics counters.
func (cpu *Cpu) Reset() {
	cpu.log().Debug("reset")

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Running = false
	cpu.Ticks = 0
}

// Load prepares the unit to run from the start address.
func (cpu *Cpu) Load(start uint64) {
	cpu.log().Debug("load", zap.Uint64("pc", start))

	cpu.Pc = start
	cpu.Running = true
}

// Fetch returns the instruction at the program counter.
func (cpu *Cpu) Fetch(program []Instruction) (inst Instruction, err error) {
	if cpu.Pc >= uint64(len(program)) {
		err = ErrPcEmpty
		return
	}

	inst = program[cpu.Pc]
	return
}

// Tick fetches and executes the instruction at the program counter.
func (cpu *Cpu) Tick(program []Instruction) (err error) {
	inst, err := cpu.Fetch(program)
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	return
}

// Execute executes a single decoded instruction.
// Operands are validated before any state changes, so a failed
// instruction leaves the unit untouched.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	pc := cpu.Pc
	defer func() {
		if err != nil {
			cpu.log().Debug("fault", zap.Uint64("pc", pc), zap.Error(err))
			err = errors.Join(ErrInstruction{Pc: pc, Instruction: inst}, err)
		}
	}()

	if inst == nil {
		err = ErrInstructionInvalid
		return
	}

	cpu.log().Debug("execute", zap.Uint64("pc", pc), zap.Stringer("inst", inst))

	switch inst := inst.(type) {
	case LoadImmediate:
		err = checkRegisters(inst.Reg)
		if err != nil {
			return
		}
		cpu.Register[inst.Reg] = inst.Value
		cpu.Pc++
	case Move:
		err = checkRegisters(inst.Dest, inst.Src)
		if err != nil {
			return
		}
		cpu.Register[inst.Dest] = cpu.Register[inst.Src]
		cpu.Pc++
	case Add:
		err = checkRegisters(inst.Dest, inst.Src)
		if err != nil {
			return
		}
		// uint64 addition wraps.
		cpu.Register[inst.Dest] += cpu.Register[inst.Src]
		cpu.Pc++
	case Jump:
		cpu.Pc = inst.Address
	case Halt:
		cpu.Running = false
	default:
		// Pointers to the variants also satisfy Instruction.
		err = ErrInstructionInvalid
		return
	}

	cpu.Ticks++

	return
}
