// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package machine is the host shell for regvm: it owns the execution
// units and the memory region, and tracks a coarse lifecycle state.
//
// The host State and each unit's Running flag are independent. State is
// the host's lifecycle intent, changed only by Start, Stop and Reset.
// Running is the liveness of one unit, set when a program is loaded and
// cleared by a halt instruction. Neither is updated from the other.
package machine

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/memory"
)

// Machine state. Execution units + memory region + lifecycle.
type Machine struct {
	State  State          // Lifecycle state.
	Config Config         // Configuration the machine was built from.
	Memory *memory.Memory // Memory region.
	Cpus   []*cpu.Cpu     // Execution units.

	logger *zap.Logger
}

// Option configures a Machine.
type Option func(m *Machine)

// WithLogger sets the logger for the machine and its units.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a new machine with config.NumCpus idle units and a
// zeroed memory region of config.MemorySize bytes.
// The configuration is not validated; see Config.Validate.
func NewMachine(config Config, opts ...Option) (m *Machine) {
	m = &Machine{
		State:  Created,
		Config: config,
		logger: zap.L(),
	}

	for _, opt := range opts {
		opt(m)
	}

	base := m.logger
	m.logger = base.Named("machine")

	m.Memory = memory.NewMemory(max(config.MemorySize, 0))
	for range max(config.NumCpus, 0) {
		m.Cpus = append(m.Cpus, cpu.NewCpu(cpu.WithLogger(base)))
	}

	m.logger.Debug("created",
		zap.Int("memory_size", m.Memory.Size()),
		zap.Int("num_cpus", len(m.Cpus)),
	)

	return
}

// Units returns the number of execution units.
func (m *Machine) Units() int {
	return len(m.Cpus)
}

// Cpu returns the execution unit by index.
func (m *Machine) Cpu(unit int) (c *cpu.Cpu, err error) {
	if len(m.Cpus) == 0 {
		err = ErrNoUnitsAvailable
		return
	}

	if unit < 0 || unit >= len(m.Cpus) {
		err = fmt.Errorf("%w: %v", ErrUnitInvalid, f("unit %d of %d", unit, len(m.Cpus)))
		return
	}

	c = m.Cpus[unit]
	return
}

// Defines returns an iterator over all of the defines
func (m *Machine) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", m.Memory.Size()),
		"NUM_CPUS":    fmt.Sprintf("%v", len(m.Cpus)),
	}

	seqs := []iter.Seq2[string, string]{maps.All(defines)}
	if len(m.Cpus) != 0 {
		seqs = append(seqs, m.Cpus[0].Defines())
	}

	return internal.IterSeq2Concat(seqs...)
}

// Assemble parses assembly source with the machine defines predefined.
func (m *Machine) Assemble(input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{
		Logger: m.logger.Named("asm"),
	}
	for name, value := range m.Defines() {
		asm.Predefine(name, value)
	}

	prog, err = asm.Parse(input)
	return
}

// transition moves to the target state, or latches Error.
func (m *Machine) transition(to State) (err error) {
	if slices.Contains(transitions[to], m.State) {
		m.logger.Debug("transition", zap.Stringer("from", m.State), zap.Stringer("to", to))
		m.State = to
		return
	}

	err = ErrTransition{From: m.State, To: to}
	m.logger.Warn("transition", zap.Error(err))
	m.State = Error

	return
}

// Start the machine. Legal from Created or Stopped.
func (m *Machine) Start() (err error) {
	err = m.transition(Running)
	if err != nil {
		return
	}

	// Pass the size preformatted so the printer does not group digits.
	m.logger.Info(f("Starting VM with %v bytes of memory", strconv.Itoa(m.Memory.Size())),
		zap.Int("num_cpus", len(m.Cpus)),
	)

	return
}

// Stop the machine. Legal only from Running.
func (m *Machine) Stop() (err error) {
	err = m.transition(Stopped)
	if err != nil {
		return
	}

	m.logger.Info(f("Stopping VM"))

	return
}

// Reset the machine state
// - Resets every execution unit.
// - Zeroes the memory region.
// - Returns to the Created state, clearing a latched Error.
func (m *Machine) Reset() {
	for _, c := range m.Cpus {
		c.Reset()
	}
	m.Memory.Reset()

	m.logger.Debug("reset", zap.Stringer("from", m.State))
	m.State = Created
}

// LoadAndRun points the unit at start, marks it running, then executes
// instructions in order. It stops at the first failing instruction, or
// once the unit is no longer running.
// The instructions run regardless of the machine State.
func (m *Machine) LoadAndRun(unit int, instructions []cpu.Instruction, start uint64) (err error) {
	c, err := m.Cpu(unit)
	if err != nil {
		return
	}

	m.logger.Debug("load and run",
		zap.Int("unit", unit),
		zap.Int("instructions", len(instructions)),
		zap.Uint64("start", start),
	)

	c.Load(start)

	for index, inst := range instructions {
		err = c.Execute(inst)
		if err != nil {
			err = &ErrRuntime{Unit: unit, Index: index, Err: err}
			return
		}
		if !c.Running {
			break
		}
	}

	return
}

// RunProgram points the unit at start, marks it running, then fetches
// and executes the instruction at the program counter until the unit
// halts or the program counter leaves the program. A limit greater than
// zero bounds the number of instructions executed.
func (m *Machine) RunProgram(unit int, program []cpu.Instruction, start uint64, limit int) (err error) {
	c, err := m.Cpu(unit)
	if err != nil {
		return
	}

	m.logger.Debug("run program",
		zap.Int("unit", unit),
		zap.Int("instructions", len(program)),
		zap.Uint64("start", start),
		zap.Int("limit", limit),
	)

	c.Load(start)

	for ticks := 0; c.Running; ticks++ {
		if limit > 0 && ticks >= limit {
			err = &ErrRuntime{Unit: unit, Index: int(c.Pc), Err: ErrTickLimit}
			return
		}

		pc := c.Pc
		err = c.Tick(program)
		if errors.Is(err, cpu.ErrPcEmpty) {
			err = nil
			break
		}
		if err != nil {
			err = &ErrRuntime{Unit: unit, Index: int(pc), Err: err}
			return
		}
	}

	return
}

// String returns the machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("state: %v\n", m.State)
	text += fmt.Sprintf("memory: %d bytes\n", m.Memory.Size())
	for n, c := range m.Cpus {
		text += fmt.Sprintf("unit %d:\n%v", n, c)
	}

	return
}
