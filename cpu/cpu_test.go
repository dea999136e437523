package cpu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))

	assert.Equal([REGISTER_COUNT]uint64{}, cpu.Register)
	assert.Equal(uint64(0), cpu.Pc)
	assert.False(cpu.Running)
	assert.Equal(0, cpu.Ticks)
}

func TestLoadImmediate(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		reg   uint
		value uint64
	}){
		{"r0_zero", 0, 0},
		{"r0_answer", 0, 42},
		{"r7_pattern", 7, 0x0123456789abcdef},
		{"r15_max", 15, math.MaxUint64},
	}

	for _, entry := range table {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
		cpu.Pc = 0x100

		err := cpu.Execute(LoadImmediate{Reg: entry.reg, Value: entry.value})
		assert.NoError(err, entry.name)
		assert.Equal(entry.value, cpu.Register[entry.reg], entry.name)
		assert.Equal(uint64(0x101), cpu.Pc, entry.name)
		assert.Equal(1, cpu.Ticks, entry.name)
	}
}

func TestLoadImmediate_Invalid(t *testing.T) {
	assert := assert.New(t)

	for _, reg := range []uint{16, 17, 255, math.MaxUint} {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
		cpu.Register[0] = 0xaa
		before := *cpu

		err := cpu.Execute(LoadImmediate{Reg: reg, Value: 42})
		assert.ErrorIs(err, ErrRegisterInvalid)

		var bad ErrRegister
		assert.True(errors.As(err, &bad))
		assert.Equal(ErrRegister{reg}, bad)

		assert.Equal(before.Register, cpu.Register)
		assert.Equal(before.Pc, cpu.Pc)
		assert.Equal(before.Ticks, cpu.Ticks)
	}
}

func TestMove(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))

	assert.NoError(cpu.Execute(LoadImmediate{Reg: 0, Value: 42}))
	assert.NoError(cpu.Execute(Move{Dest: 1, Src: 0}))
	assert.Equal(uint64(42), cpu.Register[1])
	assert.Equal(uint64(2), cpu.Pc)

	// By value: later writes to the source do not leak into dest.
	assert.NoError(cpu.Execute(LoadImmediate{Reg: 0, Value: 7}))
	assert.Equal(uint64(42), cpu.Register[1])
	assert.Equal(uint64(7), cpu.Register[0])

	// Self move is a no-op on the register, but still advances pc.
	assert.NoError(cpu.Execute(Move{Dest: 0, Src: 0}))
	assert.Equal(uint64(7), cpu.Register[0])
	assert.Equal(uint64(4), cpu.Pc)
}

func TestMoveAdd_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		inst Instruction
		bad  ErrRegister
	}){
		{"move_dest", Move{Dest: 16, Src: 0}, ErrRegister{16}},
		{"move_src", Move{Dest: 0, Src: 16}, ErrRegister{16}},
		{"move_both", Move{Dest: 20, Src: 30}, ErrRegister{20, 30}},
		{"add_dest", Add{Dest: 99, Src: 1}, ErrRegister{99}},
		{"add_src", Add{Dest: 1, Src: 17}, ErrRegister{17}},
		{"add_both", Add{Dest: 16, Src: 16}, ErrRegister{16, 16}},
	}

	for _, entry := range table {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
		cpu.Register[0] = 1
		cpu.Register[1] = 2
		cpu.Running = true
		before := *cpu

		err := cpu.Execute(entry.inst)
		assert.ErrorIs(err, ErrRegisterInvalid, entry.name)

		var bad ErrRegister
		assert.True(errors.As(err, &bad), entry.name)
		assert.Equal(entry.bad, bad, entry.name)

		var where ErrInstruction
		assert.True(errors.As(err, &where), entry.name)
		assert.Equal(entry.inst, where.Instruction, entry.name)

		assert.Equal(before.Register, cpu.Register, entry.name)
		assert.Equal(before.Pc, cpu.Pc, entry.name)
		assert.True(cpu.Running, entry.name)
	}
}

func TestAdd(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		a, b   uint64
		result uint64
	}){
		{"simple", 42, 58, 100},
		{"zero", 0, 0, 0},
		{"wrap_one", math.MaxUint64, 1, 0},
		{"wrap_max", math.MaxUint64, math.MaxUint64, math.MaxUint64 - 1},
		{"high_bit", 1 << 63, 1 << 63, 0},
	}

	for _, entry := range table {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))

		assert.NoError(cpu.Execute(LoadImmediate{Reg: 3, Value: entry.a}), entry.name)
		assert.NoError(cpu.Execute(LoadImmediate{Reg: 9, Value: entry.b}), entry.name)
		assert.NoError(cpu.Execute(Add{Dest: 3, Src: 9}), entry.name)
		assert.Equal(entry.result, cpu.Register[3], entry.name)
		assert.Equal(entry.b, cpu.Register[9], entry.name)
		assert.Equal(uint64(3), cpu.Pc, entry.name)
	}
}

func TestAdd_Self(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))

	assert.NoError(cpu.Execute(LoadImmediate{Reg: 5, Value: 21}))
	assert.NoError(cpu.Execute(Add{Dest: 5, Src: 5}))
	assert.Equal(uint64(42), cpu.Register[5])
}

func TestJump(t *testing.T) {
	assert := assert.New(t)

	for _, address := range []uint64{0, 42, 0x1000, math.MaxUint64} {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
		cpu.Pc = 7

		assert.NoError(cpu.Execute(Jump{Address: address}))
		assert.Equal(address, cpu.Pc)
	}
}

func TestHalt(t *testing.T) {
	assert := assert.New(t)

	for _, running := range []bool{true, false} {
		cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
		cpu.Running = running
		cpu.Pc = 0x33

		assert.NoError(cpu.Execute(Halt{}))
		assert.False(cpu.Running)
		assert.Equal(uint64(0x33), cpu.Pc)
	}
}

func TestExecute_Invalid(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))

	assert.ErrorIs(cpu.Execute(nil), ErrInstructionInvalid)
	assert.ErrorIs(cpu.Execute(&LoadImmediate{Reg: 0, Value: 1}), ErrInstructionInvalid)
	assert.Equal(uint64(0), cpu.Register[0])
	assert.Equal(uint64(0), cpu.Pc)
	assert.Equal(0, cpu.Ticks)
}

func TestProgramSequence(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
	cpu.Load(0)

	program := []Instruction{
		LoadImmediate{Reg: 0, Value: 30},
		LoadImmediate{Reg: 1, Value: 12},
		Add{Dest: 0, Src: 1},
		Move{Dest: 2, Src: 0},
		Halt{},
	}

	for _, inst := range program {
		assert.NoError(cpu.Execute(inst))
	}

	assert.Equal(uint64(42), cpu.Register[2])
	assert.False(cpu.Running)
	assert.Equal(uint64(4), cpu.Pc)
	assert.Equal(5, cpu.Ticks)
}

func TestTick(t *testing.T) {
	assert := assert.New(t)

	program := []Instruction{
		LoadImmediate{Reg: 0, Value: 1}, // 0
		Jump{Address: 3},                // 1
		LoadImmediate{Reg: 0, Value: 2}, // 2: skipped
		Halt{},                          // 3
	}

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
	cpu.Load(0)

	for cpu.Running {
		assert.NoError(cpu.Tick(program))
	}

	assert.Equal(uint64(1), cpu.Register[0])
	assert.Equal(uint64(3), cpu.Pc)
	assert.Equal(3, cpu.Ticks)

	cpu.Pc = uint64(len(program))
	assert.ErrorIs(cpu.Tick(program), ErrPcEmpty)
	assert.Equal(3, cpu.Ticks)
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
	cpu.Load(0x40)
	assert.NoError(cpu.Execute(LoadImmediate{Reg: 4, Value: 4}))

	cpu.Reset()
	assert.Equal([REGISTER_COUNT]uint64{}, cpu.Register)
	assert.Equal(uint64(0), cpu.Pc)
	assert.False(cpu.Running)
	assert.Equal(0, cpu.Ticks)
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(WithLogger(zaptest.NewLogger(t)))
	cpu.Register[2] = 42
	cpu.Pc = 0x1_0000_0001

	text := cpu.String()
	assert.Contains(text, "   pc: 0000_0001_0000_0001\n")
	assert.Contains(text, "  run: false\n")
	assert.Contains(text, "   r2: 0000_0000_0000_002A\n")
	assert.Contains(text, "  r15: 0000_0000_0000_0000\n")
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("load r0 0x1e", LoadImmediate{Reg: 0, Value: 30}.String())
	assert.Equal("move r2 r0", Move{Dest: 2, Src: 0}.String())
	assert.Equal("add r0 r1", Add{Dest: 0, Src: 1}.String())
	assert.Equal("jump 0x2a", Jump{Address: 42}.String())
	assert.Equal("halt", Halt{}.String())
	assert.Equal("Op(9)", Op(9).String())
}
