// Package memory provides the flat, byte addressable memory region owned
// by a regvm host.
package memory

import (
	"bytes"
	"fmt"
)

// Memory is a fixed size, zero initialized byte array.
type Memory struct {
	Data []byte
}

// NewMemory creates a zeroed memory region of size bytes.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, size),
	}

	return
}

// Size returns the length of the region in bytes.
func (mem *Memory) Size() int {
	return len(mem.Data)
}

// Reset zeroes the region.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

// check returns an error unless [address, address+length) is inside the region.
func (mem *Memory) check(address uint64, length int) (err error) {
	size := uint64(len(mem.Data))
	if address >= size || uint64(length) > size-address {
		err = ErrAddress{Address: address, Size: len(mem.Data)}
	}
	return
}

// Read returns the byte at address.
func (mem *Memory) Read(address uint64) (value byte, err error) {
	err = mem.check(address, 1)
	if err != nil {
		return
	}

	value = mem.Data[address]
	return
}

// Write stores value at address.
func (mem *Memory) Write(address uint64, value byte) (err error) {
	err = mem.check(address, 1)
	if err != nil {
		return
	}

	mem.Data[address] = value
	return
}

// Load copies data into the region starting at address.
// Nothing is written unless all of data fits.
func (mem *Memory) Load(address uint64, data []byte) (err error) {
	if len(data) == 0 {
		return
	}

	err = mem.check(address, len(data))
	if err != nil {
		return
	}

	copy(mem.Data[address:], data)
	return
}

// Dump returns a copy of length bytes starting at address.
func (mem *Memory) Dump(address uint64, length int) (data []byte, err error) {
	if length == 0 {
		data = []byte{}
		return
	}

	err = mem.check(address, length)
	if err != nil {
		return
	}

	data = bytes.Clone(mem.Data[address : address+uint64(length)])
	return
}

// String returns a hex dump of the 16 byte rows holding non-zero data.
func (mem *Memory) String() (text string) {
	const row = 16

	zero := make([]byte, row)
	for base := 0; base < len(mem.Data); base += row {
		line := mem.Data[base:min(base+row, len(mem.Data))]
		if bytes.Equal(line, zero[:len(line)]) {
			continue
		}
		text += fmt.Sprintf("%08x: % x\n", base, line)
	}

	return
}
