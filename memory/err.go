package memory

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrOutOfBounds = errors.New(f("address out of bounds"))
)

// ErrAddress reports an access outside of the memory region.
type ErrAddress struct {
	Address uint64 // First offending address.
	Size    int    // Size of the region.
}

func (err ErrAddress) Error() string {
	return f("address 0x%x out of bounds (size 0x%x)", err.Address, err.Size)
}

func (err ErrAddress) Is(target error) bool {
	return target == ErrOutOfBounds
}
