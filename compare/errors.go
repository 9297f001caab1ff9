package compare

import (
	"errors"
	"fmt"
)

// ErrMismatch matches every comparison failure through errors.Is
var ErrMismatch = errors.New("pixel data does not match reference")

// LengthMismatchError reports buffers of different length
type LengthMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("reference length does not match: reference has %d bytes, decoded data has %d bytes",
		e.Expected, e.Actual)
}

// Is reports whether target is ErrMismatch
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// ContentMismatchError reports the first differing block of equal-length buffers
type ContentMismatchError struct {
	Offset    int64
	BlockSize int
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("data does not match reference: first differing block starts at byte %d (block size %d)",
		e.Offset, e.BlockSize)
}

// Is reports whether target is ErrMismatch
func (e *ContentMismatchError) Is(target error) bool {
	return target == ErrMismatch
}
