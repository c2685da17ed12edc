package imageutil

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an argument outside the accepted range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKernel reports an empty, ragged or (where required) non-square kernel.
	ErrInvalidKernel = fmt.Errorf("%w: invalid kernel", ErrInvalidArgument)

	// ErrShapeMismatch reports two operands whose width or height differ.
	ErrShapeMismatch = fmt.Errorf("%w: shape mismatch", ErrInvalidArgument)

	// ErrLoad wraps every failure to open or decode an image.
	ErrLoad = errors.New("failed to load image")

	// ErrSave wraps every failure to encode or write an image.
	ErrSave = errors.New("failed to save image")
)

// checkShape returns ErrShapeMismatch naming op when a and b differ in size.
func checkShape(op string, a, b *Buffer) error {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return fmt.Errorf("%s: %w: %dx%d vs %dx%d", op, ErrShapeMismatch,
			a.Width(), a.Height(), b.Width(), b.Height())
	}
	return nil
}
