package align

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput marks an empty or unparsable cue set. No alignment is
	// possible; callers report it as a structured result, never a crash.
	ErrEmptyInput = errors.New("empty cue set")
	// ErrProvider marks a similarity provider failure. Fatal for the
	// current pair only; batch processing continues with the next pair.
	ErrProvider = errors.New("similarity provider failure")
	// ErrDegenerateData marks inputs too thin for a requested computation,
	// such as a zero-variance regression denominator.
	ErrDegenerateData = errors.New("insufficient data")
)

// Wrap tags err with a sentinel marker and an operation description so
// callers can classify failures with errors.Is.
func Wrap(marker error, op string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, op, err)
	}
	return fmt.Errorf("%w: %s", marker, op)
}
