package systems

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrInvariant   = errors.New("invariant violation")
)

// BoundsError reports a position or linear index outside the grid.
type BoundsError struct {
	Op      string
	Row     int
	Col     int
	Index   int
	ByIndex bool // true when Index was the offending input
	Height  int
	Width   int
}

func (e *BoundsError) Error() string {
	if e.ByIndex {
		return fmt.Sprintf("%s: index %d outside grid of %d cells", e.Op, e.Index, e.Height*e.Width)
	}
	return fmt.Sprintf("%s: position (%d,%d) outside %dx%d grid", e.Op, e.Row, e.Col, e.Height, e.Width)
}

// Is makes errors.Is(err, ErrOutOfBounds) succeed.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// InvariantViolation reports grid state or input that breaks a structural rule.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Op, e.Detail)
}

// Is makes errors.Is(err, ErrInvariant) succeed.
func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariant
}

func invariantf(op, format string, args ...any) error {
	return &InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)}
}
