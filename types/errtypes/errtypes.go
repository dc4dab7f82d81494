// Package errtypes contains custom error types
package errtypes

import (
	"fmt"
)

type ShapeMismatchError struct {
	Op   string
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %v, got %v", e.Op, e.Want, e.Got)
}

type TypeMismatchError struct {
	Op   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: invalid for %s storage, want %s", e.Op, e.Got, e.Want)
}

type UnsupportedInputError struct {
	Op     string
	Reason string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("%s: unsupported input: %s", e.Op, e.Reason)
}
