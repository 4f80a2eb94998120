package domain

import (
	"errors"
	"fmt"
)

// ErrMachineNotFound is returned when a loader has no definition for a name.
var ErrMachineNotFound = errors.New("machine not found")

// ErrInvalidMachine wraps every definition consistency failure.
var ErrInvalidMachine = errors.New("invalid machine definition")

// ErrInvalidDepth is returned for a negative step budget, or one above a server limit.
var ErrInvalidDepth = errors.New("invalid max depth")

// ErrInvalidInput is returned for input words outside the input alphabet
// when input checking is strict.
var ErrInvalidInput = errors.New("invalid input word")

// ErrReportNotFound is returned when a report cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrReconstruction signals that the ancestry record and the expanded tree
// disagree. It is an internal invariant violation, never a verdict.
var ErrReconstruction = errors.New("path reconstruction failed")

// ReconstructionError carries the configuration whose parent was missing.
type ReconstructionError struct {
	ID     ConfigID
	Reason string
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("%v: configuration %d: %s", ErrReconstruction, e.ID, e.Reason)
}

func (e *ReconstructionError) Unwrap() error {
	return ErrReconstruction
}

// ValidationError lists every problem found in a machine definition.
type ValidationError struct {
	Machine  string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v '%s': %v", ErrInvalidMachine, e.Machine, e.Problems)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidMachine
}
