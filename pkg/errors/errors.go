// Package errors provides the structured error types used across afftree.
//
// Every construction-time defect (mismatched dimensions, empty trees, solver
// breakdowns) is surfaced as a typed error carrying enough context to locate
// the offending operation. Errors are created with stack traces attached via
// cockroachdb/errors and can be matched with the re-exported Is/As helpers.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// DimensionMismatchError reports that two operands disagree on a vector or
// matrix dimension, e.g. evaluating a tree over R^3 on a point from R^2.
type DimensionMismatchError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("afftree: %s: dimension mismatch: expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionMismatchError")
}

// NewDimensionMismatchError creates a DimensionMismatchError with a stack trace.
func NewDimensionMismatchError(op string, expected, got int) error {
	err := &DimensionMismatchError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// ShapeMismatchError reports that a layer or schema does not fit the running
// tree it is being composed into. Index is the position of the offending
// layer in the stack, or -1 when not applicable.
type ShapeMismatchError struct {
	Op       string
	Index    int
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("afftree: %s: layer %d expects input dimension %d, running tree produces %d", e.Op, e.Index, e.Got, e.Expected)
	}
	return fmt.Sprintf("afftree: %s: shape mismatch: expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ShapeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("layer", e.Index).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "ShapeMismatchError")
}

// NewShapeMismatchError creates a ShapeMismatchError with a stack trace.
func NewShapeMismatchError(op string, index, expected, got int) error {
	err := &ShapeMismatchError{Op: op, Index: index, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// EmptyTreeError reports an operation on a tree without any terminal. Such a
// tree cannot be produced by the public constructors; the guard exists so a
// corrupted tree fails loudly instead of yielding undefined outputs.
type EmptyTreeError struct {
	Op string
}

func (e *EmptyTreeError) Error() string {
	return fmt.Sprintf("afftree: %s: tree has no terminals", e.Op)
}

// NewEmptyTreeError creates an EmptyTreeError with a stack trace.
func NewEmptyTreeError(op string) error {
	err := &EmptyTreeError{Op: op}
	return errors.WithStack(err)
}

// SolverFailureError reports that the feasibility oracle could not decide a
// linear program within its resource budget. Callers must treat the affected
// region as feasible; dropping a branch on a solver failure could silently
// break the exact-equivalence guarantee.
type SolverFailureError struct {
	Op          string
	Constraints int
	Err         error
}

func (e *SolverFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("afftree: %s: feasibility solver failed on %d constraints: %v", e.Op, e.Constraints, e.Err)
	}
	return fmt.Sprintf("afftree: %s: feasibility solver failed on %d constraints", e.Op, e.Constraints)
}

func (e *SolverFailureError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SolverFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("constraints", e.Constraints).
		AnErr("cause", e.Err).
		Str("type", "SolverFailureError")
}

// NewSolverFailureError creates a SolverFailureError with a stack trace.
func NewSolverFailureError(op string, constraints int, cause error) error {
	err := &SolverFailureError{Op: op, Constraints: constraints, Err: cause}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for the operation,
// e.g. a non-positive dimension or a coordinate index out of range.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("afftree: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NewValueErrorf creates a ValueError from a format string.
func NewValueErrorf(op, format string, args ...interface{}) error {
	return NewValueError(op, fmt.Sprintf(format, args...))
}

// ===========================================================================
//
//	cockroachdb/errors re-exports
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyPolytope is returned when an operation needs at least one
	// half-space constraint but the polytope has none.
	ErrEmptyPolytope = New("empty polytope")

	// ErrUnbounded is returned by Chebyshev-center computations on polytopes
	// with unbounded inscribed radius.
	ErrUnbounded = New("unbounded polytope")
)
