package errors

import (
	"strings"
	"testing"
)

func TestDimensionMismatchError(t *testing.T) {
	err := NewDimensionMismatchError("Evaluate", 3, 2)

	var dimErr *DimensionMismatchError
	if !As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %T", err)
	}
	if dimErr.Expected != 3 || dimErr.Got != 2 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
	if !strings.Contains(err.Error(), "expected 3, got 2") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestShapeMismatchErrorMessage(t *testing.T) {
	err := NewShapeMismatchError("FromLayers", 2, 4, 5)
	if !strings.Contains(err.Error(), "layer 2") {
		t.Errorf("layer index missing from message: %v", err)
	}

	// Without a layer index the generic form is used.
	err = NewShapeMismatchError("Compose", -1, 4, 5)
	if strings.Contains(err.Error(), "layer") {
		t.Errorf("unexpected layer reference: %v", err)
	}
}

func TestSolverFailureErrorUnwrap(t *testing.T) {
	cause := New("simplex: ill-conditioned basis")
	err := NewSolverFailureError("IsFeasible", 12, cause)

	if !Is(err, cause) {
		t.Error("expected Is to match the wrapped cause")
	}

	var solverErr *SolverFailureError
	if !As(err, &solverErr) {
		t.Fatalf("expected SolverFailureError, got %T", err)
	}
	if solverErr.Constraints != 12 {
		t.Errorf("constraints = %d, want 12", solverErr.Constraints)
	}
}

func TestEmptyTreeError(t *testing.T) {
	err := NewEmptyTreeError("Evaluate")

	var emptyErr *EmptyTreeError
	if !As(err, &emptyErr) {
		t.Fatalf("expected EmptyTreeError, got %T", err)
	}
}

func TestWrapPreservesType(t *testing.T) {
	err := Wrap(NewValueError("PartialReLU", "row out of range"), "building schema")

	var valErr *ValueError
	if !As(err, &valErr) {
		t.Fatalf("wrapping lost the typed error: %v", err)
	}
	if valErr.Op != "PartialReLU" {
		t.Errorf("op = %q, want PartialReLU", valErr.Op)
	}
}
