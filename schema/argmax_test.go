package schema

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestArgmaxScenario(t *testing.T) {
	tr, err := Argmax(3)
	if err != nil {
		t.Fatal(err)
	}

	if y := evalAt(t, tr, 1, 5, 2); y[0] != 1 {
		t.Errorf("argmax(1,5,2) = %v, want 1", y[0])
	}

	// Exact ties break to the lowest index, deterministically.
	first := evalAt(t, tr, 3, 3, 3)[0]
	if first != 0 {
		t.Errorf("argmax(3,3,3) = %v, want 0", first)
	}
	for trial := 0; trial < 10; trial++ {
		if y := evalAt(t, tr, 3, 3, 3); y[0] != first {
			t.Fatal("tie-break not deterministic across calls")
		}
	}
}

func TestArgmaxMatchesBruteForce(t *testing.T) {
	tr, err := Argmax(4)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		x := make([]float64, 4)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		want := 0
		for i := 1; i < 4; i++ {
			if x[i] > x[want] {
				want = i
			}
		}
		if y := evalAt(t, tr, x...); int(y[0]) != want {
			t.Fatalf("argmax(%v) = %v, want %d", x, y[0], want)
		}
	}
}

func TestArgmaxSingleCoordinate(t *testing.T) {
	tr, err := Argmax(1)
	if err != nil {
		t.Fatal(err)
	}
	if y := evalAt(t, tr, 42); y[0] != 0 {
		t.Errorf("argmax over R^1 = %v, want 0", y[0])
	}
}

func TestClassChar(t *testing.T) {
	tr, err := ClassChar(3, 1)
	if err != nil {
		t.Fatal(err)
	}

	if y := evalAt(t, tr, 1, 5, 2); y[0] != 1 {
		t.Error("winning class not characterized")
	}
	if y := evalAt(t, tr, 5, 1, 2); y[0] != 0 {
		t.Error("losing class characterized")
	}
	// A tie with the target class still counts as membership.
	if y := evalAt(t, tr, 5, 5, 2); y[0] != 1 {
		t.Error("tied class not characterized")
	}
}

func TestInfNorm(t *testing.T) {
	tr, err := InfNorm(2, 1.5)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		x    []float64
		want float64
	}{
		{[]float64{0, 0}, 1},
		{[]float64{1.5, -1.5}, 1},
		{[]float64{1.6, 0}, 0},
		{[]float64{0, -2}, 0},
	}
	for _, c := range cases {
		if y := evalAt(t, tr, c.x...); y[0] != c.want {
			t.Errorf("inf-norm test at %v = %v, want %v", c.x, y[0], c.want)
		}
	}
}

func TestInfNormBallOffCenter(t *testing.T) {
	center := mat.NewVecDense(2, []float64{2, -1})
	tr, err := InfNormBall(2, center, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	if y := evalAt(t, tr, 2.2, -1.2); y[0] != 1 {
		t.Error("interior point rejected")
	}
	if y := evalAt(t, tr, 2.6, -1); y[0] != 0 {
		t.Error("exterior point accepted")
	}

	if _, err := InfNormBall(2, center, -1); err == nil {
		t.Error("expected error for negative radius")
	}
	if _, err := InfNormBall(3, center, 1); err == nil {
		t.Error("expected error for center dimension mismatch")
	}
}
