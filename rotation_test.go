package frames

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestR1R2R3(t *testing.T) {
	x := math.Pi / 3.0
	s, c := math.Sincos(x)
	r1 := R1(x)
	r2 := R2(x)
	r3m := R3(x)
	// Test items equal to 1.
	if r1.At(0, 0) != r2.At(1, 1) || r1.At(0, 0) != r3m.At(2, 2) || r3m.At(2, 2) != 1 {
		t.Fatal("expected R1.At(0, 0) = R2.At(1, 1) = R3.At(2, 2) = 1")
	}
	// Test items equal to 0.
	if r1.At(0, 1) != r1.At(0, 2) || r1.At(1, 0) != r1.At(2, 0) || r1.At(0, 1) != 0 {
		t.Fatal("misplaced zeros in R1")
	}
	if r2.At(0, 1) != r2.At(1, 2) || r2.At(1, 0) != r2.At(1, 2) || r2.At(1, 2) != 0 {
		t.Fatal("misplaced zeros in R2")
	}
	if r3m.At(2, 0) != r3m.At(2, 1) || r3m.At(0, 2) != r3m.At(1, 2) || r3m.At(1, 2) != 0 {
		t.Fatal("misplaced zeros in R3")
	}
	if r1.At(1, 1) != r1.At(2, 2) || r1.At(2, 2) != c {
		t.Fatal("expected R1 cosines misplaced")
	}
	if r1.At(2, 1) != -r1.At(1, 2) || r1.At(1, 2) != s {
		t.Fatal("expected R1 sines misplaced")
	}
	if r2.At(0, 0) != r2.At(2, 2) || r2.At(2, 2) != c {
		t.Fatal("expected R2 cosines misplaced")
	}
	if r2.At(2, 0) != -r2.At(0, 2) || r2.At(2, 0) != s {
		t.Fatal("expected R2 sines misplaced")
	}
	if r3m.At(1, 1) != r3m.At(0, 0) || r3m.At(0, 0) != c {
		t.Fatal("expected R3 cosines misplaced")
	}
	if r3m.At(0, 1) != -r3m.At(1, 0) || r3m.At(0, 1) != s {
		t.Fatal("expected R3 sines misplaced")
	}
}

func TestPassiveRotation(t *testing.T) {
	// Rotating the axes by +90° about z sees the x axis along -y.
	got := R3(math.Pi / 2).MulVec(r3.Vec{X: 1})
	if !vecEqualWithin(got, r3.Vec{Y: -1}, 1e-15) {
		t.Fatalf("R3(π/2)·x = %v", got)
	}
}

func TestMulTranspose(t *testing.T) {
	m := mul(R1(0.3), R2(-1.1), R3(2.7))
	if !isRotation(m, 1e-14) {
		t.Fatal("product of rotations should be a rotation")
	}
	if !mat.EqualApprox(mul(m, transpose(m)), identity, 1e-14) {
		t.Fatal("m·mᵀ != I")
	}
	if mul().At(1, 1) != 1 || mul().At(0, 1) != 0 {
		t.Fatal("empty product should be the identity")
	}
	c := clone(m)
	c.Set(0, 0, 42)
	if m.At(0, 0) == 42 {
		t.Fatal("clone shares storage")
	}
}
