package frames

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// identity is shared and must never be written to.
var identity = r3.Eye()

// R1 rotation about the 1st axis.
func R1(x float64) *r3.Mat {
	s, c := math.Sincos(x)
	return r3.NewMat([]float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *r3.Mat {
	s, c := math.Sincos(x)
	return r3.NewMat([]float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *r3.Mat {
	s, c := math.Sincos(x)
	return r3.NewMat([]float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// mul returns the product of the matrices, left to right, in a new matrix.
func mul(ms ...*r3.Mat) *r3.Mat {
	out := r3.NewMat(nil)
	out.CloneFrom(identity)
	for _, m := range ms {
		next := r3.NewMat(nil)
		next.Mul(out, m)
		out = next
	}
	return out
}

// transpose returns mᵀ in a new matrix.
func transpose(m *r3.Mat) *r3.Mat {
	out := r3.NewMat(nil)
	out.CloneFrom(m.T())
	return out
}

// clone returns a copy of m, or of the identity when m is nil.
func clone(m *r3.Mat) *r3.Mat {
	out := r3.NewMat(nil)
	if m == nil {
		out.CloneFrom(identity)
	} else {
		out.CloneFrom(m)
	}
	return out
}
