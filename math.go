package frames

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad    = math.Pi / 180
	arcsec2rad = deg2rad / 3600
	mas2rad    = arcsec2rad / 1e3
	uas2rad    = arcsec2rad / 1e6
)

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// vecEqualWithin returns whether each component of a and b differ by at most tol.
func vecEqualWithin(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// isRotation returns whether m is orthonormal with a positive determinant, within tol.
func isRotation(m *r3.Mat, tol float64) bool {
	prod := r3.NewMat(nil)
	prod.Mul(m, m.T())
	return mat.EqualApprox(prod, identity, tol) && scalar.EqualWithinAbs(m.Det(), 1, tol)
}
