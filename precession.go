package frames

import (
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/timescale"
)

// IERS 2003 frame bias between GCRF and the J2000 mean equator and equinox.
const (
	biasDα0 = -14.6 * mas2rad
	biasξ0  = -16.617 * mas2rad
	biasη0  = -6.819 * mas2rad
)

// frameBias maps GCRF to J2000. Shared, never written to.
var frameBias = mul(R1(-biasη0), R2(biasξ0), R3(biasDα0))

// precessionMatrix returns the GCRF to mean of date rotation, frame bias included.
func precessionMatrix(at time.Time) *r3.Mat {
	T := timescale.CenturiesTT(at)
	T2, T3 := T*T, T*T*T
	ζ := (2306.2181*T + 0.30188*T2 + 0.017998*T3) * arcsec2rad
	θ := (2004.3109*T - 0.42665*T2 - 0.041833*T3) * arcsec2rad
	z := (2306.2181*T + 1.09468*T2 + 0.018203*T3) * arcsec2rad
	return mul(R3(-z), R2(θ), R3(-ζ), frameBias)
}

// nutationMatrix returns the mean of date to true of date rotation.
func nutationMatrix(at time.Time) *r3.Mat {
	jde := timescale.JulianDateTT(at)
	Δψ, Δε := nutation.Nutation(jde)
	ε := nutation.MeanObliquity(jde).Rad()
	return mul(R1(-(ε + Δε.Rad())), R3(-Δψ.Rad()), R1(ε))
}
