package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/timescale"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// differenceStep is the half step of the central difference used for velocities.
	differenceStep = 60 * time.Second
)

// Analytic is a low precision ephemeris from the Meeus series: the Sun within about
// 0.01 degree and the Moon within about 10 arcseconds. Positions are equatorial of date,
// which is within the precession since J2000 of GCRF.
type Analytic struct{}

// NewAnalytic returns an Analytic ephemeris.
func NewAnalytic() Analytic {
	return Analytic{}
}

// PositionAndVelocity implements Ephemeris.
func (a Analytic) PositionAndVelocity(body Body, t time.Time) (r, v r3.Vec, err error) {
	if body == Earth {
		return r3.Vec{}, r3.Vec{}, nil
	}
	if body != Sun && body != Moon {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: %s", ErrUnknownBody, body)
	}
	r = position(body, timescale.JulianDateTT(t))
	before := position(body, timescale.JulianDateTT(t.Add(-differenceStep)))
	after := position(body, timescale.JulianDateTT(t.Add(differenceStep)))
	v = r3.Scale(1/(2*differenceStep.Seconds()), r3.Sub(after, before))
	return r, v, nil
}

// position returns the geocentric equatorial position of the body in km.
func position(body Body, jde float64) r3.Vec {
	var λ, β, dist float64
	switch body {
	case Sun:
		s, _ := solar.True(base.J2000Century(jde))
		λ, dist = s.Rad(), solar.Radius(base.J2000Century(jde))*AU
	case Moon:
		l, b, d := moonposition.Position(jde)
		λ, β, dist = l.Rad(), b.Rad(), d
	}
	sλ, cλ := math.Sincos(λ)
	sβ, cβ := math.Sincos(β)
	ecl := r3.Vec{X: dist * cβ * cλ, Y: dist * cβ * sλ, Z: dist * sβ}
	sε, cε := math.Sincos(nutation.MeanObliquity(jde).Rad())
	return r3.Vec{
		X: ecl.X,
		Y: ecl.Y*cε - ecl.Z*sε,
		Z: ecl.Y*sε + ecl.Z*cε,
	}
}
