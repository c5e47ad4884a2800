package frames

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/sidereal"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/eop"
	"github.com/ChristopherRabotin/frames/timescale"
)

// EOPSource provides the Earth orientation parameters at an instant; *eop.Manager is one.
// Generation must change whenever At may return different values, so cached transforms are dropped.
type EOPSource interface {
	At(t time.Time) (eop.Values, error)
	Generation() uint64
}

// sPrimeRate is the TIO locator drift, in radians per Julian century of TT.
const sPrimeRate = -47 * uas2rad

// EarthRotationRate returns the rotation rate of the Earth in rad/s for the excess length of day in ms.
func EarthRotationRate(lodMs float64) float64 {
	return (72921151.467064 - 0.843994809*lodMs) * 1e-12
}

// eopGeneration returns the generation of the EOP source, 0 without one.
func (m *Manager) eopGeneration() uint64 {
	if m.eop == nil {
		return 0
	}
	return m.eop.Generation()
}

// eopAt returns the EOP at the instant, or zeros when no source is configured.
func (m *Manager) eopAt(at time.Time) (eop.Values, error) {
	if m.eop == nil {
		return eop.Values{Defaulted: true}, nil
	}
	v, err := m.eop.At(at)
	if err != nil {
		return eop.Values{}, fmt.Errorf("earth orientation at %s: %w", formatEpoch(at), err)
	}
	return v, nil
}

// earthRotation returns TOD to TIRF: a rotation by the apparent sidereal time about the pole.
func (m *Manager) earthRotation(at time.Time) (Transform, error) {
	v, err := m.eopAt(at)
	if err != nil {
		return Transform{}, err
	}
	gast := float64(sidereal.Apparent(timescale.JulianDateUT1(at, v.UT1MinusUTC))) / timescale.SecondsPerDay * 2 * math.Pi
	ω := r3.Vec{Z: EarthRotationRate(v.LOD)}
	return newTransform(at, R3(gast), r3.Vec{}, r3.Vec{}, ω), nil
}

// polarMotion returns TIRF to ITRF, the transpose of W = R3(−s')·R2(xp)·R1(yp).
func (m *Manager) polarMotion(at time.Time) (Transform, error) {
	v, err := m.eopAt(at)
	if err != nil {
		return Transform{}, err
	}
	sPrime := sPrimeRate * timescale.CenturiesTT(at)
	return newTransform(at, mul(R1(-v.YP*arcsec2rad), R2(-v.XP*arcsec2rad), R3(sPrime)), r3.Vec{}, r3.Vec{}, r3.Vec{}), nil
}

// teme returns ITRF to TEME: the IAU-80 polar motion then the GMST-1982 rotation.
func (m *Manager) teme(at time.Time) (Transform, error) {
	v, err := m.eopAt(at)
	if err != nil {
		return Transform{}, err
	}
	gmst := satellite.ThetaG_JD(timescale.JulianDateUT1(at, v.UT1MinusUTC))
	rot := mul(R3(-gmst), R1(v.YP*arcsec2rad), R2(v.XP*arcsec2rad))
	ω := r3.Vec{Z: -EarthRotationRate(v.LOD)}
	return newTransform(at, rot, r3.Vec{}, r3.Vec{}, ω), nil
}
