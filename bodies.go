package frames

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/ephemeris"
)

// bodyCentered returns GCRF to the body centered frame: a translation to the body, GCRF axes kept.
func (m *Manager) bodyCentered(body ephemeris.Body, at time.Time) (Transform, error) {
	if m.ephemeris == nil {
		return Transform{}, fmt.Errorf("%w: no ephemeris configured for %s", ErrEphemerisUnavailable, body)
	}
	r, v, err := m.ephemeris.PositionAndVelocity(body, at)
	if err != nil {
		return Transform{}, fmt.Errorf("%w: %s: %w", ErrEphemerisUnavailable, body, err)
	}
	return newTransform(at, identity, r3.Scale(-1, r), r3.Scale(-1, v), r3.Vec{}), nil
}
