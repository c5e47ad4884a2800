// Package ephemeris provides the positions of the bodies which anchor body-centered frames.
package ephemeris

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownBody is returned for bodies an Ephemeris does not cover.
var ErrUnknownBody = errors.New("ephemeris: unknown body")

// Body identifies a celestial body.
type Body uint8

const (
	// Earth is the origin of the geocentric frames.
	Earth Body = iota + 1
	// Sun body.
	Sun
	// Moon body.
	Moon
)

func (b Body) String() string {
	switch b {
	case Earth:
		return "Earth"
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	}
	return fmt.Sprintf("body(%d)", uint8(b))
}

// ParseBody returns the body with the provided case insensitive name.
func ParseBody(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "sun":
		return Sun, nil
	case "moon":
		return Moon, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// Ephemeris returns the geocentric GCRF position (km) and velocity (km/s) of a body.
type Ephemeris interface {
	PositionAndVelocity(body Body, t time.Time) (r, v r3.Vec, err error)
}
