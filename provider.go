package frames

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/ephemeris"
)

// Provider computes the transform from a frame's parent to the frame itself at an instant.
//
// The set of providers is closed: the Manager dispatches on the concrete type.
type Provider interface {
	fmt.Stringer
	isProvider()
}

// StaticProvider returns the same transform at every instant.
type StaticProvider struct {
	transform Transform
}

// NewStaticProvider returns a provider of tr, whatever the instant queried.
func NewStaticProvider(tr Transform) StaticProvider {
	return StaticProvider{transform: tr}
}

func (p StaticProvider) String() string { return "static" }

// DynamicProvider calls a function for each instant.
type DynamicProvider struct {
	fn func(time.Time) (Transform, error)
}

// NewDynamicProvider returns a provider calling fn. The transform returned by fn is
// re-stamped with the queried instant.
func NewDynamicProvider(fn func(time.Time) (Transform, error)) DynamicProvider {
	return DynamicProvider{fn: fn}
}

func (p DynamicProvider) String() string { return "dynamic" }

// FrameBiasProvider is the constant GCRF to J2000 frame bias.
type FrameBiasProvider struct{}

func (FrameBiasProvider) String() string { return "frame bias" }

// MODProvider is the IAU-76 precession from GCRF to the mean of date equator and equinox.
// A non-zero epoch freezes the frame at that epoch.
type MODProvider struct {
	Epoch time.Time
}

func (p MODProvider) String() string {
	if p.Epoch.IsZero() {
		return "precession"
	}
	return "precession @ " + formatEpoch(p.Epoch)
}

// TODProvider is the IAU-80 nutation from the mean to the true equator and equinox of date.
// A non-zero epoch freezes the frame at that epoch.
type TODProvider struct {
	Epoch time.Time
}

func (p TODProvider) String() string {
	if p.Epoch.IsZero() {
		return "nutation"
	}
	return "nutation @ " + formatEpoch(p.Epoch)
}

// EarthRotationProvider rotates TOD by the Greenwich apparent sidereal time.
type EarthRotationProvider struct{}

func (EarthRotationProvider) String() string { return "earth rotation" }

// PolarMotionProvider applies the polar motion and the TIO locator.
type PolarMotionProvider struct{}

func (PolarMotionProvider) String() string { return "polar motion" }

// TEMEProvider maps ITRF to the true equator, mean equinox frame of the SGP4 theory.
type TEMEProvider struct{}

func (TEMEProvider) String() string { return "TEME" }

// BodyCenteredProvider translates GCRF to the center of a body, keeping the GCRF axes.
type BodyCenteredProvider struct {
	Body ephemeris.Body
}

func (p BodyCenteredProvider) String() string { return p.Body.String() + " centered" }

func (StaticProvider) isProvider()        {}
func (DynamicProvider) isProvider()       {}
func (FrameBiasProvider) isProvider()     {}
func (MODProvider) isProvider()           {}
func (TODProvider) isProvider()           {}
func (EarthRotationProvider) isProvider() {}
func (PolarMotionProvider) isProvider()   {}
func (TEMEProvider) isProvider()          {}
func (BodyCenteredProvider) isProvider()  {}

// evaluate returns the parent to frame transform of the provider at the instant.
func (m *Manager) evaluate(p Provider, at time.Time) (Transform, error) {
	var (
		tr  Transform
		err error
	)
	switch p := p.(type) {
	case StaticProvider:
		tr = p.transform
	case DynamicProvider:
		if p.fn == nil {
			return Transform{}, fmt.Errorf("%w: dynamic provider without a function", ErrUndefinedBehavior)
		}
		tr, err = p.fn(at)
	case FrameBiasProvider:
		tr = RotationTransform(at, frameBias, r3.Vec{})
	case MODProvider:
		tr = RotationTransform(at, precessionMatrix(frozenAt(p.Epoch, at)), r3.Vec{})
	case TODProvider:
		tr = RotationTransform(at, nutationMatrix(frozenAt(p.Epoch, at)), r3.Vec{})
	case EarthRotationProvider:
		tr, err = m.earthRotation(at)
	case PolarMotionProvider:
		tr, err = m.polarMotion(at)
	case TEMEProvider:
		tr, err = m.teme(at)
	case BodyCenteredProvider:
		tr, err = m.bodyCentered(p.Body, at)
	default:
		return Transform{}, fmt.Errorf("%w: unsupported provider %T", ErrUndefinedBehavior, p)
	}
	if err != nil {
		return Transform{}, err
	}
	tr.instant = at
	return tr, nil
}

func frozenAt(epoch, at time.Time) time.Time {
	if epoch.IsZero() {
		return at
	}
	return epoch
}

func formatEpoch(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
