package frames

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// WGS84 ellipsoid, in km.
const (
	wgs84SemiMajor     = 6378.137
	wgs84Flattening    = 1 / 298.257223563
	wgs84Eccentricity2 = wgs84Flattening * (2 - wgs84Flattening)
)

// Station is a ground location. Latitude and longitude are geodetic, in degrees; the altitude
// is above the WGS84 ellipsoid in km.
type Station struct {
	Name     string
	LatΦ     float64
	Longθ    float64
	Altitude float64
}

func (s Station) String() string {
	return fmt.Sprintf("%s (%f,%f); alt = %f km", s.Name, s.LatΦ, s.Longθ, s.Altitude)
}

// GeodeticToITRF converts the geodetic coordinates (degrees and km) to the ITRF position in km.
func GeodeticToITRF(latΦ, longθ, altitude float64) r3.Vec {
	sLat, cLat := math.Sincos(Deg2rad(latΦ))
	sLong, cLong := math.Sincos(Deg2rad(longθ))
	n := wgs84SemiMajor / math.Sqrt(1-wgs84Eccentricity2*sLat*sLat)
	return r3.Vec{
		X: (n + altitude) * cLat * cLong,
		Y: (n + altitude) * cLat * sLong,
		Z: (n*(1-wgs84Eccentricity2) + altitude) * sLat,
	}
}

// TopocentricProvider returns the static ITRF to SEZ (south, east, zenith) provider of the station.
func TopocentricProvider(s Station) StaticProvider {
	rot := mul(R2(math.Pi/2-Deg2rad(s.LatΦ)), R3(Deg2rad(s.Longθ)))
	r := GeodeticToITRF(s.LatΦ, s.Longθ, s.Altitude)
	return NewStaticProvider(newTransform(time.Time{}, rot, r3.Scale(-1, r), r3.Vec{}, r3.Vec{}))
}

// RegisterStation registers the topocentric SEZ frame of the station under ITRF, named after the station.
func (m *Manager) RegisterStation(s Station) (Frame, error) {
	if !m.Exists(ITRF) {
		return Frame{}, fmt.Errorf("%w: %s (parent of station %s)", ErrUnknownParent, ITRF, s.Name)
	}
	return m.Register(s.Name, ITRF, TopocentricProvider(s), false)
}

// RangeElAz returns the range (km), elevation and azimuth (in degrees) of a position given in the SEZ frame.
func RangeElAz(rSEZ r3.Vec) (ρ, el, az float64) {
	ρ = r3.Norm(rSEZ)
	if ρ == 0 {
		return 0, 90, 0
	}
	el = math.Asin(rSEZ.Z/ρ) / deg2rad
	az = Rad2deg(math.Atan2(rSEZ.Y, -rSEZ.X))
	return
}
