package eop

import (
	"fmt"
	"time"

	"github.com/ChristopherRabotin/frames/timescale"
)

// Provenance distinguishes observed data from predictions.
type Provenance uint8

const (
	// Observed data was measured (IERS flag "I").
	Observed Provenance = iota + 1
	// Predicted data was extrapolated (IERS flag "P").
	Predicted
)

func (p Provenance) String() string {
	switch p {
	case Observed:
		return "observed"
	case Predicted:
		return "predicted"
	}
	return fmt.Sprintf("provenance(%d)", uint8(p))
}

// Source names an EOP data source, e.g. a bulletin series.
type Source string

const (
	// BulletinA is the IERS rapid service (daily) series, observations and predictions.
	BulletinA Source = "bulletin-a"
	// Finals2000A is the IERS finals series (weekly), consistent with IAU 2000A.
	Finals2000A Source = "finals-2000a"
)

// Record is one dated Earth orientation sample.
type Record struct {
	Date        time.Time  // UTC date the record describes
	XP, YP      float64    // polar motion, arcseconds
	UT1MinusUTC float64    // seconds
	LOD         float64    // excess length of day, milliseconds
	DX, DY      float64    // celestial pole offsets, milliarcseconds
	Provenance  Provenance // observed or predicted
}

// MJD returns the UTC modified Julian date of the record.
func (r Record) MJD() float64 {
	return timescale.MJD(r.Date)
}

// ut1MinusTAI is continuous across leap seconds, unlike UT1-UTC.
func (r Record) ut1MinusTAI() float64 {
	return r.UT1MinusUTC - timescale.TAIMinusUTC(r.Date)
}

func (r Record) String() string {
	return fmt.Sprintf("%s xp=%f\" yp=%f\" ut1-utc=%fs lod=%fms (%s)", r.Date.Format("2006-01-02"), r.XP, r.YP, r.UT1MinusUTC, r.LOD, r.Provenance)
}

// Values are the Earth orientation parameters at one instant.
type Values struct {
	XP, YP      float64 // polar motion, arcseconds
	UT1MinusUTC float64 // seconds
	LOD         float64 // milliseconds
	DX, DY      float64 // milliarcseconds
	// Predicted is set when any record used was a prediction.
	Predicted bool
	// Clamped is set when the instant was outside of the coverage and the edge record was used.
	Clamped bool
	// Defaulted is set when the manager is disabled and the configured defaults were returned.
	Defaulted bool
}

func valuesOf(r Record) Values {
	return Values{
		XP:          r.XP,
		YP:          r.YP,
		UT1MinusUTC: r.UT1MinusUTC,
		LOD:         r.LOD,
		DX:          r.DX,
		DY:          r.DY,
		Predicted:   r.Provenance == Predicted,
	}
}
