// Package timescale converts UTC instants to the TAI, TT and UT1 time scales used by the frame providers.
package timescale

import (
	"math"
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// SecondsPerDay is the number of SI seconds in a day.
	SecondsPerDay = 86400.0
	// MJDOffset is the offset between a Julian date and a modified Julian date.
	MJDOffset = 2400000.5
	// TTMinusTAI is the constant offset between Terrestrial Time and TAI, in seconds.
	TTMinusTAI = 32.184
	// mjdUnixEpoch is the modified Julian date of 1970-01-01T00:00:00 UTC.
	mjdUnixEpoch = 40587.0
)

// LeapSecond is an entry of the TAI-UTC table: from Effective on, TAI-UTC equals Offset seconds.
type LeapSecond struct {
	Effective time.Time
	Offset    float64
}

var leapSeconds = []LeapSecond{
	{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, 1, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// LeapSeconds returns a copy of the TAI-UTC table, oldest first.
func LeapSeconds() []LeapSecond {
	out := make([]LeapSecond, len(leapSeconds))
	copy(out, leapSeconds)
	return out
}

// TAIMinusUTC returns TAI-UTC in seconds at the provided instant.
// Instants before 1972 use the initial 10 s offset.
func TAIMinusUTC(t time.Time) float64 {
	t = t.UTC()
	i := sort.Search(len(leapSeconds), func(i int) bool {
		return leapSeconds[i].Effective.After(t)
	})
	if i == 0 {
		return leapSeconds[0].Offset
	}
	return leapSeconds[i-1].Offset
}

// MJD returns the UTC modified Julian date of t.
// It is computed from the Unix time to keep sub-millisecond resolution.
func MJD(t time.Time) float64 {
	t = t.UTC()
	secs := float64(t.Unix()) + float64(t.Nanosecond())*1e-9
	return secs/SecondsPerDay + mjdUnixEpoch
}

// FromMJD returns the UTC instant of the provided modified Julian date, rounded to the microsecond.
func FromMJD(mjd float64) time.Time {
	us := (mjd - mjdUnixEpoch) * SecondsPerDay * 1e6
	return time.UnixMicro(int64(math.Round(us))).UTC()
}

// JulianDateUTC returns the Julian date of t in the UTC scale.
func JulianDateUTC(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JulianDateTT returns the Julian ephemeris date (TT scale) of t.
func JulianDateTT(t time.Time) float64 {
	return MJD(t) + MJDOffset + (TAIMinusUTC(t)+TTMinusTAI)/SecondsPerDay
}

// JulianDateUT1 returns the Julian date of t in the UT1 scale, given UT1-UTC in seconds.
func JulianDateUT1(t time.Time, ut1MinusUTC float64) float64 {
	return MJD(t) + MJDOffset + ut1MinusUTC/SecondsPerDay
}

// CenturiesTT returns the Julian centuries of TT elapsed since J2000.0.
func CenturiesTT(t time.Time) float64 {
	return base.J2000Century(JulianDateTT(t))
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
