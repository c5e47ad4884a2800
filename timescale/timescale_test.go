package timescale

import (
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestTAIMinusUTC(t *testing.T) {
	for _, tc := range []struct {
		dt  time.Time
		exp float64
	}{
		{time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), 10},
		{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
		{time.Date(1972, 6, 30, 23, 59, 59, 0, time.UTC), 10},
		{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
		{time.Date(2016, 12, 31, 23, 59, 59, 999999999, time.UTC), 36},
		{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
		{time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC), 37},
	} {
		if got := TAIMinusUTC(tc.dt); got != tc.exp {
			t.Fatalf("TAI-UTC @ %s = %f, expected %f", tc.dt, got, tc.exp)
		}
	}
}

func TestLeapSecondsCopy(t *testing.T) {
	table := LeapSeconds()
	table[0].Offset = 1000
	if TAIMinusUTC(time.Date(1972, 1, 2, 0, 0, 0, 0, time.UTC)) != 10 {
		t.Fatal("leap second table was mutated through LeapSeconds")
	}
	for i := 1; i < len(table); i++ {
		if !table[i].Effective.After(table[i-1].Effective) {
			t.Fatalf("leap second table not ordered at %d", i)
		}
	}
}

func TestMJD(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := MJD(j2000); got != 51544.5 {
		t.Fatalf("MJD(J2000) = %f", got)
	}
	if got := JulianDateUTC(j2000); !scalar.EqualWithinAbs(got, 2451545.0, 1e-9) {
		t.Fatalf("JD(J2000) = %f", got)
	}
	// Matches meeus within the float64 resolution of a full Julian date.
	dt := time.Date(2019, 8, 23, 17, 42, 13, 500000000, time.UTC)
	if !scalar.EqualWithinAbs(MJD(dt)+MJDOffset, julian.TimeToJD(dt), 1e-8) {
		t.Fatal("MJD disagrees with meeus Julian date")
	}
	back := FromMJD(MJD(dt))
	if d := back.Sub(dt); d > time.Microsecond || d < -time.Microsecond {
		t.Fatalf("FromMJD(MJD(t)) off by %s", d)
	}
}

func TestTerrestrialTime(t *testing.T) {
	dt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	// TT-UTC = 37 + 32.184 s in 2020.
	exp := MJD(dt) + MJDOffset + 69.184/SecondsPerDay
	if got := JulianDateTT(dt); !scalar.EqualWithinAbs(got, exp, 1e-9) {
		t.Fatalf("JD(TT) = %f, expected %f", got, exp)
	}
	if c := CenturiesTT(time.Date(2000, 1, 1, 11, 58, 55, 816000000, time.UTC)); !scalar.EqualWithinAbs(c, 0, 1e-10) {
		t.Fatalf("J2000.0 in TT should be zero centuries, got %e", c)
	}
	if got := JulianDateUT1(dt, -0.5) - (MJD(dt) + MJDOffset); !scalar.EqualWithinAbs(got*SecondsPerDay, -0.5, 1e-3) {
		t.Fatalf("UT1 offset = %f s", got*SecondsPerDay)
	}
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	dt := time.Date(2021, 3, 1, 2, 0, 0, 0, loc) // 2021-02-28T21:00Z
	if exp := time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC); !Date(dt).Equal(exp) {
		t.Fatalf("Date = %s, expected %s", Date(dt), exp)
	}
}
