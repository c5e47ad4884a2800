package eop

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []Record {
	return []Record{
		{Date: day(2020, 1, 1), XP: 0.1, YP: 0.3, UT1MinusUTC: -0.17, LOD: 0.2, DX: 0.1, DY: -0.1, Provenance: Observed},
		{Date: day(2020, 1, 2), XP: 0.2, YP: 0.4, UT1MinusUTC: -0.18, LOD: 0.4, DX: 0.3, DY: -0.3, Provenance: Observed},
		{Date: day(2020, 1, 3), XP: 0.3, YP: 0.2, UT1MinusUTC: -0.19, LOD: 0.6, DX: 0.5, DY: -0.5, Provenance: Predicted},
	}
}

func newTestManager(t *testing.T, cfg Config, opts ...Option) *Manager {
	t.Helper()
	return NewManager(cfg, append([]Option{WithRegisterer(prometheus.NewRegistry())}, opts...)...)
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore(BulletinA, nil)
	require.ErrorIs(t, err, ErrInvariantViolation)

	recs := sampleRecords()
	recs[1], recs[2] = recs[2], recs[1]
	_, err = NewStore(BulletinA, recs)
	require.ErrorIs(t, err, ErrInvariantViolation)

	recs = sampleRecords()
	recs[1].Date = recs[0].Date
	_, err = NewStore(BulletinA, recs)
	require.ErrorIs(t, err, ErrInvariantViolation)

	recs = sampleRecords()
	recs[2].LOD = math.NaN()
	_, err = NewStore(BulletinA, recs)
	require.ErrorIs(t, err, ErrInvariantViolation)

	recs = sampleRecords()
	recs[0].Provenance = 0
	_, err = NewStore(BulletinA, recs)
	require.ErrorIs(t, err, ErrInvariantViolation)

	recs = sampleRecords()
	store, err := NewStore(BulletinA, recs)
	require.NoError(t, err)
	recs[0].XP = 42
	require.Equal(t, 0.1, store.Records()[0].XP, "store must own its records")
	first, last := store.Span()
	require.Equal(t, day(2020, 1, 1), first)
	require.Equal(t, day(2020, 1, 3), last)
}

func TestAtKnotsAndInterpolation(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	require.NoError(t, m.Load(context.Background(), BulletinA, sampleRecords()))

	for _, rec := range sampleRecords() {
		v, err := m.At(rec.Date)
		require.NoError(t, err)
		require.Equal(t, rec.XP, v.XP)
		require.Equal(t, rec.YP, v.YP)
		require.Equal(t, rec.UT1MinusUTC, v.UT1MinusUTC)
		require.Equal(t, rec.LOD, v.LOD)
		require.Equal(t, rec.Provenance == Predicted, v.Predicted)
		require.False(t, v.Clamped)
	}

	v, err := m.At(day(2020, 1, 1).Add(12 * time.Hour))
	require.NoError(t, err)
	require.InDelta(t, 0.15, v.XP, 1e-12)
	require.InDelta(t, 0.35, v.YP, 1e-12)
	require.InDelta(t, -0.175, v.UT1MinusUTC, 1e-9)
	require.InDelta(t, 0.3, v.LOD, 1e-12)
	require.InDelta(t, 0.2, v.DX, 1e-12)
	require.False(t, v.Predicted)

	v, err = m.At(day(2020, 1, 2).Add(6 * time.Hour))
	require.NoError(t, err)
	require.InDelta(t, 0.225, v.XP, 1e-12)
	require.True(t, v.Predicted, "bracketing a predicted record")
}

func TestAtIsContinuousAtKnots(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	recs := sampleRecords()
	require.NoError(t, m.Load(context.Background(), BulletinA, recs))

	knot := recs[1]
	for _, ε := range []time.Duration{time.Second, time.Millisecond, time.Microsecond, time.Nanosecond} {
		for _, at := range []time.Time{knot.Date.Add(ε), knot.Date.Add(-ε)} {
			v, err := m.At(at)
			require.NoError(t, err)
			// No field moves faster than 0.2 units a day in the sample.
			bound := 0.2*ε.Seconds()/86400 + 1e-9
			require.InDelta(t, knot.XP, v.XP, bound, "%s", at)
			require.InDelta(t, knot.YP, v.YP, bound, "%s", at)
			require.InDelta(t, knot.UT1MinusUTC, v.UT1MinusUTC, bound, "%s", at)
			require.InDelta(t, knot.LOD, v.LOD, bound, "%s", at)
			require.InDelta(t, knot.DX, v.DX, bound, "%s", at)
			require.InDelta(t, knot.DY, v.DY, bound, "%s", at)
		}
	}
}

func TestGeneration(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	gen := m.Generation()
	next := func(what string) {
		t.Helper()
		require.Greater(t, m.Generation(), gen, what)
		gen = m.Generation()
	}

	require.NoError(t, m.Load(context.Background(), BulletinA, sampleRecords()))
	next("load")
	_, err := m.At(day(2020, 1, 2))
	require.NoError(t, err)
	require.Equal(t, gen, m.Generation(), "queries leave the generation alone")

	bad := sampleRecords()
	bad[0].Date = bad[1].Date
	require.Error(t, m.Load(context.Background(), BulletinA, bad))
	require.Equal(t, gen, m.Generation(), "rejected loads change nothing")

	m.Disable()
	next("disable")
	m.Disable()
	require.Equal(t, gen, m.Generation(), "disabling twice is a no-op")
	m.Enable()
	next("enable")
	m.Reset()
	next("reset")
}

func TestAtAcrossLeapSecond(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	require.NoError(t, m.Load(context.Background(), Finals2000A, []Record{
		{Date: day(2016, 12, 31), UT1MinusUTC: -0.408, Provenance: Observed},
		{Date: day(2017, 1, 1), UT1MinusUTC: 0.592, Provenance: Observed},
	}))
	v, err := m.At(day(2016, 12, 31).Add(18 * time.Hour))
	require.NoError(t, err)
	require.InDelta(t, -0.408, v.UT1MinusUTC, 1e-9)

	v, err = m.At(day(2017, 1, 1))
	require.NoError(t, err)
	require.Equal(t, 0.592, v.UT1MinusUTC)
}

func TestOutOfRangePolicies(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(DefaultConfig(), WithRegisterer(reg))
	require.NoError(t, m.Load(context.Background(), BulletinA, sampleRecords()))

	v, err := m.At(day(2019, 6, 1))
	require.NoError(t, err)
	require.True(t, v.Clamped)
	require.Equal(t, 0.1, v.XP)

	v, err = m.At(day(2021, 6, 1))
	require.NoError(t, err)
	require.True(t, v.Clamped)
	require.True(t, v.Predicted)
	require.Equal(t, -0.19, v.UT1MinusUTC)
	require.Equal(t, 2.0, testutil.ToFloat64(m.metrics.degraded.WithLabelValues("clamped")))

	cfg := DefaultConfig()
	cfg.Policy = PolicyStrict
	strict := newTestManager(t, cfg)
	require.NoError(t, strict.Load(context.Background(), BulletinA, sampleRecords()))
	_, err = strict.At(day(2021, 6, 1))
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = strict.At(day(2020, 1, 3))
	require.NoError(t, err, "coverage is closed on both ends")
}

func TestDisabledReturnsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.Defaults = Values{UT1MinusUTC: 0.1}
	m := newTestManager(t, cfg)

	v, err := m.At(day(2020, 1, 1))
	require.NoError(t, err, "disabled managers never fail")
	require.True(t, v.Defaulted)
	require.Equal(t, 0.1, v.UT1MinusUTC)

	require.NoError(t, m.Load(context.Background(), BulletinA, sampleRecords()))
	v, _ = m.At(day(2020, 1, 1))
	require.True(t, v.Defaulted)

	m.Enable()
	v, err = m.At(day(2020, 1, 1))
	require.NoError(t, err)
	require.False(t, v.Defaulted)
	require.Equal(t, -0.17, v.UT1MinusUTC)
}

func TestManualWithoutData(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	_, err := m.At(day(2020, 1, 1))
	require.ErrorIs(t, err, ErrNoData)
	_, _, ok := m.Coverage()
	require.False(t, ok)
}

func TestAutomaticLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	loader := NewMemoryLoader()
	loader.Set(BulletinA, sampleRecords())
	counting := LoaderFunc(func(ctx context.Context, src Source) ([]Record, error) {
		if src == BulletinA {
			calls.Add(1)
		}
		return loader.Fetch(ctx, src)
	})
	cfg := DefaultConfig()
	cfg.Mode = ModeAutomatic
	m := newTestManager(t, cfg, WithLoader(counting))

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := m.At(day(2020, 1, 2))
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, []Source{BulletinA}, m.Sources())
}

func TestAutomaticLoaderFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeAutomatic
	m := newTestManager(t, cfg, WithLoader(LoaderFunc(func(context.Context, Source) ([]Record, error) {
		return nil, errors.New("connection refused")
	})))
	_, err := m.At(day(2020, 1, 1))
	require.ErrorIs(t, err, ErrNoData)
	require.ErrorIs(t, err, ErrIO)
}

func TestMergePrecedence(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, BulletinA, []Record{
		{Date: day(2020, 1, 1), XP: 1, Provenance: Observed},
		{Date: day(2020, 1, 2), XP: 2, Provenance: Predicted},
	}))
	require.NoError(t, m.Load(ctx, Finals2000A, []Record{
		{Date: day(2020, 1, 1), XP: 10, Provenance: Observed},
		{Date: day(2020, 1, 2), XP: 20, Provenance: Observed},
		{Date: day(2020, 1, 3), XP: 30, Provenance: Predicted},
	}))

	recs := m.Records()
	require.Len(t, recs, 3)
	require.Equal(t, 1.0, recs[0].XP, "higher priority source wins")
	require.Equal(t, 20.0, recs[1].XP, "observed wins over predicted")
	require.Equal(t, 30.0, recs[2].XP)
	require.Equal(t, []Source{BulletinA, Finals2000A}, m.Sources())

	first, last, ok := m.Coverage()
	require.True(t, ok)
	require.Equal(t, day(2020, 1, 1), first)
	require.Equal(t, day(2020, 1, 3), last)
}

func TestRejectedLoadKeepsPrevious(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, BulletinA, sampleRecords()))

	bad := sampleRecords()
	bad[2].Date = bad[0].Date
	require.ErrorIs(t, m.Load(ctx, BulletinA, bad), ErrInvariantViolation)

	v, err := m.At(day(2020, 1, 3))
	require.NoError(t, err)
	require.Equal(t, 0.3, v.XP)
	store, ok := m.Store(BulletinA)
	require.True(t, ok)
	require.Equal(t, 3, store.Len())
}

func TestReset(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	require.NoError(t, m.Load(context.Background(), BulletinA, sampleRecords()))
	m.Reset()
	_, err := m.At(day(2020, 1, 1))
	require.ErrorIs(t, err, ErrNoData)
	require.Empty(t, m.Sources())
}

func TestConcurrentLoadAndQuery(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, BulletinA, sampleRecords()))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				if err := m.Load(gctx, BulletinA, sampleRecords()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 200; j++ {
				v, err := m.At(day(2020, 1, 1).Add(time.Duration(j) * 10 * time.Minute))
				if err != nil {
					return err
				}
				if v.XP < 0.1 || v.XP > 0.3 {
					return errors.New("torn snapshot")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestParsePolicyAndMode(t *testing.T) {
	p, err := ParsePolicy("Strict")
	require.NoError(t, err)
	require.Equal(t, PolicyStrict, p)
	_, err = ParsePolicy("lenient")
	require.Error(t, err)

	mode, err := ParseMode("automatic")
	require.NoError(t, err)
	require.Equal(t, ModeAutomatic, mode)
	_, err = ParseMode("sometimes")
	require.Error(t, err)
}
