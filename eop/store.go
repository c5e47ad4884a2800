package eop

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/ChristopherRabotin/frames/timescale"
)

// Store is an immutable, date-ordered set of records from one source.
type Store struct {
	source  Source
	records []Record
}

// NewStore validates the records and returns a Store holding a copy of them.
// Records must be strictly increasing by date and hold finite values.
func NewStore(source Source, records []Record) (*Store, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no records", ErrInvariantViolation, source)
	}
	cpy := make([]Record, len(records))
	copy(cpy, records)
	for i, r := range cpy {
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: %s record #%d has no date", ErrInvariantViolation, source, i)
		}
		for _, v := range []float64{r.XP, r.YP, r.UT1MinusUTC, r.LOD, r.DX, r.DY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s record %s holds a non-finite value", ErrInvariantViolation, source, r.Date.Format("2006-01-02"))
			}
		}
		if r.Provenance != Observed && r.Provenance != Predicted {
			return nil, fmt.Errorf("%w: %s record %s has unknown provenance", ErrInvariantViolation, source, r.Date.Format("2006-01-02"))
		}
		cpy[i].Date = r.Date.UTC()
		if i > 0 && !cpy[i].Date.After(cpy[i-1].Date) {
			if cpy[i].Date.Equal(cpy[i-1].Date) {
				return nil, fmt.Errorf("%w: %s has duplicate date %s", ErrInvariantViolation, source, r.Date.Format("2006-01-02"))
			}
			return nil, fmt.Errorf("%w: %s date %s is before %s", ErrInvariantViolation, source, r.Date.Format("2006-01-02"), cpy[i-1].Date.Format("2006-01-02"))
		}
	}
	return &Store{source: source, records: cpy}, nil
}

// Source returns the source of this store.
func (s *Store) Source() Source { return s.source }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns a copy of the records.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Span returns the first and last record dates.
func (s *Store) Span() (first, last time.Time) {
	return s.records[0].Date, s.records[len(s.records)-1].Date
}

// Field indexes of the interpolated series.
const (
	fieldXP = iota
	fieldYP
	fieldUT1MinusTAI
	fieldLOD
	fieldDX
	fieldDY
	fieldCount
)

// table is the merged snapshot readers use. It is never mutated once published.
type table struct {
	stores  map[Source]*Store
	records []Record
	mjd     []float64
	series  [fieldCount]interp.PiecewiseLinear
}

// mergeStores builds a table out of the stores, ordered by priority (highest first).
// Observed records always win over predicted ones for the same date; otherwise the
// highest priority source wins.
func mergeStores(stores map[Source]*Store, priority []Source) (*table, error) {
	tbl := &table{stores: stores}
	if len(stores) == 0 {
		return tbl, nil
	}
	byDate := make(map[int64]Record)
	for _, src := range orderSources(stores, priority) {
		for _, r := range stores[src].records {
			key := r.Date.UnixNano()
			prev, exists := byDate[key]
			if !exists || (prev.Provenance == Predicted && r.Provenance == Observed) {
				byDate[key] = r
			}
		}
	}
	keys := make([]int64, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	tbl.records = make([]Record, len(keys))
	tbl.mjd = make([]float64, len(keys))
	for i, k := range keys {
		tbl.records[i] = byDate[k]
		tbl.mjd[i] = tbl.records[i].MJD()
		if i > 0 && tbl.mjd[i] <= tbl.mjd[i-1] {
			return nil, fmt.Errorf("%w: records %s and %s share an MJD", ErrInvariantViolation,
				tbl.records[i-1].Date.Format(time.RFC3339Nano), tbl.records[i].Date.Format(time.RFC3339Nano))
		}
	}
	if len(tbl.records) < 2 {
		return tbl, nil
	}
	var ys [fieldCount][]float64
	for f := range ys {
		ys[f] = make([]float64, len(tbl.records))
	}
	for i, r := range tbl.records {
		ys[fieldXP][i] = r.XP
		ys[fieldYP][i] = r.YP
		ys[fieldUT1MinusTAI][i] = r.ut1MinusTAI()
		ys[fieldLOD][i] = r.LOD
		ys[fieldDX][i] = r.DX
		ys[fieldDY][i] = r.DY
	}
	// Fit panics unless the abscissae are strictly increasing, which is checked above.
	for f := range tbl.series {
		if err := tbl.series[f].Fit(tbl.mjd, ys[f]); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvariantViolation, err)
		}
	}
	return tbl, nil
}

// orderSources returns the loaded sources, those listed in priority first, the others by name.
func orderSources(stores map[Source]*Store, priority []Source) []Source {
	out := make([]Source, 0, len(stores))
	seen := make(map[Source]bool, len(stores))
	for _, src := range priority {
		if _, ok := stores[src]; ok && !seen[src] {
			out = append(out, src)
			seen[src] = true
		}
	}
	var rest []Source
	for src := range stores {
		if !seen[src] {
			rest = append(rest, src)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

func (t *table) empty() bool {
	return t == nil || len(t.records) == 0
}

// at returns the values at the instant. The clamped flag is set when the edge record was used
// because the instant is outside of the coverage; strict tables return ErrOutOfRange instead.
func (t *table) at(when time.Time, strict bool) (Values, error) {
	x := timescale.MJD(when)
	n := len(t.records)
	if x < t.mjd[0] || x > t.mjd[n-1] {
		if strict {
			return Values{}, fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, when.UTC().Format(time.RFC3339Nano),
				t.records[0].Date.Format("2006-01-02"), t.records[n-1].Date.Format("2006-01-02"))
		}
		edge := t.records[0]
		if x > t.mjd[n-1] {
			edge = t.records[n-1]
		}
		v := valuesOf(edge)
		v.Clamped = true
		return v, nil
	}
	i := sort.SearchFloat64s(t.mjd, x)
	if t.mjd[i] == x {
		return valuesOf(t.records[i]), nil
	}
	prev, next := t.records[i-1], t.records[i]
	return Values{
		XP:          t.series[fieldXP].Predict(x),
		YP:          t.series[fieldYP].Predict(x),
		UT1MinusUTC: t.series[fieldUT1MinusTAI].Predict(x) + timescale.TAIMinusUTC(when),
		LOD:         t.series[fieldLOD].Predict(x),
		DX:          t.series[fieldDX].Predict(x),
		DY:          t.series[fieldDY].Predict(x),
		Predicted:   prev.Provenance == Predicted || next.Provenance == Predicted,
	}, nil
}
