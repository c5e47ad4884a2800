package eop

import (
	"context"
	"fmt"
	"sync"
)

// Loader fetches the records of a source, e.g. by downloading and parsing an IERS bulletin.
// Implementations wrap ErrParse for malformed data; other failures are reported as ErrIO.
type Loader interface {
	Fetch(ctx context.Context, source Source) ([]Record, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, source Source) ([]Record, error)

// Fetch calls f.
func (f LoaderFunc) Fetch(ctx context.Context, source Source) ([]Record, error) {
	return f(ctx, source)
}

// MemoryLoader serves records held in memory, keyed by source.
type MemoryLoader struct {
	mu   sync.RWMutex
	data map[Source][]Record
}

// NewMemoryLoader returns an empty MemoryLoader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{data: make(map[Source][]Record)}
}

// Set stores a copy of the records for the source.
func (l *MemoryLoader) Set(source Source, records []Record) {
	cpy := make([]Record, len(records))
	copy(cpy, records)
	l.mu.Lock()
	l.data[source] = cpy
	l.mu.Unlock()
}

// Fetch returns a copy of the records of the source.
func (l *MemoryLoader) Fetch(ctx context.Context, source Source) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	records, ok := l.data[source]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s", ErrIO, source)
	}
	cpy := make([]Record, len(records))
	copy(cpy, records)
	return cpy, nil
}
