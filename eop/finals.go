package eop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ChristopherRabotin/frames/timescale"
)

// ParseFinals2000A parses the fixed-width IERS finals2000A format (also used by the daily
// Bulletin A files). Only the Bulletin A columns are read. Lines without a UT1-UTC value,
// such as the trailing lines past the predictions, are skipped.
func ParseFinals2000A(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 15 {
			return nil, fmt.Errorf("%w: line %d is %d characters long", ErrParse, lineNo, len(line))
		}
		mjd, err := column(line, 8, 15)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: MJD: %s", ErrParse, lineNo, err)
		}
		if mjd == nil {
			return nil, fmt.Errorf("%w: line %d has no MJD", ErrParse, lineNo)
		}
		ut1, err := column(line, 59, 68)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: UT1-UTC: %s", ErrParse, lineNo, err)
		}
		if ut1 == nil {
			continue
		}
		rec := Record{Date: timescale.FromMJD(*mjd), UT1MinusUTC: *ut1, Provenance: Observed}
		if flag(line, 58) == 'P' || flag(line, 17) == 'P' {
			rec.Provenance = Predicted
		}
		for _, f := range []struct {
			dst        *float64
			start, end int
		}{
			{&rec.XP, 19, 27},
			{&rec.YP, 38, 46},
			{&rec.LOD, 80, 86},
			{&rec.DX, 98, 106},
			{&rec.DY, 117, 125},
		} {
			v, err := column(line, f.start, f.end)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: columns %d-%d: %s", ErrParse, lineNo, f.start, f.end, err)
			}
			if v != nil {
				*f.dst = *v
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrParse)
	}
	return records, nil
}

// column returns the value held in the 1-based inclusive columns, or nil when they are blank or past the end of the line.
func column(line string, start, end int) (*float64, error) {
	if start > len(line) {
		return nil, nil
	}
	if end > len(line) {
		end = len(line)
	}
	s := strings.TrimSpace(line[start-1 : end])
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func flag(line string, col int) byte {
	if col > len(line) {
		return ' '
	}
	return line[col-1]
}

// FileLoader reads finals2000A formatted files from disk, one path per source.
type FileLoader map[Source]string

// Fetch parses the file configured for the source.
func (l FileLoader) Fetch(ctx context.Context, source Source) ([]Record, error) {
	path, ok := l[source]
	if !ok {
		return nil, fmt.Errorf("%w: no file configured for %s", ErrIO, source)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	records, err := ParseFinals2000A(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
