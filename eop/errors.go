package eop

import "errors"

var (
	// ErrInvariantViolation is returned when a record set is empty, unordered, has duplicate dates or non-finite values.
	ErrInvariantViolation = errors.New("eop: invariant violation")
	// ErrOutOfRange is returned by strict managers when the instant is outside of the loaded coverage.
	ErrOutOfRange = errors.New("eop: instant out of range")
	// ErrNoData is returned when an enabled manager has no records and cannot load any.
	ErrNoData = errors.New("eop: no data loaded")
	// ErrParse should be wrapped by loaders when the source data is malformed.
	ErrParse = errors.New("eop: parse error")
	// ErrIO wraps loader failures which are not parse errors.
	ErrIO = errors.New("eop: io error")
)
