package eop

import (
	"fmt"
	"strings"
)

// Policy selects what happens when an instant falls outside of the loaded coverage.
type Policy uint8

const (
	// PolicyClamp returns the nearest edge record and flags the values as clamped.
	PolicyClamp Policy = iota
	// PolicyStrict fails with ErrOutOfRange.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyClamp:
		return "clamp"
	case PolicyStrict:
		return "strict"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// ParsePolicy parses "clamp" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return PolicyClamp, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyClamp, fmt.Errorf("unknown EOP policy %q", s)
}

// Mode selects whether a manager may fetch data on its own.
type Mode uint8

const (
	// ModeManual only serves data passed to Load.
	ModeManual Mode = iota
	// ModeAutomatic fetches every configured source through the Loader on the first query.
	ModeAutomatic
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeAutomatic:
		return "automatic"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode parses "manual" or "automatic".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual":
		return ModeManual, nil
	case "automatic", "auto":
		return ModeAutomatic, nil
	}
	return ModeManual, fmt.Errorf("unknown EOP mode %q", s)
}

// Config configures a Manager.
type Config struct {
	Enabled bool
	Policy  Policy
	Mode    Mode
	// SourcePriority orders sources from most to least trusted when records share a date.
	SourcePriority []Source
	// Defaults are returned, flagged, when the manager is disabled.
	Defaults Values
}

// DefaultConfig returns an enabled, clamping, manual configuration preferring Bulletin A.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Policy:         PolicyClamp,
		Mode:           ModeManual,
		SourcePriority: []Source{BulletinA, Finals2000A},
	}
}
