package frames

import "errors"

var (
	// ErrFrameNotFound is returned when a name or handle does not resolve to a registered frame.
	ErrFrameNotFound = errors.New("frame not found")
	// ErrDuplicateName is returned when registering a frame under a name already in use.
	ErrDuplicateName = errors.New("duplicate frame name")
	// ErrUnknownParent is returned when registering a frame under a parent which does not exist.
	ErrUnknownParent = errors.New("unknown parent frame")
	// ErrNoCommonAncestor is returned when two frames live in disjoint trees.
	ErrNoCommonAncestor = errors.New("frames share no common ancestor")
	// ErrEphemerisUnavailable is returned when a body-centered frame cannot locate its body.
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")
	// ErrUndefinedBehavior is returned for a missing provider or callback.
	ErrUndefinedBehavior = errors.New("undefined behavior")
	// ErrInstantMismatch is returned when composing transforms valid at different instants.
	ErrInstantMismatch = errors.New("transform instants differ")
)
