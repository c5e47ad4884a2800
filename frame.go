package frames

// Frame is a handle to a frame registered with a Manager. Frames are identified by name.
// The zero Frame resolves to nothing.
type Frame struct {
	idx  int
	name string
}

// Name returns the name of the frame.
func (f Frame) Name() string { return f.name }

func (f Frame) String() string { return f.name }

// IsZero returns whether f is the zero Frame.
func (f Frame) IsZero() bool { return f.name == "" }

// node is the registered state of a frame. It is never modified after registration.
type node struct {
	name          string
	parent        int // -1 for roots
	provider      Provider
	quasiInertial bool
	depth         int
}
