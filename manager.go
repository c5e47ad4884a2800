// Package frames models reference frames as trees of providers and converts positions and
// velocities between any two frames sharing an ancestor, at any instant.
package frames

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/ephemeris"
)

// Manager owns a set of frames and computes the transforms between them.
// All methods are safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	nodes  []*node
	byName map[string]int

	eop       EOPSource
	ephemeris ephemeris.Ephemeris
	cache     *transformCache
	logger    log.Logger
	metrics   *metrics
	reg       prometheus.Registerer
}

// Option configures a Manager.
type Option func(*Manager)

// WithEOP sets the source of Earth orientation parameters. Without one, the Earth
// providers use zero parameters.
func WithEOP(src EOPSource) Option {
	return func(m *Manager) { m.eop = src }
}

// WithEphemeris sets the ephemeris used by body centered frames.
func WithEphemeris(eph ephemeris.Ephemeris) Option {
	return func(m *Manager) { m.ephemeris = eph }
}

// WithLogger sets the logger, which is a no-op logger by default.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRegisterer registers the metrics with reg instead of the default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) { m.reg = reg }
}

// NewManager returns a Manager with no frames.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		byName: make(map[string]int),
		logger: log.NewNopLogger(),
		reg:    prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = log.With(m.logger, "subsys", "frames")
	m.metrics = newMetrics(m.reg)
	cache, err := newTransformCache(cfg.CacheCapacity, cfg.CacheResolution, m.metrics)
	if err != nil {
		return nil, err
	}
	m.cache = cache
	return m, nil
}

// Register adds a frame under parent, whose transform from parent is computed by p.
// An empty parent registers a root frame, which takes no provider.
func (m *Manager) Register(name, parent string, p Provider, quasiInertial bool) (Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.register(name, parent, p, quasiInertial)
}

// Emplace returns the frame named name if it exists, and registers it otherwise.
func (m *Manager) Emplace(name, parent string, p Provider, quasiInertial bool) (Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, exists := m.byName[name]; exists {
		return Frame{idx: idx, name: name}, nil
	}
	return m.register(name, parent, p, quasiInertial)
}

func (m *Manager) register(name, parent string, p Provider, quasiInertial bool) (Frame, error) {
	if name == "" {
		return Frame{}, fmt.Errorf("%w: empty frame name", ErrUndefinedBehavior)
	}
	if _, exists := m.byName[name]; exists {
		return Frame{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	n := &node{name: name, parent: -1, provider: p, quasiInertial: quasiInertial}
	if parent == "" {
		if p != nil {
			return Frame{}, fmt.Errorf("%w: root frame %s cannot have a provider", ErrUndefinedBehavior, name)
		}
	} else {
		pIdx, exists := m.byName[parent]
		if !exists {
			return Frame{}, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, parent, name)
		}
		if p == nil {
			return Frame{}, fmt.Errorf("%w: frame %s has no provider", ErrUndefinedBehavior, name)
		}
		n.parent = pIdx
		n.depth = m.nodes[pIdx].depth + 1
	}
	m.nodes = append(m.nodes, n)
	idx := len(m.nodes) - 1
	m.byName[name] = idx
	m.metrics.registered.Inc()
	level.Debug(m.logger).Log("msg", "registered frame", "frame", name, "parent", parent, "provider", p)
	return Frame{idx: idx, name: name}, nil
}

// Lookup returns the frame with the provided name.
func (m *Manager) Lookup(name string) (Frame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, exists := m.byName[name]
	if !exists {
		return Frame{}, fmt.Errorf("%w: %s", ErrFrameNotFound, name)
	}
	return Frame{idx: idx, name: name}, nil
}

// Exists returns whether a frame is registered under the name.
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.byName[name]
	return exists
}

// Frames returns the sorted names of the registered frames.
func (m *Manager) Frames() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.nodes))
	for _, n := range m.nodes {
		names = append(names, n.name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// node returns the node of f. It must be called with the lock held.
func (m *Manager) node(f Frame) (*node, error) {
	if f.idx < 0 || f.idx >= len(m.nodes) || m.nodes[f.idx].name != f.name || f.name == "" {
		return nil, fmt.Errorf("%w: %q", ErrFrameNotFound, f.name)
	}
	return m.nodes[f.idx], nil
}

// Parent returns the parent of f; ok is false for roots.
func (m *Manager) Parent(f Frame) (parent Frame, ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.node(f)
	if err != nil || n.parent < 0 {
		return Frame{}, false, err
	}
	return Frame{idx: n.parent, name: m.nodes[n.parent].name}, true, nil
}

// Depth returns the number of ancestors of f.
func (m *Manager) Depth(f Frame) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.node(f)
	if err != nil {
		return 0, err
	}
	return n.depth, nil
}

// IsQuasiInertial returns whether f was registered as quasi-inertial.
func (m *Manager) IsQuasiInertial(f Frame) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.node(f)
	if err != nil {
		return false, err
	}
	return n.quasiInertial, nil
}

// Provider returns the provider of f, nil for roots.
func (m *Manager) Provider(f Frame) (Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.node(f)
	if err != nil {
		return nil, err
	}
	return n.provider, nil
}

// TransformOf returns the transform from one frame to another at the instant.
//
// The transform is the composition of the providers along the tree, from the lowest common
// ancestor outward. With a cache resolution configured, the transform is evaluated at t
// truncated to the resolution. Cached transforms are not reused once the EOP source changes.
func (m *Manager) TransformOf(from, to Frame, t time.Time) (Transform, error) {
	at := t.UTC()
	if m.cache != nil {
		at = bucket(at, m.cache.resolution)
	}
	if from == to {
		m.mu.RLock()
		_, err := m.node(from)
		m.mu.RUnlock()
		if err != nil {
			return Transform{}, err
		}
		return IdentityTransform(at), nil
	}
	if m.cache == nil {
		return m.compute(from, to, at)
	}
	key := cacheKey{from: from.idx, to: to.idx, sec: at.Unix(), nsec: at.Nanosecond(), eopGen: m.eopGeneration()}
	return m.cache.get(key, func() (Transform, error) {
		return m.compute(from, to, at)
	})
}

// TransformByName is TransformOf with frames looked up by name.
func (m *Manager) TransformByName(from, to string, t time.Time) (Transform, error) {
	f, err := m.Lookup(from)
	if err != nil {
		return Transform{}, err
	}
	g, err := m.Lookup(to)
	if err != nil {
		return Transform{}, err
	}
	return m.TransformOf(f, g, t)
}

// compute composes the transform without the cache.
func (m *Manager) compute(from, to Frame, at time.Time) (Transform, error) {
	upFrom, upTo, err := m.paths(from, to)
	if err != nil {
		return Transform{}, err
	}
	toFrom, err := m.chain(upFrom, at)
	if err != nil {
		return Transform{}, err
	}
	toTo, err := m.chain(upTo, at)
	if err != nil {
		return Transform{}, err
	}
	return toFrom.Inverse().compose(toTo), nil
}

// paths returns the nodes from each frame up to, excluding, their lowest common ancestor.
// Providers are evaluated once the lock is released, so callbacks may use the Manager.
func (m *Manager) paths(from, to Frame) (upFrom, upTo []*node, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, err := m.node(from)
	if err != nil {
		return nil, nil, err
	}
	b, err := m.node(to)
	if err != nil {
		return nil, nil, err
	}
	for a.depth > b.depth {
		upFrom = append(upFrom, a)
		a = m.nodes[a.parent]
	}
	for b.depth > a.depth {
		upTo = append(upTo, b)
		b = m.nodes[b.parent]
	}
	for a != b {
		if a.parent < 0 {
			return nil, nil, fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, from.name, to.name)
		}
		upFrom = append(upFrom, a)
		upTo = append(upTo, b)
		a, b = m.nodes[a.parent], m.nodes[b.parent]
	}
	return upFrom, upTo, nil
}

// chain returns the transform from the ancestor to the first node of the upward path.
func (m *Manager) chain(up []*node, at time.Time) (Transform, error) {
	acc := IdentityTransform(at)
	for i := len(up) - 1; i >= 0; i-- {
		edge, err := m.evaluate(up[i].provider, at)
		if err != nil {
			return Transform{}, fmt.Errorf("%s: %w", up[i].name, err)
		}
		acc = acc.compose(edge)
	}
	return acc, nil
}

// ConvertState returns the position and velocity given in from, expressed in to.
func (m *Manager) ConvertState(from, to Frame, t time.Time, r, v r3.Vec) (r3.Vec, r3.Vec, error) {
	tr, err := m.TransformOf(from, to, t)
	if err != nil {
		return r3.Vec{}, r3.Vec{}, err
	}
	return tr.ApplyToPosition(r), tr.ApplyToVelocity(r, v), nil
}

// OriginIn returns the position of the origin of f in the frame in.
func (m *Manager) OriginIn(f, in Frame, t time.Time) (r3.Vec, error) {
	tr, err := m.TransformOf(f, in, t)
	if err != nil {
		return r3.Vec{}, err
	}
	return tr.ApplyToPosition(r3.Vec{}), nil
}

// VelocityIn returns the velocity of the origin of f in the frame in.
func (m *Manager) VelocityIn(f, in Frame, t time.Time) (r3.Vec, error) {
	tr, err := m.TransformOf(f, in, t)
	if err != nil {
		return r3.Vec{}, err
	}
	return tr.ApplyToVelocity(r3.Vec{}, r3.Vec{}), nil
}

// AxesIn returns the axes of f expressed in the frame in, as the columns of the matrix.
func (m *Manager) AxesIn(f, in Frame, t time.Time) (*r3.Mat, error) {
	tr, err := m.TransformOf(f, in, t)
	if err != nil {
		return nil, err
	}
	return tr.Rotation(), nil
}

// PurgeCache drops every cached transform.
func (m *Manager) PurgeCache() {
	if m.cache == nil {
		return
	}
	m.cache.purge()
	level.Debug(m.logger).Log("msg", "purged transform cache")
}

// CacheLen returns the number of cached transforms.
func (m *Manager) CacheLen() int {
	if m.cache == nil {
		return 0
	}
	return m.cache.len()
}
