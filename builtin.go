package frames

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ChristopherRabotin/frames/eop"
	"github.com/ChristopherRabotin/frames/ephemeris"
)

// Names of the builtin frames.
const (
	GCRF    = "GCRF"
	J2000   = "J2000"
	MOD     = "MOD"
	TOD     = "TOD"
	TIRF    = "TIRF"
	ITRF    = "ITRF"
	TEME    = "TEME"
	SunCRF  = "SunCRF"
	MoonCRF = "MoonCRF"
)

type builtin struct {
	name, parent  string
	provider      Provider
	quasiInertial bool
}

// RegisterBuiltins registers the builtin frame tree:
//
//	GCRF ─┬─ J2000
//	      ├─ MOD ── TOD ── TIRF ── ITRF ── TEME
//	      ├─ SunCRF   (with an ephemeris)
//	      └─ MoonCRF  (with an ephemeris)
func RegisterBuiltins(m *Manager) error {
	builtins := []builtin{
		{GCRF, "", nil, true},
		{J2000, GCRF, FrameBiasProvider{}, true},
		{MOD, GCRF, MODProvider{}, true},
		{TOD, MOD, TODProvider{}, true},
		{TIRF, TOD, EarthRotationProvider{}, false},
		{ITRF, TIRF, PolarMotionProvider{}, false},
		{TEME, ITRF, TEMEProvider{}, true},
	}
	if m.ephemeris != nil {
		builtins = append(builtins,
			builtin{SunCRF, GCRF, BodyCenteredProvider{Body: ephemeris.Sun}, true},
			builtin{MoonCRF, GCRF, BodyCenteredProvider{Body: ephemeris.Moon}, true},
		)
	}
	for _, b := range builtins {
		if _, err := m.Emplace(b.name, b.parent, b.provider, b.quasiInertial); err != nil {
			return fmt.Errorf("registering %s: %w", b.name, err)
		}
	}
	return nil
}

// MODOfEpoch returns the mean of date frame frozen at the epoch, registering it under GCRF if needed.
func (m *Manager) MODOfEpoch(epoch time.Time) (Frame, error) {
	epoch = epoch.UTC()
	return m.Emplace(fmt.Sprintf("%s @ %s", MOD, formatEpoch(epoch)), GCRF, MODProvider{Epoch: epoch}, true)
}

// TODOfEpoch returns the true of date frame frozen at the epoch, registering it under the MOD of the same epoch if needed.
func (m *Manager) TODOfEpoch(epoch time.Time) (Frame, error) {
	epoch = epoch.UTC()
	mod, err := m.MODOfEpoch(epoch)
	if err != nil {
		return Frame{}, err
	}
	return m.Emplace(fmt.Sprintf("%s @ %s", TOD, formatEpoch(epoch)), mod.Name(), TODProvider{Epoch: epoch}, true)
}

// TEMEOfEpoch returns the TEME frame frozen at the epoch, as in the SGP4 theory, registering it under GCRF if needed.
func (m *Manager) TEMEOfEpoch(epoch time.Time) (Frame, error) {
	epoch = epoch.UTC()
	name := fmt.Sprintf("%s @ %s", TEME, formatEpoch(epoch))
	if f, err := m.Lookup(name); err == nil {
		return f, nil
	}
	tr, err := m.TransformByName(GCRF, TEME, epoch)
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", name, err)
	}
	return m.Emplace(name, GCRF, NewStaticProvider(RotationTransform(epoch, tr.Rotation(), r3.Vec{})), true)
}

// Environment bundles the EOP manager, the ephemeris and a frame Manager holding the builtin frames.
type Environment struct {
	Config    Config
	Logger    log.Logger
	EOP       *eop.Manager
	Ephemeris ephemeris.Ephemeris
	Frames    *Manager
}

// EnvironmentOptions are the collaborators of NewEnvironment; zero values are replaced by defaults.
type EnvironmentOptions struct {
	// Logger receives every log line; when nil, one writing to LogOutput at the configured level is built.
	Logger     log.Logger
	LogOutput  io.Writer
	Registerer prometheus.Registerer
	// Loader fetches EOP data; when nil and the configuration lists EOP files, those are read.
	Loader    eop.Loader
	Ephemeris ephemeris.Ephemeris
}

// NewEnvironment builds an Environment from the configuration.
func NewEnvironment(cfg Config, opts EnvironmentOptions) (*Environment, error) {
	if opts.Logger == nil {
		if opts.LogOutput == nil {
			opts.LogOutput = os.Stderr
		}
		logger, err := NewLogger(opts.LogOutput, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		opts.Logger = logger
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Ephemeris == nil {
		opts.Ephemeris = ephemeris.NewAnalytic()
	}
	if opts.Loader == nil && len(cfg.EOPFiles) > 0 {
		opts.Loader = eop.FileLoader(cfg.EOPFiles)
	}
	eopOpts := []eop.Option{eop.WithLogger(opts.Logger), eop.WithRegisterer(opts.Registerer)}
	if opts.Loader != nil {
		eopOpts = append(eopOpts, eop.WithLoader(opts.Loader))
	}
	eopManager := eop.NewManager(cfg.EOP, eopOpts...)
	frames, err := NewManager(cfg,
		WithEOP(eopManager),
		WithEphemeris(opts.Ephemeris),
		WithLogger(opts.Logger),
		WithRegisterer(opts.Registerer),
	)
	if err != nil {
		return nil, err
	}
	if err := RegisterBuiltins(frames); err != nil {
		return nil, err
	}
	level.Info(opts.Logger).Log("msg", "environment ready", "frames", len(frames.Frames()),
		"cache", cfg.CacheCapacity, "eop_enabled", cfg.EOP.Enabled, "eop_policy", cfg.EOP.Policy)
	return &Environment{
		Config:    cfg,
		Logger:    opts.Logger,
		EOP:       eopManager,
		Ephemeris: opts.Ephemeris,
		Frames:    frames,
	}, nil
}

// LoadEOP fetches every configured source through the EOP loader now rather than on the first query.
func (e *Environment) LoadEOP(ctx context.Context) error {
	return e.EOP.Ensure(ctx)
}
