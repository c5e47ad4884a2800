package frames

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ChristopherRabotin/frames/eop"
)

// ConfigEnv names the environment variable holding the directory of conf.toml.
const ConfigEnv = "FRAMES_CONFIG"

// Config configures an Environment.
type Config struct {
	// CacheCapacity is the number of cached transforms, 0 disables the cache.
	CacheCapacity int
	// CacheResolution truncates query instants before caching and evaluation, 0 keeps them exact.
	CacheResolution time.Duration
	EOP             eop.Config
	// EOPFiles maps EOP sources to finals2000A formatted files.
	EOPFiles map[eop.Source]string
	// LogLevel is one of debug, info, warn, error or none.
	LogLevel string
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		CacheCapacity: DefaultCacheCapacity,
		EOP:           eop.DefaultConfig(),
		LogLevel:      "info",
	}
}

// LoadConfig reads conf.toml from dir, then applies the FRAMES_ prefixed environment overrides,
// e.g. FRAMES_EOP_POLICY=strict. An empty dir reads the directory from FRAMES_CONFIG, and
// when that is unset only the defaults and the environment apply.
func LoadConfig(dir string) (Config, error) {
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.SetEnvPrefix("FRAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("cache.capacity", def.CacheCapacity)
	v.SetDefault("cache.resolution", "0s")
	v.SetDefault("eop.enabled", def.EOP.Enabled)
	v.SetDefault("eop.policy", def.EOP.Policy.String())
	v.SetDefault("eop.mode", def.EOP.Mode.String())
	v.SetDefault("eop.sources", []string{string(eop.BulletinA), string(eop.Finals2000A)})
	for _, key := range []string{"xp", "yp", "ut1_utc", "lod", "dx", "dy"} {
		v.SetDefault("eop.defaults."+key, 0.0)
	}
	v.SetDefault("log.level", def.LogLevel)
	if dir != "" {
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("%s/conf.toml not found", dir)
			}
			return Config{}, fmt.Errorf("reading %s/conf.toml: %w", dir, err)
		}
	}

	cfg := Config{
		CacheCapacity:   v.GetInt("cache.capacity"),
		CacheResolution: v.GetDuration("cache.resolution"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
	}
	if cfg.CacheCapacity < 0 {
		return Config{}, fmt.Errorf("cache.capacity must be positive or zero, got %d", cfg.CacheCapacity)
	}
	if cfg.CacheResolution < 0 {
		return Config{}, fmt.Errorf("cache.resolution must be positive or zero, got %s", cfg.CacheResolution)
	}
	if _, err := levelOption(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	policy, err := eop.ParsePolicy(v.GetString("eop.policy"))
	if err != nil {
		return Config{}, err
	}
	mode, err := eop.ParseMode(v.GetString("eop.mode"))
	if err != nil {
		return Config{}, err
	}
	cfg.EOP = eop.Config{
		Enabled: v.GetBool("eop.enabled"),
		Policy:  policy,
		Mode:    mode,
		Defaults: eop.Values{
			XP:          v.GetFloat64("eop.defaults.xp"),
			YP:          v.GetFloat64("eop.defaults.yp"),
			UT1MinusUTC: v.GetFloat64("eop.defaults.ut1_utc"),
			LOD:         v.GetFloat64("eop.defaults.lod"),
			DX:          v.GetFloat64("eop.defaults.dx"),
			DY:          v.GetFloat64("eop.defaults.dy"),
		},
	}
	for _, src := range v.GetStringSlice("eop.sources") {
		cfg.EOP.SourcePriority = append(cfg.EOP.SourcePriority, eop.Source(strings.TrimSpace(src)))
	}
	if files := v.GetStringMapString("eop.files"); len(files) > 0 {
		cfg.EOPFiles = make(map[eop.Source]string, len(files))
		for src, path := range files {
			cfg.EOPFiles[eop.Source(src)] = path
		}
	}
	return cfg, nil
}
