// Package config loads process settings from an optional YAML file and
// RESONANCE_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/logging"
)

// envPrefix is prepended to every environment override, so ephemeris.addr
// is read from RESONANCE_EPHEMERIS_ADDR.
const envPrefix = "RESONANCE"

// Ephemeris source modes.
const (
	ModeAnalytic = "analytic"
	ModeGRPC     = "grpc"
)

// #region types

// Config is the full process configuration.
type Config struct {
	Log       logging.Config  `mapstructure:"log"`
	Ephemeris EphemerisConfig `mapstructure:"ephemeris"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// EphemerisConfig selects and tunes the position source.
type EphemerisConfig struct {
	Mode            string        `mapstructure:"mode"`   // analytic or grpc
	Addr            string        `mapstructure:"addr"`   // remote service, grpc mode
	Listen          string        `mapstructure:"listen"` // ephemerisd bind address
	Timeout         time.Duration `mapstructure:"timeout"`
	DesignOffsetDeg float64       `mapstructure:"design_offset_deg"`
}

// ArchiveConfig locates the reading archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// #endregion types

// #region defaults

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Log: logging.DefaultConfig(),
		Ephemeris: EphemerisConfig{
			Mode:            ModeAnalytic,
			Addr:            "localhost:50061",
			Listen:          ":50061",
			Timeout:         10 * time.Second,
			DesignOffsetDeg: ephemeris.DefaultDesignOffset,
		},
		Archive: ArchiveConfig{Path: "resonance.db"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
	v.SetDefault("ephemeris.mode", d.Ephemeris.Mode)
	v.SetDefault("ephemeris.addr", d.Ephemeris.Addr)
	v.SetDefault("ephemeris.listen", d.Ephemeris.Listen)
	v.SetDefault("ephemeris.timeout", d.Ephemeris.Timeout)
	v.SetDefault("ephemeris.design_offset_deg", d.Ephemeris.DesignOffsetDeg)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// #endregion defaults

// #region load

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. An empty path behaves like LoadFromEnv.
func Load(path string) (Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	return finalize(v)
}

// LoadFromEnv builds the configuration from defaults and environment
// variables alone.
func LoadFromEnv() (Config, error) {
	return finalize(newViper())
}

func finalize(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// #endregion load

// #region validate

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Ephemeris.Mode {
	case ModeAnalytic:
	case ModeGRPC:
		if c.Ephemeris.Addr == "" {
			return fmt.Errorf("ephemeris.addr: required in grpc mode")
		}
	default:
		return fmt.Errorf("ephemeris.mode: unknown mode %q", c.Ephemeris.Mode)
	}
	if c.Ephemeris.Timeout <= 0 {
		return fmt.Errorf("ephemeris.timeout: must be positive, got %s", c.Ephemeris.Timeout)
	}
	if o := c.Ephemeris.DesignOffsetDeg; o <= 0 || o >= 180 {
		return fmt.Errorf("ephemeris.design_offset_deg: must be in (0, 180), got %v", o)
	}
	return nil
}

// #endregion validate
