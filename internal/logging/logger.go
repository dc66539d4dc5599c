// Package logging builds the process logger and records per-reading
// provenance lines.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region new

// New builds a zap logger from cfg. Unknown formats are rejected; an empty
// level means info.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = DefaultConfig().OutputPaths
	}

	var enc zapcore.EncoderConfig
	switch cfg.Format {
	case "", "json":
		cfg.Format = "json"
		enc = zap.NewProductionEncoderConfig()
	case "console":
		enc = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    enc,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a level name to a zap level. Matching ignores case.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
}

// #endregion new

// #region provenance

// ReadingFields are the fields that identify a reading and the decisions it
// carries, enough to find it again in the archive.
func ReadingFields(r reading.Reading) []zap.Field {
	return []zap.Field{
		zap.String("reading_id", r.ID),
		zap.String("subject", r.Subject),
		zap.Time("event_instant", r.EventInstant),
		zap.Time("design_instant", r.DesignInstant),
		zap.String("role", string(r.Role)),
		zap.String("authority", string(r.Authority)),
		zap.Int("coherence", r.Coherence.Score),
		zap.String("pattern", string(r.Pattern.Type)),
		zap.Float64("severity", r.Pattern.Severity),
		zap.String("trend", string(r.Trajectory.Trend)),
		zap.Int("corrections", len(r.Corrections)),
	}
}

// LogReading writes one provenance line for r at info level.
func LogReading(logger *zap.Logger, r reading.Reading) {
	logger.Info("reading assembled", ReadingFields(r)...)
}

// #endregion provenance
