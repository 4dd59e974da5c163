// Package logging builds the zap logger shared by every component.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// Config selects the level and the encoder.
type Config struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "console"
}

// New builds a logger. "json" selects the production encoder and anything
// else the development console encoder. An unparseable level means info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	switch strings.ToLower(config.Format) {
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(config.Level))
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	return zapConfig.Build(zap.AddStacktrace(zap.ErrorLevel))
}

// Sync flushes buffered entries. Sync on stderr fails on some platforms;
// that error is not actionable and is dropped.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	_ = logger.Sync()
}
