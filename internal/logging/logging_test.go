package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   zapcore.Level
	}{
		{name: "debug console", config: Config{Level: "debug", Format: "console"}, want: zapcore.DebugLevel},
		{name: "warn json", config: Config{Level: "WARN", Format: "json"}, want: zapcore.WarnLevel},
		{name: "empty defaults to info", config: Config{}, want: zapcore.InfoLevel},
		{name: "garbage defaults to info", config: Config{Level: "loud"}, want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer Sync(logger)

			if !logger.Core().Enabled(tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
		})
	}
}

func TestSync_NilLogger(t *testing.T) {
	Sync(nil)
}
