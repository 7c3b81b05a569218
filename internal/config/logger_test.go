package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{"debug lowercase", "debug", zapcore.DebugLevel},
		{"debug uppercase", "DEBUG", zapcore.DebugLevel},
		{"info", "info", zapcore.InfoLevel},
		{"warn", "warn", zapcore.WarnLevel},
		{"warning", "warning", zapcore.WarnLevel},
		{"error padded", " error ", zapcore.ErrorLevel},
		{"fatal is not allowed", "fatal", zapcore.InfoLevel},
		{"invalid string", "invalid", zapcore.InfoLevel},
		{"empty string", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLogLevel(tt.level)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  LogConfig
	}{
		{"production info", LogConfig{Level: "info"}},
		{"production error", LogConfig{Level: "error"}},
		{"development debug", LogConfig{Level: "debug", Development: true}},
		{"default level", LogConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("NewLogger() returned nil logger")
			}
			defer logger.Sync()

			want := parseLogLevel(tt.cfg.Level)
			if !logger.Core().Enabled(want) {
				t.Errorf("logger should be enabled at %v", want)
			}
			if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
				t.Errorf("logger should not be enabled below %v", want)
			}
		})
	}
}
