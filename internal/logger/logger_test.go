package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DBG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"inf", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"wrn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{" err ", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LevelFromString(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LevelFromString(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	if got := ResolveLevel("", "warn"); got != "warn" {
		t.Errorf("config level: got %q, want warn", got)
	}

	t.Setenv(EnvLevel, "error")
	if got := ResolveLevel("", "warn"); got != "error" {
		t.Errorf("env level: got %q, want error", got)
	}
	if got := ResolveLevel("debug", "warn"); got != "debug" {
		t.Errorf("flag level: got %q, want debug", got)
	}
}

func TestInit(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, "warn")

	slog.Info("hidden")
	slog.Warn("shown", "components", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "components=3") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestInit_UnknownLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Init(&buf, "chatty")

	if !strings.Contains(buf.String(), "unknown log level") {
		t.Errorf("expected a warning about the level, got %q", buf.String())
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}
