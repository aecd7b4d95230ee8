// Package logger installs the process-wide slog handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable consulted when no level is given.
const EnvLevel = "BIBNUMBER_LOG_LEVEL"

// LevelFromString parses a level name. Unknown names yield Info with ok false.
func LevelFromString(s string) (l slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf":
		return slog.LevelInfo, true
	case "warn", "wrn":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResolveLevel picks the first non-empty of flag, $BIBNUMBER_LOG_LEVEL and
// configured.
func ResolveLevel(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvLevel); env != "" {
		return env
	}
	return configured
}

// Init installs a text handler writing to w as the default logger and
// returns it. Results go to stdout, so callers normally pass os.Stderr.
func Init(w io.Writer, level string) *slog.Logger {
	loglevel, ok := LevelFromString(level)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: loglevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if !ok && level != "" {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}
