package shard

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Logger is the structured logging handle used throughout this package.
// It is a thin alias over logiface's generic Logger, bound to the
// logiface-slog event type, so that every log site can use the fluent
// builder API (Info().Str(...).Log("msg")) while the actual sink is
// whatever slog.Handler the caller configured.
type Logger = *logiface.Logger[*islog.Event]

// defaultLoggerOnce lazily builds the package default logger: a JSON
// slog handler on stderr whose level is read from the LOG_LEVEL
// environment variable (any name slog.Level accepts, e.g. "DEBUG" or
// "WARN"), falling back to info when it is unset or unparsable.
var defaultLoggerOnce = sync.OnceValue(func() Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}
	return islog.L.New(
		islog.L.WithSlogHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
	)
})

// DefaultLogger returns the package's default structured logger, a
// JSON slog handler writing to stderr at the level named by LOG_LEVEL
// (info by default). Pass a different Logger via WithLogger to
// override it.
func DefaultLogger() Logger {
	return defaultLoggerOnce()
}
