package raml

import (
	"log/slog"

	"github.com/erraggy/ramltools/loader"
)

// Logger is the structured logger used by the parser; see loader.Logger.
type Logger = loader.Logger

// NopLogger discards all output. It is the default.
type NopLogger = loader.NopLogger

// NewSlogAdapter wraps a *slog.Logger as a Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return loader.NewSlogAdapter(logger)
}
