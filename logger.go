package gpucaps

import (
	"log/slog"

	"github.com/gogpu/gpucaps/internal/logging"
)

// SetLogger configures the logger for gpucaps and all its sub-packages.
// By default, gpucaps produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by gpucaps:
//   - [slog.LevelDebug]: per-format and per-axis probe outcomes
//   - [slog.LevelInfo]: lifecycle events (adapter selected, raster tier opened, report submitted)
//   - [slog.LevelWarn]: non-fatal degradations (minimal device retry, decode probe timeout, upload failure)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	gpucaps.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by gpucaps.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
