package pacer

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/pacer/internal/nopslog"
)

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(nopslog.New())
}

// SetLogger configures the logger for pacer and its sub-packages.
// By default, pacer produces no log output.
//
// Redrawers pick up the package logger when they are created; use
// WithLogger to give a single Redrawer its own logger. Pass nil to restore
// the silent default.
//
// Log levels used by pacer:
//   - [slog.LevelDebug]: per-frame diagnostics (skipped frames, interop mode switches)
//   - [slog.LevelInfo]: lifecycle events (redrawer created, disposed)
//   - [slog.LevelWarn]: non-fatal failures (drawable acquisition, replay, submission)
//
// Example:
//
//	pacer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(nopslog.Or(l))
}

// Logger returns the current package logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by collaborators that accept a logger:
// the throttle and backends that log their own diagnostics.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes l to v if it implements loggerSetter.
func propagateLogger(v any, l *slog.Logger) {
	if ls, ok := v.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
