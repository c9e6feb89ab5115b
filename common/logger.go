package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every engine package.
// By default the engine produces no log output. Passing nil restores the silent default.
//
// Log levels used by the engine:
//   - [slog.LevelDebug]: pipeline cache misses, bind group rebuilds, uniform arena growth
//   - [slog.LevelInfo]: adapter selection, resource loads, manager lifecycle, frame stats
//   - [slog.LevelWarn]: shader validation diagnostics, failed reloads, skipped batch entries
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
