// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&switchable{NewLogger(DiscardHandler())})
}

// switchable lets package level loggers created by WithContext follow
// the root logger set later by SetDefault.
type switchable struct {
	Logger
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(&switchable{l})
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(*switchable).Logger
}

// WithContext returns a logger which always logs through the current root logger
// with the given context attached. It's intended for package level loggers.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx}
}

type contextLogger struct {
	ctx []any
}

func (c *contextLogger) target() Logger { return Root().With(c.ctx...) }

func (c *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{append(append([]any(nil), c.ctx...), ctx...)}
}
func (c *contextLogger) New(ctx ...any) Logger { return c.With(ctx...) }
func (c *contextLogger) Log(level slog.Level, msg string, ctx ...any) {
	c.target().Write(level, msg, ctx...)
}
func (c *contextLogger) Trace(msg string, ctx ...any) { c.target().Write(LevelTrace, msg, ctx...) }
func (c *contextLogger) Debug(msg string, ctx ...any) { c.target().Write(LevelDebug, msg, ctx...) }
func (c *contextLogger) Info(msg string, ctx ...any)  { c.target().Write(LevelInfo, msg, ctx...) }
func (c *contextLogger) Warn(msg string, ctx ...any)  { c.target().Write(LevelWarn, msg, ctx...) }
func (c *contextLogger) Error(msg string, ctx ...any) { c.target().Write(LevelError, msg, ctx...) }
func (c *contextLogger) Crit(msg string, ctx ...any)  { c.target().Crit(msg, ctx...) }
func (c *contextLogger) Write(level slog.Level, msg string, attrs ...any) {
	c.target().Write(level, msg, attrs...)
}
func (c *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}
func (c *contextLogger) Handler() slog.Handler { return Root().Handler() }

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}
