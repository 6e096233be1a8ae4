package temporaladapter

import (
	"log/slog"

	"go.temporal.io/sdk/log"
)

// slogLogger routes SDK logs through slog.
type slogLogger struct {
	l *slog.Logger
}

func newLogger(l *slog.Logger) log.Logger {
	return slogLogger{l: l.With("component", "temporal")}
}

func (s slogLogger) Debug(msg string, keyvals ...interface{}) { s.l.Debug(msg, keyvals...) }
func (s slogLogger) Info(msg string, keyvals ...interface{})  { s.l.Info(msg, keyvals...) }
func (s slogLogger) Warn(msg string, keyvals ...interface{})  { s.l.Warn(msg, keyvals...) }
func (s slogLogger) Error(msg string, keyvals ...interface{}) { s.l.Error(msg, keyvals...) }
