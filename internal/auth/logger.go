package auth

import "log/slog"

// SlogLogger adapts a *slog.Logger to the package Logger interface.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an slog logger for use by auth components.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(msg string, args ...any) {
	s.l.Debug(msg, args...)
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.l.Info(msg, args...)
}

func (s *SlogLogger) Warn(msg string, args ...any) {
	s.l.Warn(msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.l.Error(msg, args...)
}

var _ Logger = (*SlogLogger)(nil)
