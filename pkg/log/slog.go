package log

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (s *SlogLogger) Debug(msg string, fields ...any) { s.logger.Debug(msg, slogArgs(fields)...) }
func (s *SlogLogger) Info(msg string, fields ...any)  { s.logger.Info(msg, slogArgs(fields)...) }
func (s *SlogLogger) Warn(msg string, fields ...any)  { s.logger.Warn(msg, slogArgs(fields)...) }
func (s *SlogLogger) Error(msg string, fields ...any) { s.logger.Error(msg, slogArgs(fields)...) }

// With implements Logger.With.
func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{logger: s.logger.With(slogArgs(fields)...)}
}

// Enabled implements Logger.Enabled.
func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, ToSlogLevel(level))
}

// slogArgs moves a leading error value under ErrAttrKey so that ErrFmtHandler
// can attach its stack trace.
func slogArgs(fields []any) []any {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			return append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	return fields
}

// SlogProvider implements LoggerProvider on top of a slog handler.
type SlogProvider struct {
	w     io.Writer
	level *slog.LevelVar
}

// NewSlogProvider creates a provider writing JSON records to w.
func NewSlogProvider(w io.Writer, level Level) *SlogProvider {
	lv := &slog.LevelVar{}
	lv.Set(ToSlogLevel(level))
	return &SlogProvider{w: w, level: lv}
}

func (p *SlogProvider) newLogger() *slog.Logger {
	return slog.New(NewSlogHandler(p.w, p.level))
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return NewSlogLogger(p.newLogger())
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return NewSlogLogger(p.newLogger().With(ComponentKey, name))
}

// SetLevel implements LoggerProvider.SetLevel. Loggers already handed out follow the change.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(ToSlogLevel(level))
}
