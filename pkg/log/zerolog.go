package log

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// ZerologLogger adapts zerolog.Logger to Logger.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return NewZerologLogger(zerolog.Nop())
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { write(z.logger.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { write(z.logger.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { write(z.logger.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...any) { write(z.logger.Error(), msg, fields) }

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(fields).Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(ctx context.Context, level Level) bool {
	zl := ToZerologLevel(level)
	return zl >= z.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// write finishes an event. A nil event means the level is disabled.
func write(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.AnErr(ErrAttrKey, err)
			if st := extractStacktrace(err); st != "" {
				e = e.Str(StacktraceAttrKey, st)
			}
			var m zerolog.LogObjectMarshaler
			if errors.As(err, &m) {
				e = e.Object("error_detail", m)
			}
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

// ToZerologLevel maps a Level onto zerolog.Level.
func ToZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider with zerolog JSON output.
type ZerologProvider struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON lines with timestamp and caller to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	base := zerolog.New(w).With().
		Timestamp().
		// skip write() and the Logger method wrapping it
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2).
		Logger()
	return &ZerologProvider{base: base, level: level}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewZerologLogger(p.base.Level(ToZerologLevel(p.level)))
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel. It applies to loggers created afterwards.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// SpecificLevelWriter forwards only the listed levels to Writer.
type SpecificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

func (w SpecificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
