package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// LogFileTimeFormat names run log files, e.g. "10_14_2026_09_30_05.log".
const LogFileTimeFormat = "01_02_2006_15_04_05"

// Log backends accepted by RunLogOptions.Format.
const (
	FormatZerolog = "zerolog"
	FormatSlog    = "slog"
)

// RunLogOptions configures OpenRunLog.
type RunLogOptions struct {
	// Dir receives the log file; it is created when missing.
	Dir string
	// Level is the minimum level written to the file.
	Level Level
	// Format is FormatZerolog (default) or FormatSlog.
	Format string
	// Console receives warnings and errors as well. Defaults to os.Stderr.
	Console io.Writer
	// Now is used to name the file. Defaults to time.Now.
	Now func() time.Time
}

// RunLog is the logging collaborator for one pipeline run: opened once,
// closed on exit.
type RunLog struct {
	path     string
	file     *os.File
	provider LoggerProvider
	once     sync.Once
}

// OpenRunLog creates <Dir>/<timestamp>.log and a provider writing to it.
//
// When the file cannot be created the returned RunLog still logs to the
// console and the error explains why; callers may report it and carry on.
func OpenRunLog(opts RunLogOptions) (*RunLog, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	run := &RunLog{}
	var openErr error
	var sink io.Writer = opts.Console

	path := filepath.Join(opts.Dir, opts.Now().Format(LogFileTimeFormat)+".log")
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		openErr = errors.NewIOError("log.OpenRunLog", err)
	} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
		openErr = errors.NewIOError("log.OpenRunLog", err)
	} else {
		run.file = f
		run.path = path
		sink = f
	}

	switch opts.Format {
	case FormatSlog:
		run.provider = NewSlogProvider(sink, opts.Level)
	default:
		w := sink
		if run.file != nil {
			w = zerolog.MultiLevelWriter(run.file, SpecificLevelWriter{
				Writer: zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.RFC3339},
				Levels: []zerolog.Level{zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
			})
		}
		run.provider = NewZerologProvider(w, opts.Level)
	}

	warnLogger := run.provider.GetLoggerWithName("warnings")
	errors.SetZerologWarnFunc(func(w error) {
		warnLogger.Warn(w.Error(), w)
	})

	return run, openErr
}

// Path returns the log file path, or "" when logging to the console only.
func (r *RunLog) Path() string {
	return r.path
}

// Provider returns the provider bound to this run.
func (r *RunLog) Provider() LoggerProvider {
	return r.provider
}

// Close detaches the warning hook and closes the file. It is safe to call twice.
func (r *RunLog) Close() error {
	var err error
	r.once.Do(func() {
		errors.SetZerologWarnFunc(nil)
		if r.file != nil {
			if cerr := r.file.Close(); cerr != nil {
				err = errors.NewIOError("log.RunLog.Close", cerr)
			}
		}
	})
	return err
}
