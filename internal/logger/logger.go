package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger handles structured logging with optional file output.
// Console output goes to stderr so stdout stays reserved for the report.
type Logger struct {
	Verbose bool
	console io.Writer
	mu      sync.Mutex
	fileLog *os.File
	hasBar  bool
	zl      zerolog.Logger
}

// New creates a new Logger writing to stderr.
func New(verbose bool) *Logger {
	return NewWithOutput(verbose, os.Stderr)
}

// NewWithOutput creates a Logger whose console output is written to w.
func NewWithOutput(verbose bool, w io.Writer) *Logger {
	l := &Logger{
		Verbose: verbose,
		console: zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.TimeOnly,
		},
	}
	l.zl = zerolog.New(l).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return l
}

// SetFileLog enables logging to a file. The file receives JSON lines at
// every level regardless of verbosity.
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// SetProgressBar indicates that a progress bar is active
func (l *Logger) SetProgressBar(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasBar = active
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

// Zerolog exposes the underlying logger for structured fields.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Debug logs detailed messages. They reach the console only in verbose
// mode but are always written to the file log.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs error messages. Errors are shown even while a progress bar is
// active.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Write implements io.Writer for events without a level.
func (l *Logger) Write(p []byte) (int, error) {
	return l.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel routes one encoded event to the file log and, depending on
// verbosity and progress bar state, to the console.
func (l *Logger) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		l.fileLog.Write(p)
	}

	if level == zerolog.DebugLevel && !l.Verbose {
		return len(p), nil
	}
	if l.hasBar && !l.Verbose && level < zerolog.ErrorLevel {
		return len(p), nil
	}

	if _, err := l.console.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
