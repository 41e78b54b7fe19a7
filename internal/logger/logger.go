package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger our internal "singleton" wrapper around zerolog allowing us
// to set all loggers to log to file or console all at once
type Logger struct {
	zl *zerolog.Logger
}

// unexported "singleton" logger
var logger Logger

// init sets the internal "singleton" logger
func init() {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	logger = Logger{
		zl: &zl,
	}
}

// New returns the internal "singleton" logger
func New() Logger {
	return logger
}

// Nop returns a logger that discards everything, used by tests
func Nop() Logger {
	zl := zerolog.Nop()
	return Logger{zl: &zl}
}

// GlobalSetLogFile set all loggers to log to file
func GlobalSetLogFile(f *os.File) {
	GlobalSetOutput(f)
}

// GlobalSetOutput set all loggers to write to w
func GlobalSetOutput(w io.Writer) {
	newZl := logger.zl.Output(w)

	*logger.zl = newZl
}

// SetLevel sets the global minimum level for every logger
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// LevelFromVerbosity maps repeated -v flags to a zerolog level
func LevelFromVerbosity(count int) zerolog.Level {
	switch {
	case count >= 2:
		return zerolog.TraceLevel
	case count == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace wrapper around zerolog Trace
func (l Logger) Trace() *zerolog.Event {
	return l.zl.Trace()
}

// Info wrapper around zerolog Info
func (l Logger) Info() *zerolog.Event {
	return l.zl.Info()
}

// Debug wrapper around zerolog Debug
func (l Logger) Debug() *zerolog.Event {
	return l.zl.Debug()
}

// Warn wrapper around zerolog Warn
func (l Logger) Warn() *zerolog.Event {
	return l.zl.Warn()
}

// Error wrapper around zerolog Error
func (l Logger) Error() *zerolog.Event {
	return l.zl.Error()
}

// Fatal wrapper around zerolog Fatal
func (l Logger) Fatal() *zerolog.Event {
	return l.zl.Fatal()
}
