// Package log wraps a global zerolog logger for the qtensor command.
package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log     zerolog.Logger
	logFile *os.File
	logMu   sync.RWMutex
)

func init() {
	// $LOG_LEVEL lets tests raise verbosity without touching code.
	if err := Init(cmp.Or(os.Getenv("LOG_LEVEL"), LogLevelError), "stderr"); err != nil {
		panic(err)
	}
}

// Logger provides access to the global logger.
func Logger() *zerolog.Logger {
	logger := getLogger()
	return &logger
}

func getLogger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// setLogger swaps the global logger and closes the file the old one wrote to.
func setLogger(logger zerolog.Logger, file *os.File) {
	logMu.Lock()
	previous := logFile
	log, logFile = logger, file
	logMu.Unlock()

	if previous != nil && previous != file {
		_ = previous.Close()
	}
}

/*
Init replaces the global logger. output is "stdout", "stderr" or a file path;
paths ending in .json get raw JSON lines, everything else a console writer.
*/
func Init(level, output string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	var (
		out  io.Writer
		file *os.File
	)
	switch output {
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: RFC3339Milli}
	case "stderr", "":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: RFC3339Milli}
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("cannot create log output: %w", err)
		}
		out, file = f, f
		if path.Ext(output) != ".json" {
			out = zerolog.ConsoleWriter{Out: f, TimeFormat: RFC3339Milli, NoColor: true}
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	setLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger(), file)
	return nil
}

// InitWriter sends log lines to w as JSON, for tests.
func InitWriter(level string, w io.Writer) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	setLogger(zerolog.New(w).Level(lvl), nil)
	return nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel, nil
	case LogLevelInfo:
		return zerolog.InfoLevel, nil
	case LogLevelWarn:
		return zerolog.WarnLevel, nil
	case LogLevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

// Level returns the current log level
func Level() string {
	return getLogger().GetLevel().String()
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	Logger().Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	Logger().Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with a special format for errors.
func Errorw(err error, msg string) {
	Logger().Error().Err(err).Msg(msg)
}

// Monitor logs a map of fields at info level.
func Monitor(msg string, fields map[string]any) {
	Logger().Info().Fields(fields).Msg(msg)
}
