// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, console formatting and optional file rotation.
type Options struct {
	Level   string
	Console bool

	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
	FileCompress   bool
}

// New returns a logger writing to stdout (console-formatted when
// opts.Console is set) and, when opts.File is set, to a rotated log file.
// The returned closer releases the file handle; it is a no-op otherwise.
func New(opts Options) (zerolog.Logger, io.Closer) {
	var stdout io.Writer = os.Stdout
	if opts.Console {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return newWithWriter(stdout, opts)
}

func newWithWriter(stdout io.Writer, opts Options) (zerolog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	out := stdout
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.FileMaxSizeMB,
			MaxBackups: opts.FileMaxBackups,
			MaxAge:     opts.FileMaxAgeDays,
			Compress:   opts.FileCompress,
		}
		out = zerolog.MultiLevelWriter(stdout, rotator)
		closer = rotator
	}

	logger := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Str("service", "nuclibook").
		Logger()
	return logger, closer
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
