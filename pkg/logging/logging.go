// Package logging builds the slog logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Options configure New.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// File, when set, receives a rotated copy of every record.
	File string
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// New returns a text logger writing to out and, if opts.File is set, to a
// rotating file. The returned closer releases the file.
func New(out io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(out, file)
		closer = file
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
