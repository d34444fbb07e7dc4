// Package logger builds the structured loggers used by all binaries.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // Enable pretty console output
	Dir    string // Directory for rotated log files; empty disables file output
	Name   string // Log file base name (e.g., "load"); used only when Dir is set
}

// New creates a new structured logger. When cfg.Dir is set, output is
// duplicated to a size-rotated file kept for 30 days, matching the
// retention of the rest of the data directories.
func New(cfg Config) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	output := console
	if cfg.Dir != "" {
		name := cfg.Name
		if name == "" {
			name = "indexdata"
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name+".log"),
			MaxSize:    50, // megabytes
			MaxAge:     30, // days
			MaxBackups: 30,
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}
