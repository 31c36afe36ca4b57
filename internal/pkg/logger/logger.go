package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service is attached to every event so mixed log streams can be filtered.
const Service = "artschool-api"

var defaultLogger zerolog.Logger

// Config represents logger configuration
type Config struct {
	// Level is a zerolog level name. Unknown names fall back to info.
	Level string
	// Pretty switches to the human-readable console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// File, when set, mirrors every event into a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ParseLevel maps a configured level name onto a zerolog level.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Configure replaces the package and global zerolog loggers.
func Configure(config Config) zerolog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(config.Level))

	writer := config.Output
	if config.Pretty {
		writer = zerolog.ConsoleWriter{Out: config.Output, TimeFormat: time.RFC3339}
	}

	if config.File != "" {
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			Compress:   true,
		})
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Str("service", Service).Logger()
	log.Logger = defaultLogger
	return defaultLogger
}

// Get returns the configured logger so it can be injected into components.
func Get() zerolog.Logger {
	return defaultLogger
}

func Info() *zerolog.Event {
	return defaultLogger.Info()
}

func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func Error() *zerolog.Event {
	return defaultLogger.Error()
}

func init() {
	Configure(Config{Level: "info", Pretty: true})
}
