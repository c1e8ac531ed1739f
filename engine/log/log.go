// Package log provides the engine's structured logger: a *slog.Logger writing JSON records to a
// size-rotated file, optionally mirrored to stderr. All methods accept a nil *Logger, in which case
// debug and info records are dropped and warnings and errors go to the default slog logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a *slog.Logger with nil-safe, printf-style helpers.
type Logger struct {
	*slog.Logger

	// LogFile is the path of the rotated log file, or empty when logging to a caller-supplied writer.
	LogFile string

	// Start is the time the logger was created.
	Start time.Time
}

// loggerConfig collects the options applied by New.
type loggerConfig struct {
	level  string
	dir    string
	file   string
	stderr bool
	writer io.Writer
}

// New creates a Logger. By default it logs at info level to oxy-sprite.slog in the user config
// directory, rotating the file at 32 MB and keeping one backup.
//
// Parameters:
//   - options: LoggerBuilderOption values (level, directory, stderr mirroring, custom writer)
//
// Returns:
//   - *Logger: the configured logger
func New(options ...LoggerBuilderOption) *Logger {
	cfg := &loggerConfig{
		level: "info",
		file:  "oxy-sprite.slog",
	}
	for _, opt := range options {
		opt(cfg)
	}

	var w io.Writer
	var logFile string
	if cfg.writer != nil {
		w = cfg.writer
	} else {
		dir := cfg.dir
		if dir == "" {
			var err error
			dir, err = os.UserConfigDir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "unable to find user config dir: %v\n", err)
				dir = "."
			}
			dir = filepath.Join(dir, "OxySprite")
		}
		lj := &lumberjack.Logger{
			Filename:   filepath.Join(dir, cfg.file),
			MaxSize:    32, // MB
			MaxBackups: 1,
		}
		if cfg.level == "debug" {
			lj.MaxSize = 256
		}
		w = lj
		logFile = lj.Filename
	}
	if cfg.stderr {
		w = io.MultiWriter(w, os.Stderr)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(cfg.level),
		AddSource: cfg.level == "debug",
	})
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: logFile,
		Start:   time.Now(),
	}

	l.Info("logger started",
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH),
		slog.Int("NumCPUs", runtime.NumCPU()))

	return l
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) enabled(level slog.Level) bool {
	return l != nil && l.Logger != nil && l.Logger.Enabled(context.Background(), level)
}

func (l *Logger) Debug(msg string, args ...any) {
	if l.enabled(slog.LevelDebug) {
		l.Logger.Debug(msg, args...)
	}
}

// Debugf logs a printf-style formatted message at debug level.
func (l *Logger) Debugf(msg string, args ...any) {
	if l.enabled(slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.enabled(slog.LevelInfo) {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l.enabled(slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil || l.Logger == nil {
		slog.Warn(msg, args...)
		return
	}
	l.Logger.Warn(msg, args...)
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil || l.Logger == nil {
		slog.Error(msg, args...)
		return
	}
	l.Logger.Error(msg, args...)
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}

// With returns a Logger that adds args to every record. A nil receiver stays nil.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.Logger == nil {
		return l
	}
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		Start:   l.Start,
	}
}
