// Package logging provides the process-wide structured logger.
//
// The package wraps logrus and exposes a single global logger that is
// initialized once and then retrieved via GetLogger. Subsystems obtain
// their logger here rather than constructing their own, so level and
// output destination are controlled from one place.
//
// Call Init once at program startup; GetLogger lazily falls back to
// sensible defaults (INFO, text, stdout) when Init was never called.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	logger   *logrus.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
	isInited bool
)

// Config holds logger configuration.
type Config struct {
	Level      string // "debug", "info", "warn", "error"
	OutputPath string // empty for stdout
	Format     string // "json" or "text"
}

// Init initializes the global logger. Calling Init twice without an
// intervening Close is an error.
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return errors.New("logger already initialized; call Close first to reinitialize")
	}

	var writer io.Writer = os.Stdout
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.Wrap(err, "failed to open log file")
		}
		writer = file
		logFile = file
	}

	level := logrus.InfoLevel
	if config.Level != "" {
		parsed, err := logrus.ParseLevel(config.Level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", config.Level)
		}
		level = parsed
	}

	l := logrus.New()
	l.SetOutput(writer)
	l.SetLevel(level)
	if config.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger = l
	isInited = true
	return nil
}

// Close closes the logger and any open file handle. Init may be called
// again afterwards. Safe to call multiple times.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger = nil
	isInited = false
	return err
}

// GetLogger returns the global logger, initializing defaults on first use.
func GetLogger() *logrus.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		l := logrus.New()
		l.SetOutput(os.Stdout)
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger = l
		isInited = true
	}
	return logger
}

// Debug logs a debug message.
func Debug(args ...any) {
	GetLogger().Debug(args...)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	GetLogger().Debugf(format, args...)
}

// Info logs an info message.
func Info(args ...any) {
	GetLogger().Info(args...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	GetLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...any) {
	GetLogger().Warnf(format, args...)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...any) {
	GetLogger().Errorf(format, args...)
}
