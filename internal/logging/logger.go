// Package logging is the human-readable log for CineScope.
//
// The TUI owns the terminal, so log lines go to a dated file under the data
// directory. Every helper is a no-op until Init (or SetOutput) is called,
// which keeps library packages and tests quiet by default.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	logger  *log.Logger
	logFile *os.File
)

// Init opens <dataDir>/logs/cinescope-YYYY-MM-DD.log for appending.
func Init(dataDir string, level log.Level) error {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("cinescope-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = newLogger(f, level)
	mu.Unlock()

	Info("CineScope started")
	return nil
}

// SetOutput logs to w instead of a file. Passing nil disables logging.
func SetOutput(w io.Writer, level log.Level) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		logger = nil
		return
	}
	logger = newLogger(w, level)
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Close flushes a shutdown line and closes the log file.
func Close() {
	Info("CineScope shutting down")
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = nil
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	if l := current(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	if l := current(); l != nil {
		l.Info(msg, keyvals...)
	}
}

// Warn logs a warning.
func Warn(msg string, keyvals ...interface{}) {
	if l := current(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	if l := current(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// WithPrefix returns a prefixed logger, or nil before Init.
func WithPrefix(prefix string) *log.Logger {
	if l := current(); l != nil {
		return l.WithPrefix(prefix)
	}
	return nil
}
