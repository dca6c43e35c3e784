// Package logging hands out scoped pion loggers that share one output and
// one level, so the CLI can adjust verbosity for every package at once.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pion/logging"
)

var (
	mu            sync.Mutex
	loggerFactory = logging.NewDefaultLoggerFactory()
	loggers       = map[string]*logging.DefaultLeveledLogger{}
)

// NewLogger returns the leveled logger for scope. Repeated calls with the
// same scope return the same logger.
func NewLogger(scope string) logging.LeveledLogger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[scope]; ok {
		return l
	}

	l := loggerFactory.NewLogger(scope)
	if dl, ok := l.(*logging.DefaultLeveledLogger); ok {
		loggers[scope] = dl
	}

	return l
}

// SetLevel changes the level of every logger handed out so far and of all
// future ones. Scope levels configured through PION_LOG_* stay in effect for
// loggers created later.
func SetLevel(level logging.LogLevel) {
	mu.Lock()
	defer mu.Unlock()

	loggerFactory.DefaultLogLevel = level
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	loggerFactory.Writer = w
	for _, l := range loggers {
		l.WithOutput(w)
	}
}

// ParseLevel converts a level name such as "debug" or "warn" to a LogLevel.
func ParseLevel(name string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("logging: unknown level %q", name)
	}
}
