package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled logging with an optional component prefix
type Logger struct {
	level     LogLevel
	component string
	root      *Logger // component loggers follow the level of their root
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger creates a logger based on the PHSTATS_LOG_LEVEL environment
// variable, falling back to LOG_LEVEL and then INFO.
func NewDefaultLogger() *Logger {
	levelStr := os.Getenv("PHSTATS_LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	return &Logger{level: ParseLogLevel(levelStr)}
}

// ParseLogLevel maps a level name to a LogLevel. Unknown names are INFO.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Component returns a logger sharing this level that tags every line with
// [name].
func (l *Logger) Component(name string) *Logger {
	root := l
	if l.root != nil {
		root = l.root
	}
	return &Logger{component: name, root: root}
}

func (l *Logger) printf(tag, format string, args ...interface{}) {
	if l.component != "" {
		format = "[" + l.component + "] " + format
	}
	log.Printf(tag+" "+format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	if l.root != nil {
		return l.root.level
	}
	return l.level
}

// SetLevel changes the verbosity, e.g. after configuration is loaded
func (l *Logger) SetLevel(level LogLevel) {
	if l.root != nil {
		l.root.level = level
		return
	}
	l.level = level
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.GetLevel() >= LogLevelError {
		l.printf("[ERROR]", format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.GetLevel() >= LogLevelWarn {
		l.printf("[WARN]", format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.GetLevel() >= LogLevelInfo {
		l.printf("[INFO]", format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.GetLevel() >= LogLevelDebug {
		l.printf("[DEBUG]", format, args...)
	}
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
