package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogLevelError logs only errors.
	LogLevelError LogLevel = iota
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn
	// LogLevelInfo logs info, warnings, and errors.
	LogLevelInfo
	// LogLevelDebug logs everything including debug messages.
	LogLevelDebug
)

// String returns the string representation of LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// color returns the printer used for the level tag.
func (l LogLevel) color() *color.Color {
	switch l {
	case LogLevelError:
		return color.New(color.FgRed, color.Bold)
	case LogLevelWarn:
		return color.New(color.FgYellow)
	case LogLevelInfo:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgHiBlack)
	}
}

// Logger provides leveled logging with a debug mode.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	level  LogLevel
	debug  bool
}

// Global logger instance. Warnings are shown by default.
var defaultLogger = &Logger{
	output: os.Stderr,
	level:  LogLevelWarn,
}

// SetDebug enables or disables debug logging.
func SetDebug(debug bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.debug = debug
	if debug {
		defaultLogger.level = LogLevelDebug
	} else {
		defaultLogger.level = LogLevelWarn
	}
}

// IsDebug returns whether debug logging is enabled.
func IsDebug() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.debug
}

// SetOutput sets the output writer for the logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(output io.Writer, debug bool) *Logger {
	level := LogLevelWarn
	if debug {
		level = LogLevelDebug
	}
	return &Logger{
		output: output,
		level:  level,
		debug:  debug,
	}
}

// log writes a log message at the given level.
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.level {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	message := SanitizeErrorMessage(fmt.Sprintf(format, args...))
	fmt.Fprintf(l.output, "[%s] %s: %s\n", timestamp, level.color().Sprint(level.String()), message)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// LogAPIRequest logs an API request in debug mode.
func (l *Logger) LogAPIRequest(provider, url, model string, promptLength int) {
	if !l.debug {
		return
	}
	l.Debug("API Request: provider=%s, url=%s, model=%s, prompt_length=%d",
		provider, url, model, promptLength)
}

// LogAPIResponse logs an API response in debug mode.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	if !l.debug {
		return
	}
	l.Debug("API Response: provider=%s, status=%d, response_length=%d, duration=%v",
		provider, statusCode, responseLength, duration.Round(time.Millisecond))
}

// LogBody logs a request or response body in debug mode, truncated to keep the log readable.
func (l *Logger) LogBody(label string, body []byte) {
	if !l.debug {
		return
	}
	text := string(body)
	if len(text) > maxLoggedBody {
		text = text[:maxLoggedBody] + "... [truncated]"
	}
	l.Debug("%s:\n%s", label, strings.TrimRight(text, "\n"))
}

// maxLoggedBody caps how much of an HTTP body the debug log echoes.
const maxLoggedBody = 4096

// Package-level logging functions using the default logger

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in debug mode.
func LogAPIRequest(provider, url, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, url, model, promptLength)
}

// LogAPIResponse logs an API response in debug mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// LogBody logs an HTTP body in debug mode.
func LogBody(label string, body []byte) {
	defaultLogger.LogBody(label, body)
}
