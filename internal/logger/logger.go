package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// VerboseChecker interface for checking verbose state
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger provides component-scoped structured logging with verbose support
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	out            *output
}

// output is shared by a logger and every logger derived from it, so a
// sink swap (stderr -> rotating file while the TUI owns the terminal)
// reaches all components.
type output struct {
	mu     sync.Mutex
	writer io.Writer
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// New creates a new logger instance writing to stderr
func New(component string, verboseChecker VerboseChecker) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		out:            &output{writer: os.Stderr},
	}
}

// NewWithCallback creates a new logger instance with a callback function
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, &callbackChecker{callback: verboseCheck})
}

// Discard returns a logger that drops everything; used by tests and by
// callers that do not care about diagnostics.
func Discard() *Logger {
	return &Logger{component: "discard", out: &output{writer: io.Discard}}
}

// WithComponent creates a logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		out:            l.out,
	}
}

// SetOutput redirects this logger and all loggers sharing its output
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.writer = w
}

// callbackChecker implements VerboseChecker with a callback function
type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

func (l *Logger) verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.verbose() {
		l.log("DEBUG", msg, nil, args...)
	}
}

// Info logs informational messages (only when verbose=true)
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.verbose() {
		l.log("INFO", msg, nil, args...)
	}
}

// Warn logs warning messages (always shown)
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log("WARN", msg, nil, args...)
}

// Error logs error messages (always shown)
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log("ERROR", msg, nil, args...)
}

// DebugWithFields logs debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.log("DEBUG", msg, fields, args...)
	}
}

// InfoWithFields logs info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.log("INFO", msg, fields, args...)
	}
}

// ErrorWithFields logs error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields []Field, args ...interface{}) {
	l.log("ERROR", msg, fields, args...)
}

// log formats and writes one log line
func (l *Logger) log(level, msg string, fields []Field, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	component := l.component
	if component == "" {
		component = "main"
	}

	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}

	var fieldsStr string
	if len(fields) > 0 {
		fieldStrings := make([]string, 0, len(fields))
		for _, field := range fields {
			fieldStrings = append(fieldStrings, fmt.Sprintf("%s=%v", field.Key, field.Value))
		}
		fieldsStr = fmt.Sprintf(" [%s]", strings.Join(fieldStrings, " "))
	}

	logLine := fmt.Sprintf("[%s] %s [%s] %s%s\n", timestamp, level, component, formattedMsg, fieldsStr)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	// Nothing sensible to do when the log sink itself fails
	_, _ = io.WriteString(l.out.writer, logLine)
}

// Helper functions for common field types
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func File(name string) Field {
	return Field{Key: "file", Value: name}
}
