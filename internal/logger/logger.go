// Package logger is kiln's minimal logging facade. It exists for the
// diagnostics that fall outside the interactive-I/O contract described
// in SPEC_FULL.md (reaper internals, launcher failures, the fatal-abort
// path) — everything user-facing (prompts, job announcements, builtin
// errors) is written directly to stdout/stderr by the component that
// owns that contract, not through this package.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// A Logger is a fairly minimal logging tool.
type Logger interface {
	Notice(msg string) // a message the user should see
	Debug(msg string)  // a message only useful when debugging kiln itself
}

type nullLogger struct{}

func (nullLogger) Notice(string) {}
func (nullLogger) Debug(string)  {}

// NullLogger is a logger that does nothing.
var NullLogger = nullLogger{}

var logger Logger = NullLogger

// Panicf notifies the user and then panics.
func Panicf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	logger.Notice("PANIC " + msg)
	panic(msg)
}

// Noticef notifies the user of something.
func Noticef(format string, v ...interface{}) { logger.Notice(fmt.Sprintf(format, v...)) }

// Debugf records something in the debug log.
func Debugf(format string, v ...interface{}) { logger.Debug(fmt.Sprintf(format, v...)) }

// MockLogger replaces the existing logger with a buffer and returns
// the log buffer and a restore function.
func MockLogger(prefix string) (buf *bytes.Buffer, restore func()) {
	buf = &bytes.Buffer{}
	oldLogger := logger
	SetLogger(New(buf, prefix))
	return buf, func() {
		SetLogger(oldLogger)
	}
}

// SetLogger sets the global logger to the given one. It must be called
// from a single goroutine before any logs are written.
func SetLogger(l Logger) {
	logger = l
}

type defaultLogger struct {
	w      io.Writer
	prefix string

	buf []byte
	mu  sync.Mutex
}

// Debug only prints if KILN_DEBUG is set.
func (l *defaultLogger) Debug(msg string) {
	if os.Getenv("KILN_DEBUG") != "" {
		l.Notice("DEBUG " + msg)
	}
}

// Notice writes a timestamped, prefixed line to the underlying writer.
func (l *defaultLogger) Notice(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf = l.buf[:0]
	now := time.Now().UTC()
	l.buf = now.AppendFormat(l.buf, timestampFormat)
	l.buf = append(l.buf, ' ')
	l.buf = append(l.buf, l.prefix...)
	l.buf = append(l.buf, msg...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		l.buf = append(l.buf, '\n')
	}
	l.w.Write(l.buf)
}

// New creates a Logger using the given io.Writer and prefix (printed
// between the timestamp and the message).
func New(w io.Writer, prefix string) Logger {
	return &defaultLogger{w: w, prefix: prefix}
}
