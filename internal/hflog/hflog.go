// Package hflog provides the leveled, file-backed logger every other
// component in this module writes through. It generalizes the
// teacher's own (referenced but undefined) `logger = &LeveledLogger{Level: LevelInfo}`
// pattern from brandur-mastodon-cross-post/main.go into a small,
// reusable type, writing timestamped lines the way the original Rust
// implementation's simplelog::WriteLogger did (SPEC_FULL.md §4.10).
package hflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level orders log severities from most to least important.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger is a minimal leveled logger writing to an io.Writer. The zero
// value writes to os.Stderr at LevelError.
type Logger struct {
	Level Level
	Out   io.Writer

	mu sync.Mutex
}

// New returns a Logger at the given level writing to w.
func New(level Level, w io.Writer) *Logger {
	return &Logger{Level: level, Out: w}
}

func (l *Logger) writer() io.Writer {
	if l.Out == nil {
		return os.Stderr
	}
	return l.Out
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level > l.Level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer(), "%s [%s] %s\n", time.Now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(LevelTrace, format, args...) }
