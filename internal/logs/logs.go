// Package logs implements a small subsystem-aware logging backend in the
// style of btcsuite's btclog: a single Backend fans log lines out to one or
// more io.Writers, and each subsystem gets its own Logger with an
// independently configurable level.
package logs

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the verbosity of a Logger.
type Level uint32

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelStrings = map[Level]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
	LevelOff:      "OFF",
}

func (l Level) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNK"
}

// LevelFromString maps a case-insensitive level name to a Level. It returns
// LevelInfo and false when the name is not recognized.
func LevelFromString(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// BackendWriter pairs an io.Writer with the minimum level it accepts.
type BackendWriter struct {
	w        io.Writer
	minLevel Level
}

// NewAllLevelsBackendWriter returns a BackendWriter that accepts every level.
func NewAllLevelsBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelTrace}
}

// NewErrorBackendWriter returns a BackendWriter that accepts LevelError and
// above only.
func NewErrorBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelError}
}

// Backend is the shared sink every subsystem Logger writes through.
type Backend struct {
	mtx     sync.Mutex
	writers []*BackendWriter
}

// NewBackend creates a Backend that fans out to the given writers.
func NewBackend(writers []*BackendWriter) *Backend {
	return &Backend{writers: writers}
}

// Logger returns a new Logger for the given subsystem tag, defaulting to
// LevelInfo.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{
		backend: b,
		tag:     subsystemTag,
		level:   LevelInfo,
	}
}

// Close closes every underlying writer that implements io.Closer.
func (b *Backend) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, bw := range b.writers {
		if c, ok := bw.w.(io.Closer); ok {
			c.Close()
		}
	}
}

func (b *Backend) print(lvl Level, tag, s string) {
	line := fmt.Sprintf("%s [%s] %s %s\n", time.Now().Format("2006-01-02 15:04:05.000"), lvl, tag, s)
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, bw := range b.writers {
		if lvl >= bw.minLevel {
			io.WriteString(bw.w, line)
		}
	}
}

// Logger is a per-subsystem logging handle sharing a Backend.
type Logger struct {
	backend *Backend
	tag     string
	level   Level
}

// SetLevel sets this subsystem's verbosity threshold.
func (l *Logger) SetLevel(lvl Level) { l.level = lvl }

// Level returns the current verbosity threshold.
func (l *Logger) Level() Level { return l.level }

// Backend returns the shared backend.
func (l *Logger) Backend() *Backend { return l.backend }

func (l *Logger) write(lvl Level, s string) {
	if lvl < l.level {
		return
	}
	l.backend.print(lvl, l.tag, s)
}

func (l *Logger) Tracef(format string, args ...interface{})    { l.write(LevelTrace, fmt.Sprintf(format, args...)) }
func (l *Logger) Debugf(format string, args ...interface{})    { l.write(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})     { l.write(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})     { l.write(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{})    { l.write(LevelError, fmt.Sprintf(format, args...)) }
func (l *Logger) Criticalf(format string, args ...interface{}) { l.write(LevelCritical, fmt.Sprintf(format, args...)) }

// Disabled is a Logger that discards everything; useful as a default for
// packages that allow the caller to opt out of logging.
var Disabled = NewBackend([]*BackendWriter{}).Logger("DISB")
