package logger

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// logEntry is one fully-formatted log line plus the level it was logged
// at, queued onto a Backend's writeChan for its single writer goroutine to
// fan out to every registered writer.
type logEntry struct {
	level Level
	log   []byte
}

// Logger writes tagged, leveled messages to a Backend. Every package in
// this module that logs declares its own subsystem Logger at package
// scope, the `var log = logger.RegisterSubSystem("TAG")` convention.
type Logger struct {
	level     Level
	subsystem string
	backend   *Backend
	writeChan chan logEntry
}

// SetLevel changes the minimum level l will emit.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns l's current minimum level.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) write(level Level, s string) {
	if level < l.level {
		return
	}
	line := formatLogLine(level, l.subsystem, l.backend.flag, s)
	// After Close the channel is closed and the send panics; recover so
	// the entry is dropped instead.
	defer func() { _ = recover() }()
	select {
	case l.writeChan <- logEntry{level: level, log: line}:
	default:
		// The channel is full (the backend isn't running, or is behind);
		// drop rather than block the caller.
	}
}

func formatLogLine(level Level, subsystem string, flags uint32, s string) []byte {
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(subsystem)
	b.WriteByte(':')
	if flags&(LogFlagLongFile|LogFlagShortFile) != 0 {
		_, file, line, ok := runtime.Caller(3)
		if ok {
			if flags&LogFlagShortFile != 0 {
				if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
					file = file[idx+1:]
				}
			}
			b.WriteByte(' ')
			b.WriteString(file)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(line))
		}
	}
	b.WriteByte(' ')
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	b.WriteString(s)
	return []byte(b.String())
}

// Tracef logs at LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.write(LevelTrace, fmt.Sprintf(format, args...))
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...))
}

// Criticalf logs at LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, fmt.Sprintf(format, args...))
}

// Backend returns the Backend l writes to.
func (l *Logger) Backend() *Backend {
	return l.backend
}

// defaultBackend is the process-wide Backend RegisterSubSystem attaches
// new subsystem Loggers to, mirroring the teacher's convention of one
// shared Backend per process with many per-package Loggers. Callers that
// need a file sink call defaultBackend.AddLogFile and defaultBackend.Run
// during startup (outside this package's scope - ambient config wiring is
// the embedding application's job, not the ledger core's).
var defaultBackend = NewBackend()

// RegisterSubSystem returns a Logger for tag attached to the package-wide
// default Backend, at LevelInfo. Each package that logs declares one of
// these at file scope: `var log = logger.RegisterSubSystem("LEDG")`.
func RegisterSubSystem(tag string) *Logger {
	l := defaultBackend.Logger(tag)
	l.SetLevel(LevelInfo)
	return l
}

// DefaultBackend returns the shared Backend RegisterSubSystem uses, so an
// embedding application can add log file sinks and start it.
func DefaultBackend() *Backend {
	return defaultBackend
}
