// Package logging provides the leveled logger used by the CLI driver and
// the live query bridge. The core parser never imports this package —
// per spec.md §7, recoverable errors are silent and only visible through
// Parser.Stats(); logging is purely an ambient concern of the two driver
// programs that sit around the core.
package logging

import (
	"fmt"
	logpkg "log"
	"os"
	"strings"
)

// Level defines severity for logger output.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
)

// Logger provides leveled logging over a standard library *log.Logger.
// Every bridge session runs against the bridge's one shared Parser, so a
// Logger also carries an immutable set of structured fields — a session
// ID, a query's [begin,end) window — that every derived log line repeats,
// letting a reader grep one session's traffic out of a busy server's
// interleaved output without a separate correlation-ID plumbing layer.
type Logger struct {
	level  Level
	logger *logpkg.Logger
	fields string
}

// New creates a logger at the given level and prefix, writing to stdout.
func New(level Level, prefix string) *Logger {
	return &Logger{
		level:  level,
		logger: logpkg.New(os.Stdout, prefix, logpkg.LstdFlags|logpkg.Lmicroseconds),
	}
}

// SetLevel adjusts the current logging level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level = level
}

// WithFields returns a derived Logger that shares this Logger's sink and
// level but appends the given key=value pairs to every message, e.g.
// WithFields("session", sessionID, "query", "[100,200)"). Fields accumulate
// across nested calls rather than replacing the parent's.
func (l *Logger) WithFields(kv ...string) *Logger {
	if l == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString(l.fields)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(kv[i])
		b.WriteByte('=')
		b.WriteString(kv[i+1])
	}
	return &Logger{level: l.level, logger: l.logger, fields: b.String()}
}

func (l *Logger) logf(target Level, format string, args ...any) {
	if l == nil || target > l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.fields != "" {
		msg = msg + " |" + l.fields
	}
	l.logger.Output(3, msg)
}

// Infof prints info messages.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf prints warning messages.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf prints error messages.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

var defaultLogger = New(LevelInfo, "[vcdtrace] ")

// Default returns the global logger shared by the CLI and bridge.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the global logger (primarily for tests).
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
}
