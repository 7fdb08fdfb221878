// Structured logging for the motion smoothing daemon
//
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package log provides leveled, structured logging with per-component
// prefixes and a text or JSON output format.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the name of the level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	}
	return INFO
}

// Format selects the output encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Fields is a set of structured key-value pairs attached to a message.
type Fields map[string]interface{}

// Logger writes leveled log records. Loggers derived with Component or
// WithFields share the parent's writer, level and format.
type Logger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  *Level
	format *Format

	prefix string
	fields Fields
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level, format Format) *Logger {
	l := level
	f := format
	return &Logger{mu: &sync.Mutex{}, out: w, level: &l, format: &f}
}

var std = New(os.Stderr, INFO, FormatText)

// Default returns the process-wide logger.
func Default() *Logger {
	return std
}

// SetLevel changes the minimum level emitted by this logger and all loggers
// derived from it.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	*l.level = level
	l.mu.Unlock()
}

// Component returns a derived logger whose records carry the component name.
func (l *Logger) Component(name string) *Logger {
	d := *l
	if d.prefix != "" {
		name = d.prefix + "." + name
	}
	d.prefix = name
	return &d
}

// WithFields returns a derived logger whose records carry the given fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	d := *l
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	d.fields = merged
	return &d
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < *l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	now := time.Now()
	if *l.format == FormatJSON {
		rec := make(map[string]interface{}, len(l.fields)+4)
		for k, v := range l.fields {
			rec[k] = v
		}
		rec["time"] = now.Format(time.RFC3339Nano)
		rec["level"] = level.String()
		if l.prefix != "" {
			rec["component"] = l.prefix
		}
		rec["msg"] = msg
		if b, err := json.Marshal(rec); err == nil {
			fmt.Fprintf(l.out, "%s\n", b)
		}
		return
	}
	var sb strings.Builder
	sb.WriteString(now.Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("]")
	if l.prefix != "" {
		sb.WriteString(" ")
		sb.WriteString(l.prefix)
		sb.WriteString(":")
	}
	sb.WriteString(" ")
	sb.WriteString(msg)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, l.fields[k])
		}
	}
	sb.WriteString("\n")
	io.WriteString(l.out, sb.String())
}
