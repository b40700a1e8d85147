// Package logx provides the structured leveled logger used throughout
// streamvox: key=value lines on the console by default, or JSON when
// configured for machine consumption.
package logx

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fields is a set of structured attributes attached to a single log entry.
type Fields map[string]any

// Format selects the on-wire rendering of a log entry.
type Format int

const (
	FormatKV Format = iota
	FormatJSON
)

// Logger is a cheap-to-copy handle; WithFields/WithComponent clone it.
type Logger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	format Format
	fields Fields
}

// New returns a Logger writing key=value lines to os.Stderr at the given level.
func New(level Level) *Logger {
	return &Logger{mu: &sync.Mutex{}, out: os.Stderr, level: level, format: FormatKV, fields: Fields{}}
}

// WithOutput returns a clone writing to w.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	c := l.clone()
	c.out = w
	return c
}

// WithFormat returns a clone using the given rendering format.
func (l *Logger) WithFormat(f Format) *Logger {
	c := l.clone()
	c.format = f
	return c
}

// WithFields returns a clone with additional persistent fields merged in.
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// WithComponent is shorthand for WithFields(Fields{"component": name}).
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithFields(Fields{"component": name})
}

func (l *Logger) clone() *Logger {
	f := make(Fields, len(l.fields))
	for k, v := range l.fields {
		f[k] = v
	}
	return &Logger{mu: l.mu, out: l.out, level: l.level, format: l.format, fields: f}
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Fields) { l.log(LevelError, msg, fields...) }

func (l *Logger) log(level Level, msg string, extra ...Fields) {
	if level < l.level {
		return
	}
	merged := make(Fields, len(l.fields)+4)
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, e := range extra {
		for k, v := range e {
			merged[k] = v
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.format {
	case FormatJSON:
		fmt.Fprintln(l.out, renderJSON(level, msg, merged))
	default:
		fmt.Fprintln(l.out, renderKV(level, msg, merged))
	}
}

func renderKV(level Level, msg string, fields Fields) string {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString("level=")
	b.WriteString(level.String())
	b.WriteString(" msg=")
	b.WriteString(quoteIfNeeded(msg))
	for _, k := range sortedKeys(fields) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(fmt.Sprintf("%v", fields[k])))
	}
	return b.String()
}

func renderJSON(level Level, msg string, fields Fields) string {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "%q:%q,%q:%q,%q:%q", "ts", time.Now().UTC().Format(time.RFC3339Nano), "level", level.String(), "msg", msg)
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&b, ",%q:%q", k, fmt.Sprintf("%v", fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
