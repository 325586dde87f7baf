// Package logging emits the run trace dartcc produces in verbose mode:
// one JSON event per configure/condition/execute decision.
package logging

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Level orders trace events by severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger receives structured events from the executor and runner.
type Logger interface {
	Log(level Level, msg string, fields map[string]any)
}

// event is the wire form of one trace entry.
type event struct {
	Time   string         `json:"time"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// TraceWriter writes events at or above a minimum level as JSON lines.
type TraceWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	min Level
}

// NewTraceWriter creates a TraceWriter emitting events of at least min
// severity to w.
func NewTraceWriter(w io.Writer, min Level) *TraceWriter {
	return &TraceWriter{enc: json.NewEncoder(w), min: min}
}

// Log encodes one event. Events below the minimum level are dropped.
func (t *TraceWriter) Log(level Level, msg string, fields map[string]any) {
	if level < t.min {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.enc.Encode(event{
		Time:   time.Now().UTC().Format(time.RFC3339),
		Level:  level.String(),
		Msg:    msg,
		Fields: fields,
	})
}

type nop struct{}

func (nop) Log(Level, string, map[string]any) {}

// Nop returns a logger that drops every event.
func Nop() Logger { return nop{} }
