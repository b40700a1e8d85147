// Package sink delivers formatted transcription records to their final
// destination: the console, and any WebSocket clients subscribed to the
// live broadcast endpoint.
package sink

import "github.com/msto63/streamvox/internal/format"

// Sink is the minimal broadcast contract: best-effort, non-blocking.
// Failures are logged by the implementation and otherwise swallowed.
type Sink interface {
	Broadcast(record format.Record)
	Close() error
}

// Multi fans a broadcast out to several sinks, calling each one in turn on
// the caller's goroutine; a sink that blocks in Broadcast holds up the sinks
// after it.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks into one Sink.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Broadcast(record format.Record) {
	for _, s := range m.sinks {
		s.Broadcast(record)
	}
}

func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
