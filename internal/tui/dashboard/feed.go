package dashboard

import (
	"sync"

	"github.com/msto63/streamvox/internal/format"
)

// Feed is a sink.Sink that keeps the most recent emitted lines in memory
// for the dashboard to render; it never blocks and never fails.
type Feed struct {
	mu    sync.Mutex
	lines []string
	cap   int
}

// NewFeed returns a Feed retaining up to capacity lines.
func NewFeed(capacity int) *Feed {
	return &Feed{cap: capacity}
}

func (f *Feed) Broadcast(record format.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, record.Text)
	if len(f.lines) > f.cap {
		f.lines = f.lines[len(f.lines)-f.cap:]
	}
}

func (f *Feed) Close() error { return nil }

// Snapshot returns a copy of the currently retained lines.
func (f *Feed) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}
