package dashboard

import (
	"fmt"
	"testing"

	"github.com/msto63/streamvox/internal/format"
)

func TestFeedSnapshotIsACopy(t *testing.T) {
	f := NewFeed(10)
	f.Broadcast(format.Record{Text: "hello"})
	snap := f.Snapshot()
	snap[0] = "mutated"

	again := f.Snapshot()
	if again[0] != "hello" {
		t.Errorf("Snapshot() returned a view into internal state: got %q", again[0])
	}
}

func TestFeedTruncatesToCapacity(t *testing.T) {
	f := NewFeed(3)
	for i := 0; i < 5; i++ {
		f.Broadcast(format.Record{Text: fmt.Sprintf("line-%d", i)})
	}
	lines := f.Snapshot()
	if len(lines) != 3 {
		t.Fatalf("Snapshot() len = %d; want 3", len(lines))
	}
	want := []string{"line-2", "line-3", "line-4"}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("lines[%d] = %q; want %q", i, line, want[i])
		}
	}
}

func TestFeedCloseIsNoop(t *testing.T) {
	f := NewFeed(1)
	if err := f.Close(); err != nil {
		t.Errorf("Close() = %v; want nil", err)
	}
}
