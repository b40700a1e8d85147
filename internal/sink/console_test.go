package sink

import (
	"testing"

	"github.com/msto63/streamvox/internal/format"
)

func TestConsoleCloseIsNoop(t *testing.T) {
	c := NewConsole()
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v; want nil", err)
	}
}

func TestConsoleBroadcastDoesNotPanic(t *testing.T) {
	c := NewConsole()
	c.Broadcast(format.Record{Text: "hello there"})
}
