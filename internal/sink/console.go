package sink

import (
	"fmt"

	"github.com/msto63/streamvox/internal/format"
)

// Console prints the record's text to stdout, matching the reference
// formatter's "TRANSCRIPT: <text>" line.
type Console struct{}

// NewConsole returns a Console sink.
func NewConsole() *Console { return &Console{} }

func (c *Console) Broadcast(record format.Record) {
	fmt.Printf("TRANSCRIPT: %s\n", record.Text)
}

func (c *Console) Close() error { return nil }
