package sink

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/streamvox/internal/format"
	"github.com/msto63/streamvox/internal/logx"
)

func TestWebSocketBroadcastsToConnectedSubscriber(t *testing.T) {
	w := NewWebSocket(logx.New(logx.LevelError))
	defer w.Close()

	server := httptest.NewServer(w.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// Give the Handler goroutine a moment to register the connection.
	time.Sleep(20 * time.Millisecond)

	w.Broadcast(format.Record{Text: "hello there"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var record format.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if record.Text != "hello there" {
		t.Errorf("record.Text = %q; want %q", record.Text, "hello there")
	}
}

func TestWebSocketCloseDropsClients(t *testing.T) {
	w := NewWebSocket(logx.New(logx.LevelError))
	server := httptest.NewServer(w.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	time.Sleep(20 * time.Millisecond)

	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v; want nil", err)
	}
}

func TestWebSocketBroadcastWithNoSubscribersDoesNotBlock(t *testing.T) {
	w := NewWebSocket(logx.New(logx.LevelError))
	defer w.Close()
	w.Broadcast(format.Record{Text: "nobody listening"})
}
