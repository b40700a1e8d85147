package sink

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/msto63/streamvox/internal/format"
	"github.com/msto63/streamvox/internal/logx"
)

// writeTimeout bounds how long a single client write may block; a write that
// fails or times out drops the record and removes that client.
const writeTimeout = 250 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket is a broadcast-only sink: it accepts subscriber connections on
// its Handler and fans every Broadcast call out to all of them.
type WebSocket struct {
	log *logx.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	in chan format.Record
	done chan struct{}
}

// NewWebSocket starts the background fan-out loop; call Handler to obtain
// the http.HandlerFunc to mount on the metrics/transcript server.
func NewWebSocket(log *logx.Logger) *WebSocket {
	w := &WebSocket{
		log:     log.WithComponent("sink.websocket"),
		clients: map[*websocket.Conn]chan []byte{},
		in:      make(chan format.Record, 100),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *WebSocket) run() {
	for {
		select {
		case record := <-w.in:
			w.fanOut(record)
		case <-w.done:
			return
		}
	}
}

func (w *WebSocket) fanOut(record format.Record) {
	payload, err := json.Marshal(record)
	if err != nil {
		w.log.Error("marshal broadcast record failed", logx.Fields{"error": err})
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for conn, queue := range w.clients {
		select {
		case queue <- payload:
		default:
			w.log.Warn("client queue saturated, dropping record", nil)
			_ = conn
		}
	}
}

// Broadcast enqueues record for fan-out; best-effort, never blocks the caller.
func (w *WebSocket) Broadcast(record format.Record) {
	select {
	case w.in <- record:
	default:
		w.log.Warn("broadcast queue saturated, dropping record", nil)
	}
}

// Handler upgrades incoming connections and registers them as subscribers.
func (w *WebSocket) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			w.log.Warn("websocket upgrade failed", logx.Fields{"error": err})
			return
		}
		queue := make(chan []byte, 16)
		subscriberID := uuid.New().String()
		w.mu.Lock()
		w.clients[conn] = queue
		w.mu.Unlock()
		w.log.Info("subscriber connected", logx.Fields{"subscriber_id": subscriberID})

		go w.writeLoop(conn, queue)
		go w.readLoop(conn, queue, subscriberID)
	}
}

func (w *WebSocket) writeLoop(conn *websocket.Conn, queue chan []byte) {
	for payload := range queue {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			w.removeClient(conn)
			return
		}
	}
}

// readLoop discards client frames (this sink is broadcast-only) and detects
// disconnects so the client registry doesn't accumulate dead connections.
func (w *WebSocket) readLoop(conn *websocket.Conn, queue chan []byte, subscriberID string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			w.log.Info("subscriber disconnected", logx.Fields{"subscriber_id": subscriberID})
			w.removeClient(conn)
			return
		}
	}
}

func (w *WebSocket) removeClient(conn *websocket.Conn) {
	w.mu.Lock()
	if queue, ok := w.clients[conn]; ok {
		close(queue)
		delete(w.clients, conn)
	}
	w.mu.Unlock()
	conn.Close()
}

// Close stops the fan-out loop and drops all clients.
func (w *WebSocket) Close() error {
	close(w.done)
	w.mu.Lock()
	defer w.mu.Unlock()
	for conn, queue := range w.clients {
		close(queue)
		conn.Close()
		delete(w.clients, conn)
	}
	return nil
}
