package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
)

// SnapshotFeed pushes the post-tick snapshot to every connected
// websocket client. It satisfies the orchestrator's SnapshotPublisher.
// Slow clients are dropped rather than allowed to stall the loop.
type SnapshotFeed struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	logger  common.Logger

	upgrader websocket.Upgrader
}

// clientBuffer bounds the per-client send queue.
const clientBuffer = 8

// NewSnapshotFeed creates a feed.
func NewSnapshotFeed(logger common.Logger) *SnapshotFeed {
	return &SnapshotFeed{
		clients: map[*websocket.Conn]chan []byte{},
		logger:  logger,
		upgrader: websocket.Upgrader{
			// The API already answers CORS; the socket accepts any
			// origin the HTTP layer let through.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish serialises the snapshot once and fans it out.
func (f *SnapshotFeed) Publish(snap *simulation.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		f.logger.Log("ERROR", "failed to marshal snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, ch := range f.clients {
		select {
		case ch <- payload:
		default:
			// Client cannot keep up; disconnect it.
			delete(f.clients, conn)
			close(ch)
		}
	}
}

// ServeHTTP upgrades the connection and streams snapshots until the
// client goes away.
func (f *SnapshotFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Log("WARN", "websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ch := make(chan []byte, clientBuffer)
	f.mu.Lock()
	f.clients[conn] = ch
	f.mu.Unlock()

	go f.writeLoop(conn, ch)
	f.readLoop(conn)
}

// writeLoop drains the send queue into the socket.
func (f *SnapshotFeed) writeLoop(conn *websocket.Conn, ch chan []byte) {
	defer conn.Close()
	for payload := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.drop(conn)
			return
		}
	}
}

// readLoop discards inbound messages and detects disconnects.
func (f *SnapshotFeed) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.drop(conn)
			return
		}
	}
}

// drop removes a client, if still registered.
func (f *SnapshotFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.clients[conn]; ok {
		delete(f.clients, conn)
		close(ch)
	}
	conn.Close()
}

// Close disconnects every client.
func (f *SnapshotFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, ch := range f.clients {
		delete(f.clients, conn)
		close(ch)
		conn.Close()
	}
}
