package livetail

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-host UI; the allow-list middleware gates access
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans new connection-log lines out to connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn

	writeTimeout time.Duration
	logger       *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:      make(map[string]*websocket.Conn),
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Run follows the connection log and broadcasts each new line until ctx is
// cancelled.
func (h *Hub) Run(ctx context.Context, follower *Follower) {
	follower.Run(ctx, h.Broadcast)
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away. The stream is one-way; inbound messages are
// discarded.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	h.mu.Lock()
	h.clients[clientID] = conn
	h.mu.Unlock()
	h.logger.Infow("log tail client connected", "client_id", clientID, "remote", r.RemoteAddr)

	// Read loop only to observe the close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, clientID)
	h.mu.Unlock()
	h.logger.Infow("log tail client disconnected", "client_id", clientID)
}

// Broadcast sends one log line to every connected client. Clients whose
// writes fail are dropped.
func (h *Hub) Broadcast(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			h.logger.Infow("dropping log tail client", "client_id", id, "error", err)
			conn.Close()
			delete(h.clients, id)
		}
	}
}

// ClientCount reports the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
