package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
)

// Hub tracks the live connections by session id.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "ws-hub"),
		connections: make(map[string]*Connection),
	}
}

func (that *Hub) Lookup(sessionID string) (usecase.Session, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	connection, ok := that.connections[sessionID]
	if !ok {
		return nil, false
	}

	return connection, true
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.connections)
}

func (that *Hub) register(connection *Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[connection.id] = connection

	that.logger.Debug("connection registered", "sessionID", connection.id, "connections", len(that.connections))
}

func (that *Hub) unregister(connection *Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.connections[connection.id]; ok && current == connection {
		delete(that.connections, connection.id)
	}
}

// CloseAll stops every connection's writer, which closes its socket.
func (that *Hub) CloseAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, connection := range that.connections {
		connection.close()
		delete(that.connections, id)
	}
}
