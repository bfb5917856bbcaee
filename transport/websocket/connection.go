package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Connection is one websocket client. It is the session the coordinator talks to.
type Connection struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(logger *slog.Logger, id string, conn *websocket.Conn) *Connection {
	return &Connection{
		id:     id,
		conn:   conn,
		logger: logger.With("sessionID", id),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (that *Connection) ID() string {
	return that.id
}

// Send queues event without blocking. Events for a client that stopped reading are dropped.
func (that *Connection) Send(event *entity.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event.Name, "error", err)
		return
	}

	select {
	case <-that.done:
	case that.send <- data:
	default:
		that.logger.Warn("send buffer full, event dropped", "event", event.Name)
	}
}

func (that *Connection) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// writePump owns all writes to the socket.
func (that *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message := <-that.send:
			if err := that.write(websocket.TextMessage, message); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			_ = that.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (that *Connection) write(messageType int, data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteMessage(messageType, data)
}
