package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	SubjectRoomCreated = "room.created"
	SubjectRoomDeleted = "room.deleted"
	SubjectGameOver    = "game.over"
)

const (
	ReasonEmpty      = "empty"
	ReasonGraceEnded = "grace_period_expired"
)

// RoomEvent is published on every room lifecycle change.
type RoomEvent struct {
	RoomID  string       `json:"roomId"`
	Reason  string       `json:"reason,omitempty"`
	Winner  *entity.Mark `json:"winner,omitempty"`
	Draw    bool         `json:"draw,omitempty"`
	Players int          `json:"players"`
	At      time.Time    `json:"at"`
}

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends lifecycle events to NATS. A Publisher without a connection drops them.
type Publisher struct {
	logger *slog.Logger
	conn   conn
	prefix string
	now    func() time.Time
}

func New(logger *slog.Logger, conn conn, prefix string) *Publisher {
	return &Publisher{
		logger: logger.With("component", "notifier"),
		conn:   conn,
		prefix: prefix,
		now:    time.Now,
	}
}

// Connect dials NATS the way the rest of the service expects: retry on the first connect and a
// bounded number of reconnects.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// Publish is best effort: failures are logged, never returned.
func (that *Publisher) Publish(subject string, event RoomEvent) {
	if that == nil || that.conn == nil {
		return
	}

	log := that.logger.With("method", "Publish", "subject", subject, "roomID", event.RoomID)

	if event.At.IsZero() {
		event.At = that.now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal room event", "error", err)
		return
	}

	if err = that.conn.Publish(that.subject(subject), data); err != nil {
		log.Error("failed to publish room event", "error", err)
		return
	}

	log.Debug("room event published")
}

func (that *Publisher) subject(name string) string {
	if that.prefix == "" {
		return name
	}

	return that.prefix + "." + name
}
