package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/connectfour-backend/internal/pkg"
	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
)

type coordinator interface {
	CreateRoom(ctx context.Context, session usecase.Session) error
	JoinRoom(ctx context.Context, session usecase.Session, roomID string) error
	MakeMove(ctx context.Context, session usecase.Session, roomID string, col int) error
	ResetGame(ctx context.Context, session usecase.Session, roomID string) error
	Disconnect(ctx context.Context, session usecase.Session) error
}

type Server struct {
	logger      *slog.Logger
	hub         *Hub
	coordinator coordinator
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, connection *Connection, message *Message) error
}

func New(logger *slog.Logger, hub *Hub, coordinator coordinator) *Server {
	server := &Server{
		logger:      logger.With("component", "ws-server"),
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(context.Context, *Connection, *Message) error),
	}

	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionResetGame] = server.handleResetGame

	return server
}

// Handler serves the websocket endpoint on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		that.hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and runs it until the client goes away.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connection := newConnection(that.logger, pkg.GenerateNewSessionID(), conn)
	that.hub.register(connection)

	log.Info("WebSocket connection established", "sessionID", connection.ID())

	go connection.writePump()
	that.readPump(ctx, connection)
}

// readPump handles the client's messages one at a time and cleans up after it disconnects.
func (that *Server) readPump(ctx context.Context, connection *Connection) {
	log := that.logger.With("method", "readPump", "sessionID", connection.ID())

	defer func() {
		that.hub.unregister(connection)

		if err := that.coordinator.Disconnect(context.WithoutCancel(ctx), connection); err != nil {
			log.Error("failed to disconnect session", "error", err)
		}

		connection.close()
		_ = connection.conn.Close()

		log.Info("WebSocket connection closed")
	}()

	connection.conn.SetReadLimit(maxMessageSize)
	if err := connection.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}
	connection.conn.SetPongHandler(func(string) error {
		return connection.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := connection.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		that.handleMessage(ctx, connection, data)
	}
}

func (that *Server) handleMessage(ctx context.Context, connection *Connection, data []byte) {
	log := that.logger.With("method", "handleMessage", "sessionID", connection.ID())

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.sendError(connection, msgBadRequest)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		that.sendError(connection, msgUnknownAction)
		return
	}

	if err := handler(ctx, connection, &message); err != nil {
		that.handleError(connection, message.Action, err)
	}
}
