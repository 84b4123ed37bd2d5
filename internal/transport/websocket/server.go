package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

const DefaultWriteTimeout = 10 * time.Second

type roomManager interface {
	CreateRoom(ctx context.Context, connID string) (string, error)
	JoinRoom(ctx context.Context, code, connID string) error
	MakeMove(ctx context.Context, connID, code string, index int) error
	ResetRound(ctx context.Context, connID, code string) error
	RemoveConnection(ctx context.Context, connID string)
}

type handlerFunc func(ctx context.Context, connID string, msg protocol.Message) error

type Options struct {
	WriteTimeout time.Duration
	// AllowedOrigins empty or containing "*" accepts every origin.
	AllowedOrigins []string
}

type Server struct {
	logger       *slog.Logger
	hub          *Hub
	rooms        roomManager
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	handlers     map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, rooms roomManager, opts Options) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	server := &Server{
		logger:       logger.With("component", "websocket_server"),
		hub:          hub,
		rooms:        rooms,
		writeTimeout: opts.WriteTimeout,
		handlers:     make(map[string]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	server.On(protocol.ActionCreateRoom, server.handleCreateRoom)
	server.On(protocol.ActionJoinRoom, server.handleJoinRoom)
	server.On(protocol.ActionPlayerMove, server.handlePlayerMove)
	server.On(protocol.ActionResetGame, server.handleResetGame)

	return server
}

// On registers the handler for an action, replacing any previous one.
func (that *Server) On(action string, handler handlerFunc) {
	that.handlers[action] = handler
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := that.hub.register(ws)
	log = log.With("connID", conn.id)
	log.Info("WebSocket connection established")

	go func() {
		if err := conn.writePump(that.writeTimeout); err != nil {
			log.Debug("writer stopped", "error", err)
		}
		conn.close()
	}()

	// request context is cancelled once the handler returns, so disconnect cleanup uses a detached one
	ctx := context.WithoutCancel(req.Context())

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Debug("reader stopped", "error", err)
	}

	conn.close()
	that.hub.unregister(conn.id)
	that.rooms.RemoveConnection(ctx, conn.id)

	log.Info("WebSocket connection closed")
}

// Shutdown closes every open connection.
func (that *Server) Shutdown() {
	that.hub.closeAll()
}

func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages", "connID", conn.id)

	conn.prepareRead()

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var message protocol.Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, conn.id, message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
