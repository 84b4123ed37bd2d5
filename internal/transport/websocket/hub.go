package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

const DefaultSendBuffer = 32

// Hub tracks live connections and delivers events to them. It is the emitter the room
// manager talks to, so Emit must never block.
type Hub struct {
	logger     *slog.Logger
	sendBuffer int

	mu    sync.RWMutex
	conns map[string]*connection
}

func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	return &Hub{
		logger:     logger.With("component", "websocket_hub"),
		sendBuffer: sendBuffer,
		conns:      make(map[string]*connection),
	}
}

// Emit queues an event for connID. Unknown connections are ignored; a connection whose
// queue is full is closed.
func (that *Hub) Emit(connID, action string, payload any) {
	log := that.logger.With("method", "Emit", "connID", connID, "action", action)

	msg, err := protocol.NewMessage(action, payload)
	if err != nil {
		log.Error("failed to build message", "error", err)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.RLock()
	conn, ok := that.conns[connID]
	that.mu.RUnlock()

	if !ok {
		log.Debug("connection is gone, event dropped")
		return
	}

	if !conn.enqueue(data) {
		log.Warn("send queue is full, closing slow connection")
		conn.close()
	}
}

// Count returns the number of registered connections.
func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.conns)
}

func (that *Hub) register(ws *websocket.Conn) *connection {
	conn := newConnection(uuid.NewString(), ws, that.sendBuffer)

	that.mu.Lock()
	that.conns[conn.id] = conn
	that.mu.Unlock()

	return conn
}

func (that *Hub) unregister(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, connID)
}

// closeAll closes every connection, their read loops then clean up after themselves.
func (that *Hub) closeAll() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, conn := range that.conns {
		conn.close()
	}
}
