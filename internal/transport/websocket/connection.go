package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type connection struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newConnection(id string, ws *websocket.Conn, sendBuffer int) *connection {
	return &connection{
		id:   id,
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the send queue is full. Writes to a closed connection are
// accepted and discarded.
func (that *connection) enqueue(data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return true
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *connection) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.done)
	_ = that.ws.Close()
}

// writePump is the only writer of the socket.
func (that *connection) writePump(writeTimeout time.Duration) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-that.done:
			return nil
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data, writeTimeout); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil, writeTimeout); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
		}
	}
}

func (that *connection) write(messageType int, data []byte, writeTimeout time.Duration) error {
	if err := that.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return that.ws.WriteMessage(messageType, data)
}

func (that *connection) prepareRead() {
	that.ws.SetReadLimit(maxMessageSize)
	_ = that.ws.SetReadDeadline(time.Now().Add(pongWait))
	that.ws.SetPongHandler(func(string) error {
		return that.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}
