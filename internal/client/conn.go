package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

const writeTimeout = 10 * time.Second

// Conn is a websocket connection to the game server.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	return &Conn{ws: ws}, nil
}

func (that *Conn) Send(action string, payload any) error {
	msg, err := protocol.NewMessage(action, payload)
	if err != nil {
		return err
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}

	return nil
}

// Listen passes every server event to handle until the connection closes or ctx is done.
// Handler errors are returned through onError and do not stop the loop.
func (that *Conn) Listen(ctx context.Context, handle func(protocol.Message) error, onError func(error)) error {
	stop := context.AfterFunc(ctx, func() { _ = that.ws.Close() })
	defer stop()

	for {
		var msg protocol.Message
		if err := that.ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		if err := handle(msg); err != nil && onError != nil {
			onError(err)
		}
	}
}

// Close says goodbye to the server and closes the socket.
func (that *Conn) Close() error {
	that.writeMu.Lock()
	_ = that.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	that.writeMu.Unlock()

	return that.ws.Close()
}
