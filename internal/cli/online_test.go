package cli

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

type sentEvent struct {
	action  string
	payload any
}

type fakeSender struct {
	sent []sentEvent
}

func (that *fakeSender) Send(action string, payload any) error {
	that.sent = append(that.sent, sentEvent{action: action, payload: payload})
	return nil
}

func newOnlineSession(t *testing.T) (*client.Session, *fakeSender) {
	t.Helper()

	sender := &fakeSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return client.NewSession(logger, sender, client.SessionOptions{ResetDelay: -1}), sender
}

func TestOnlineCommand(t *testing.T) {
	t.Run("Lobby commands", func(t *testing.T) {
		session, sender := newOnlineSession(t)

		_, err := onlineCommand(session, "c")
		require.NoError(t, err)
		_, err = onlineCommand(session, "J abc123")
		require.NoError(t, err)

		assert.Equal(t, []sentEvent{
			{action: protocol.ActionCreateRoom},
			{action: protocol.ActionJoinRoom, payload: "ABC123"},
		}, sender.sent)
	})

	t.Run("Join without a code", func(t *testing.T) {
		session, _ := newOnlineSession(t)

		_, err := onlineCommand(session, "j")

		require.ErrorIs(t, err, client.ErrEmptyRoomCode)
		assert.Equal(t, "Please enter a room code to join.", onlineError(err))
	})

	t.Run("Cells are typed 1-based", func(t *testing.T) {
		session, sender := newOnlineSession(t)
		start, err := protocol.NewMessage(protocol.ActionStartGame, "ABC123")
		require.NoError(t, err)
		created, err := protocol.NewMessage(protocol.ActionRoomCreated, "ABC123")
		require.NoError(t, err)
		require.NoError(t, session.Handle(created))
		require.NoError(t, session.Handle(start))

		_, err = onlineCommand(session, "5")
		require.NoError(t, err)

		assert.Equal(t, []sentEvent{{
			action:  protocol.ActionPlayerMove,
			payload: protocol.MovePayload{Token: "ABC123", Index: 4},
		}}, sender.sent)

		_, err = onlineCommand(session, "1")
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, "It's not your turn!", onlineError(err))
	})

	t.Run("Quit and unknown input", func(t *testing.T) {
		session, _ := newOnlineSession(t)

		quit, err := onlineCommand(session, "q")
		require.NoError(t, err)
		assert.True(t, quit)

		quit, err = onlineCommand(session, "dance")
		assert.False(t, quit)
		require.ErrorIs(t, err, errUnknownCommand)
	})
}

func TestRenderView(t *testing.T) {
	t.Run("Lobby explains the commands", func(t *testing.T) {
		out := renderView(client.View{Phase: client.PhaseLobby, Notice: protocol.MsgRoomFull})

		assert.Contains(t, out, "Lobby")
		assert.Contains(t, out, protocol.MsgRoomFull)
	})

	t.Run("Game shows the board and the score", func(t *testing.T) {
		view := client.View{
			Token:    "ABC123",
			MySymbol: entity.O,
			Phase:    client.PhasePlaying,
			Score:    [2]int{2, 1},
		}
		view.Board[4] = entity.X

		out := renderView(view)

		assert.Contains(t, out, "ABC123")
		assert.Contains(t, out, "you play O")
		assert.Contains(t, out, "X")
		assert.Contains(t, out, "2 : 1")
	})
}
