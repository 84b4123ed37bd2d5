package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeCode("abc123"))
	assert.Equal(t, "ABC123", NormalizeCode("  aBc123\n"))
}

func TestWinMessage(t *testing.T) {
	t.Run("Contains the winning symbol", func(t *testing.T) {
		assert.Equal(t, "Player X Wins!", WinMessage(entity.X))
		assert.Contains(t, WinMessage(entity.O), "O")
	})

	t.Run("Round trips through WinnerFromMessage", func(t *testing.T) {
		assert.Equal(t, entity.X, WinnerFromMessage(WinMessage(entity.X)))
		assert.Equal(t, entity.O, WinnerFromMessage(WinMessage(entity.O)))
		assert.Equal(t, entity.Empty, WinnerFromMessage("Game Draw."))
	})
}

func TestErrorText(t *testing.T) {
	cases := map[error]string{
		apperror.ErrRoomNotFound:         MsgRoomNotFound,
		apperror.ErrRoomFull:             MsgRoomFull,
		apperror.ErrRoomAbandoned:        MsgRoomAbandoned,
		apperror.ErrOpponentDisconnected: MsgOpponentDisconnected,
		apperror.ErrRegistryClosed:       MsgServerUnavailable,
	}

	for err, expected := range cases {
		wrapped := fmt.Errorf("failed to join room ABC123: %w", err)
		assert.Equal(t, expected, ErrorText(wrapped), err.Error())
	}
}

func TestMessage(t *testing.T) {
	t.Run("Payload uses the wire field names", func(t *testing.T) {
		// Given: a board update
		msg, err := NewMessage(ActionUpdateBoard, BoardUpdate{Index: 4, Symbol: entity.X})
		require.NoError(t, err)

		// Then: index and symbol are encoded the way clients read them
		assert.JSONEq(t, `{"index":4,"symbol":"X"}`, string(msg.Payload))
	})

	t.Run("Reset payload carries the board as strings", func(t *testing.T) {
		msg, err := NewMessage(ActionResetBoard, ResetPayload{CurrentTurn: 1})
		require.NoError(t, err)

		assert.JSONEq(t, `{"board":["","","","","","","","",""],"currentTurn":1}`, string(msg.Payload))
	})

	t.Run("Nil payload is omitted", func(t *testing.T) {
		msg, err := NewMessage(ActionDraw, nil)
		require.NoError(t, err)

		assert.Empty(t, msg.Payload)

		var v any
		require.ErrorIs(t, msg.Decode(&v), ErrEmptyPayload)
	})

	t.Run("Decode reads the move payload", func(t *testing.T) {
		msg := Message{Action: ActionPlayerMove, Payload: []byte(`{"token":"ABC123","index":7}`)}

		var move MovePayload
		require.NoError(t, msg.Decode(&move))

		assert.Equal(t, MovePayload{Token: "ABC123", Index: 7}, move)
	})
}
