package client

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

type sent struct {
	action  string
	payload any
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (that *recordingSender) Send(action string, payload any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return that.err
	}

	that.sent = append(that.sent, sent{action: action, payload: payload})

	return nil
}

func (that *recordingSender) take() []sent {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := that.sent
	that.sent = nil

	return out
}

// blockingSender holds every move write until release is closed.
type blockingSender struct {
	entered chan struct{}
	release chan struct{}
}

func (that *blockingSender) Send(action string, _ any) error {
	if action != protocol.ActionPlayerMove {
		return nil
	}

	close(that.entered)
	<-that.release

	return nil
}

func newTestSession(t *testing.T, resetDelay time.Duration) (*Session, *recordingSender) {
	t.Helper()

	sender := &recordingSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSession(logger, sender, SessionOptions{ResetDelay: resetDelay}), sender
}

func event(t *testing.T, action string, payload any) protocol.Message {
	t.Helper()

	msg, err := protocol.NewMessage(action, payload)
	require.NoError(t, err)

	return msg
}

func handle(t *testing.T, session *Session, action string, payload any) {
	t.Helper()

	require.NoError(t, session.Handle(event(t, action, payload)))
}

// playingAsX puts a creator session into a started game.
func playingAsX(t *testing.T, session *Session) {
	t.Helper()

	handle(t, session, protocol.ActionRoomCreated, "ABC123")
	handle(t, session, protocol.ActionStartGame, "ABC123")
}

func TestSession_Lobby(t *testing.T) {
	t.Run("Create and join send the right events", func(t *testing.T) {
		session, sender := newTestSession(t, -1)

		require.NoError(t, session.CreateRoom())
		require.NoError(t, session.JoinRoom(" abc123 "))

		assert.Equal(t, []sent{
			{action: protocol.ActionCreateRoom},
			{action: protocol.ActionJoinRoom, payload: "ABC123"},
		}, sender.take())
		assert.Equal(t, "Attempting to join...", session.View().Notice)
	})

	t.Run("Empty code is refused locally", func(t *testing.T) {
		session, sender := newTestSession(t, -1)

		err := session.JoinRoom("   ")

		require.ErrorIs(t, err, ErrEmptyRoomCode)
		assert.Empty(t, sender.take())
	})

	t.Run("Transport errors are returned", func(t *testing.T) {
		session, sender := newTestSession(t, -1)
		sender.err = errors.New("broken pipe")

		err := session.CreateRoom()

		require.Error(t, err)
		assert.Equal(t, PhaseLobby, session.View().Phase)
	})
}

func TestSession_Symbols(t *testing.T) {
	t.Run("Creator plays X and opens", func(t *testing.T) {
		session, _ := newTestSession(t, -1)

		handle(t, session, protocol.ActionRoomCreated, "ABC123")
		assert.Equal(t, PhaseWaiting, session.View().Phase)
		assert.Equal(t, entity.X, session.View().MySymbol)
		assert.False(t, session.View().MyTurn)

		handle(t, session, protocol.ActionStartGame, "ABC123")

		view := session.View()
		assert.Equal(t, PhasePlaying, view.Phase)
		assert.Equal(t, entity.X, view.MySymbol)
		assert.True(t, view.MyTurn)
		assert.Equal(t, "ABC123", view.Token)
	})

	t.Run("Creator of a second room still plays X", func(t *testing.T) {
		// Given: a session that created two rooms in a row
		session, _ := newTestSession(t, -1)
		handle(t, session, protocol.ActionRoomCreated, "AAAAAA")
		handle(t, session, protocol.ActionRoomCreated, "BBBBBB")

		// When: the game starts
		handle(t, session, protocol.ActionStartGame, "BBBBBB")

		// Then: the symbol given at creation is kept
		view := session.View()
		assert.Equal(t, entity.X, view.MySymbol)
		assert.True(t, view.MyTurn)
		assert.Equal(t, "BBBBBB", view.Token)
	})

	t.Run("Creator who joins another room plays O", func(t *testing.T) {
		// Given: a session waiting in its own room
		session, _ := newTestSession(t, -1)
		handle(t, session, protocol.ActionRoomCreated, "ABC123")

		// When: it joins someone else's room instead
		require.NoError(t, session.JoinRoom("DEF456"))
		assert.Equal(t, entity.Empty, session.View().MySymbol)
		handle(t, session, protocol.ActionStartGame, "DEF456")

		// Then: it is the second player
		view := session.View()
		assert.Equal(t, entity.O, view.MySymbol)
		assert.False(t, view.MyTurn)
		assert.Equal(t, "DEF456", view.Token)
	})

	t.Run("Joiner plays O and waits", func(t *testing.T) {
		session, _ := newTestSession(t, -1)

		handle(t, session, protocol.ActionStartGame, "ABC123")

		view := session.View()
		assert.Equal(t, entity.O, view.MySymbol)
		assert.False(t, view.MyTurn)
		assert.Equal(t, "Player X's Turn", view.Notice)
	})
}

func TestSession_Move(t *testing.T) {
	t.Run("Input is locked between send and confirmation", func(t *testing.T) {
		// Given: X to move
		session, sender := newTestSession(t, -1)
		playingAsX(t, session)

		// When: X plays the center
		require.NoError(t, session.Move(4))

		// Then: the move is sent and a second move is refused before the server answers
		assert.Equal(t, []sent{{action: protocol.ActionPlayerMove, payload: protocol.MovePayload{Token: "ABC123", Index: 4}}}, sender.take())
		require.ErrorIs(t, session.Move(0), apperror.ErrNotYourTurn)
		assert.Empty(t, sender.take())

		// When: the server confirms the move
		handle(t, session, protocol.ActionUpdateBoard, protocol.BoardUpdate{Index: 4, Symbol: entity.X})

		// Then: the board mirrors it and X still waits for O
		view := session.View()
		assert.Equal(t, entity.X, view.Board[4])
		assert.False(t, view.MyTurn)
		assert.Equal(t, "Player O's Turn", view.Notice)

		// When: O answers
		handle(t, session, protocol.ActionUpdateBoard, protocol.BoardUpdate{Index: 0, Symbol: entity.O})

		// Then: X may move again
		assert.True(t, session.View().MyTurn)
	})

	t.Run("Taken cells and bad indexes are refused locally", func(t *testing.T) {
		session, sender := newTestSession(t, -1)
		playingAsX(t, session)
		handle(t, session, protocol.ActionUpdateBoard, protocol.BoardUpdate{Index: 4, Symbol: entity.X})
		handle(t, session, protocol.ActionUpdateBoard, protocol.BoardUpdate{Index: 0, Symbol: entity.O})

		require.ErrorIs(t, session.Move(4), apperror.ErrCellOccupied)
		require.ErrorIs(t, session.Move(9), apperror.ErrInvalidCell)
		assert.Empty(t, sender.take())
	})

	t.Run("Failed send gives the turn back", func(t *testing.T) {
		session, sender := newTestSession(t, -1)
		playingAsX(t, session)
		sender.err = errors.New("broken pipe")

		err := session.Move(4)

		require.Error(t, err)
		view := session.View()
		assert.True(t, view.MyTurn)
		assert.Equal(t, entity.Empty, view.Board[4])
	})

	t.Run("Server events are handled while a move is being sent", func(t *testing.T) {
		// Given: a transport that hangs on the next write
		sender := &blockingSender{entered: make(chan struct{}), release: make(chan struct{})}
		session := NewSession(slog.New(slog.NewTextHandler(io.Discard, nil)), sender, SessionOptions{ResetDelay: -1})
		playingAsX(t, session)

		moveErr := make(chan error, 1)
		go func() { moveErr <- session.Move(4) }()
		<-sender.entered

		// When: the opponent disconnects during the write
		msg := event(t, protocol.ActionErrorMsg, protocol.MsgOpponentDisconnected)
		handled := make(chan error, 1)
		go func() { handled <- session.Handle(msg) }()

		// Then: the event is applied without waiting for the write
		select {
		case err := <-handled:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("event handling blocked on the pending write")
		}
		assert.Equal(t, PhaseLobby, session.View().Phase)

		close(sender.release)
		require.NoError(t, <-moveErr)
		assert.False(t, session.View().MyTurn)
	})

	t.Run("No moves outside a round", func(t *testing.T) {
		session, _ := newTestSession(t, -1)

		require.ErrorIs(t, session.Move(0), ErrNotPlaying)
	})

	t.Run("Out of range update is rejected", func(t *testing.T) {
		session, _ := newTestSession(t, -1)
		playingAsX(t, session)

		err := session.Handle(event(t, protocol.ActionUpdateBoard, protocol.BoardUpdate{Index: 12, Symbol: entity.O}))

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})
}

func TestSession_Rounds(t *testing.T) {
	t.Run("Win counts the score and requests the next round", func(t *testing.T) {
		// Given: a session with a short reset delay
		session, sender := newTestSession(t, 10*time.Millisecond)
		playingAsX(t, session)

		// When: the server reports an O win
		handle(t, session, protocol.ActionShowResult, protocol.WinMessage(entity.O))

		// Then: the round is over and O scored
		view := session.View()
		assert.Equal(t, PhaseRoundOver, view.Phase)
		assert.Equal(t, entity.O, view.LastWinner)
		assert.Equal(t, [2]int{0, 1}, view.Score)
		assert.False(t, view.MyTurn)

		// Then: a reset is requested after the delay
		assert.Eventually(t, func() bool {
			sender.mu.Lock()
			defer sender.mu.Unlock()
			return len(sender.sent) == 1 && sender.sent[0].action == protocol.ActionResetGame
		}, time.Second, 5*time.Millisecond)

		// When: the server resets with O to open
		handle(t, session, protocol.ActionResetBoard, protocol.ResetPayload{CurrentTurn: 1})

		// Then: X waits and the score survives
		view = session.View()
		assert.Equal(t, PhasePlaying, view.Phase)
		assert.False(t, view.MyTurn)
		assert.Equal(t, entity.Board{}, view.Board)
		assert.Equal(t, [2]int{0, 1}, view.Score)
	})

	t.Run("Draw keeps the score", func(t *testing.T) {
		session, _ := newTestSession(t, -1)
		playingAsX(t, session)

		handle(t, session, protocol.ActionDraw, nil)

		view := session.View()
		assert.Equal(t, PhaseRoundOver, view.Phase)
		assert.Equal(t, entity.Empty, view.LastWinner)
		assert.Equal(t, [2]int{}, view.Score)
		assert.Equal(t, "Game Draw.", view.Notice)
	})

	t.Run("Manual reset needs a room", func(t *testing.T) {
		session, sender := newTestSession(t, -1)

		require.ErrorIs(t, session.RequestReset(), ErrNotInRoom)

		playingAsX(t, session)
		require.NoError(t, session.RequestReset())
		assert.Equal(t, []sent{{action: protocol.ActionResetGame, payload: "ABC123"}}, sender.take())
	})
}

func TestSession_Errors(t *testing.T) {
	t.Run("Error message sends the player back to the lobby", func(t *testing.T) {
		// Given: a round that just ended with an automatic reset pending
		session, sender := newTestSession(t, 20*time.Millisecond)
		playingAsX(t, session)
		handle(t, session, protocol.ActionShowResult, protocol.WinMessage(entity.X))

		// When: the opponent disconnects
		handle(t, session, protocol.ActionErrorMsg, protocol.MsgOpponentDisconnected)

		// Then: the view is back in the lobby and no reset is sent
		view := session.View()
		assert.Equal(t, PhaseLobby, view.Phase)
		assert.Empty(t, view.Token)
		assert.Equal(t, entity.Empty, view.MySymbol)
		assert.False(t, view.MyTurn)
		assert.Equal(t, protocol.MsgOpponentDisconnected, view.Notice)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, sender.take())
	})

	t.Run("Unknown action is reported", func(t *testing.T) {
		session, _ := newTestSession(t, -1)

		err := session.Handle(protocol.Message{Action: "chat"})

		require.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("Leave clears the view", func(t *testing.T) {
		session, _ := newTestSession(t, -1)
		playingAsX(t, session)

		session.Leave()

		assert.Equal(t, lobbyView(""), session.View())
	})
}

func TestSession_OnChange(t *testing.T) {
	var views []View
	session := NewSession(slog.New(slog.NewTextHandler(io.Discard, nil)), &recordingSender{}, SessionOptions{
		ResetDelay: -1,
		OnChange:   func(view View) { views = append(views, view) },
	})

	playingAsX(t, session)

	require.Len(t, views, 2)
	assert.Equal(t, PhaseWaiting, views[0].Phase)
	assert.Equal(t, PhasePlaying, views[1].Phase)
}
