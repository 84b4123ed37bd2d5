package client

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

const DefaultResetDelay = 2 * time.Second

var (
	ErrEmptyRoomCode = errors.New("please enter a room code to join")
	ErrNotPlaying    = errors.New("no round is being played")
	ErrNotInRoom     = errors.New("not in a room")
	ErrUnknownAction = errors.New("unknown action")
)

type sender interface {
	Send(action string, payload any) error
}

type SessionOptions struct {
	// ResetDelay is how long a finished round stays on screen before the reset request.
	// Negative disables the automatic request.
	ResetDelay time.Duration
	// OnChange is called with the new view after every handled event, outside the lock.
	OnChange func(View)
}

// Session mirrors the server state for one player and keeps the player from sending
// moves the server would reject anyway.
type Session struct {
	logger     *slog.Logger
	sender     sender
	resetDelay time.Duration
	onChange   func(View)

	mu         sync.Mutex
	view       View
	resetTimer *time.Timer
}

func NewSession(logger *slog.Logger, sender sender, opts SessionOptions) *Session {
	if opts.ResetDelay == 0 {
		opts.ResetDelay = DefaultResetDelay
	}

	return &Session{
		logger:     logger.With("component", "client_session"),
		sender:     sender,
		resetDelay: opts.ResetDelay,
		onChange:   opts.OnChange,
		view:       lobbyView(""),
	}
}

func (that *Session) View() View {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.view
}

func (that *Session) CreateRoom() error {
	if err := that.sender.Send(protocol.ActionCreateRoom, nil); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.update(func(view *View) {
		view.Notice = "Creating room..."
	})

	return nil
}

// JoinRoom asks to join another player's room. Whatever room the session was in is
// left behind, the server does the same.
func (that *Session) JoinRoom(code string) error {
	code = protocol.NormalizeCode(code)
	if code == "" {
		return ErrEmptyRoomCode
	}

	// reset before sending, startGame may arrive before Send returns
	that.update(func(view *View) {
		that.stopResetTimerLocked()
		*view = lobbyView("Attempting to join...")
	})

	if err := that.sender.Send(protocol.ActionJoinRoom, code); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

// Move sends a move and locks input until the server confirms it with updateBoard.
// The lock is not held during the write, a failed write gives the turn back.
func (that *Session) Move(index int) error {
	that.mu.Lock()

	switch {
	case that.view.Phase != PhasePlaying:
		that.mu.Unlock()
		return ErrNotPlaying
	case !that.view.MyTurn:
		that.mu.Unlock()
		return apperror.ErrNotYourTurn
	case index < 0 || index >= entity.BoardSize:
		that.mu.Unlock()
		return apperror.ErrInvalidCell
	case that.view.Board[index] != entity.Empty:
		that.mu.Unlock()
		return apperror.ErrCellOccupied
	}

	that.view.MyTurn = false
	token := that.view.Token
	view := that.view
	that.mu.Unlock()

	that.notify(view)

	if err := that.sender.Send(protocol.ActionPlayerMove, protocol.MovePayload{Token: token, Index: index}); err != nil {
		that.update(func(view *View) {
			if view.Phase == PhasePlaying && view.Token == token && view.Board[index] == entity.Empty {
				view.MyTurn = true
			}
		})

		return fmt.Errorf("failed to send move: %w", err)
	}

	return nil
}

// RequestReset asks the server for the next round. Both players send it, the server
// honors the first one.
func (that *Session) RequestReset() error {
	token := that.View().Token
	if token == "" {
		return ErrNotInRoom
	}

	if err := that.sender.Send(protocol.ActionResetGame, token); err != nil {
		return fmt.Errorf("failed to request reset: %w", err)
	}

	return nil
}

// Leave forgets the room and goes back to the lobby.
func (that *Session) Leave() {
	that.update(func(view *View) {
		that.stopResetTimerLocked()
		*view = lobbyView("")
	})
}

// Handle applies one server event to the view.
func (that *Session) Handle(msg protocol.Message) error {
	switch msg.Action {
	case protocol.ActionRoomCreated:
		return that.onRoomCreated(msg)
	case protocol.ActionStartGame:
		return that.onStartGame(msg)
	case protocol.ActionUpdateBoard:
		return that.onUpdateBoard(msg)
	case protocol.ActionShowResult:
		return that.onShowResult(msg)
	case protocol.ActionDraw:
		that.finishRound("Game Draw.", entity.Empty)
		return nil
	case protocol.ActionResetBoard:
		return that.onResetBoard(msg)
	case protocol.ActionErrorMsg:
		return that.onError(msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, msg.Action)
	}
}

func (that *Session) onRoomCreated(msg protocol.Message) error {
	var code string
	if err := msg.Decode(&code); err != nil {
		return err
	}

	that.update(func(view *View) {
		that.stopResetTimerLocked()
		*view = View{
			Token:    code,
			MySymbol: entity.X,
			Phase:    PhaseWaiting,
			Notice:   "Waiting for opponent...",
		}
	})

	return nil
}

func (that *Session) onStartGame(msg protocol.Message) error {
	var code string
	if err := msg.Decode(&code); err != nil {
		return err
	}

	that.update(func(view *View) {
		// the creator already holds X, everyone else joined as O
		symbol := view.MySymbol
		if symbol == entity.Empty {
			symbol = entity.O
		}

		*view = View{
			Token:    code,
			MySymbol: symbol,
			MyTurn:   symbol == entity.X,
			Phase:    PhasePlaying,
			Notice:   turnNotice(entity.X),
		}
	})

	return nil
}

func (that *Session) onUpdateBoard(msg protocol.Message) error {
	var update protocol.BoardUpdate
	if err := msg.Decode(&update); err != nil {
		return err
	}

	if update.Index < 0 || update.Index >= entity.BoardSize {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidCell, update.Index)
	}

	that.update(func(view *View) {
		view.Board[update.Index] = update.Symbol
		view.MyTurn = update.Symbol != view.MySymbol
		view.Notice = turnNotice(update.Symbol.Opponent())
	})

	return nil
}

func (that *Session) onShowResult(msg protocol.Message) error {
	var text string
	if err := msg.Decode(&text); err != nil {
		return err
	}

	that.finishRound(text, protocol.WinnerFromMessage(text))

	return nil
}

func (that *Session) onResetBoard(msg protocol.Message) error {
	var reset protocol.ResetPayload
	if err := msg.Decode(&reset); err != nil {
		return err
	}

	turn := entity.MarkForIndex(reset.CurrentTurn)

	that.update(func(view *View) {
		that.stopResetTimerLocked()

		view.Board = reset.Board
		view.Phase = PhasePlaying
		view.MyTurn = view.MySymbol == turn
		view.Notice = turnNotice(turn)
	})

	return nil
}

func (that *Session) onError(msg protocol.Message) error {
	var text string
	if err := msg.Decode(&text); err != nil {
		return err
	}

	that.update(func(view *View) {
		that.stopResetTimerLocked()
		*view = lobbyView(text)
	})

	return nil
}

func (that *Session) finishRound(notice string, winner entity.Mark) {
	that.update(func(view *View) {
		if winner != entity.Empty {
			view.Score[winner.Index()]++
		}

		view.LastWinner = winner
		view.Phase = PhaseRoundOver
		view.MyTurn = false
		view.Notice = notice

		that.scheduleResetLocked(view.Token)
	})
}

func (that *Session) scheduleResetLocked(token string) {
	that.stopResetTimerLocked()

	if that.resetDelay < 0 {
		return
	}

	that.resetTimer = time.AfterFunc(that.resetDelay, func() {
		view := that.View()
		if view.Phase != PhaseRoundOver || view.Token != token {
			return
		}

		if err := that.RequestReset(); err != nil {
			that.logger.Warn("automatic reset failed", "code", token, "error", err)
		}
	})
}

func (that *Session) stopResetTimerLocked() {
	if that.resetTimer != nil {
		that.resetTimer.Stop()
		that.resetTimer = nil
	}
}

func (that *Session) update(fn func(view *View)) {
	that.mu.Lock()
	fn(&that.view)
	view := that.view
	that.mu.Unlock()

	that.notify(view)
}

func (that *Session) notify(view View) {
	if that.onChange != nil {
		that.onChange(view)
	}
}
