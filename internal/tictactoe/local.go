package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

type Mode string

const (
	ModeHotSeat Mode = "offline"
	ModeAI      Mode = "ai"
)

const (
	HumanMark = entity.X
	AIMark    = entity.O

	localCode    = "LOCAL"
	localPlayerX = "local:x"
	localPlayerO = "local:o"
)

var ErrNotAIMode = errors.New("AI moves are only available against the AI")

// LocalGame runs offline rounds on a single device, either hot-seat or against the AI.
// It drives the same room rules the server uses, with both seats held locally.
type LocalGame struct {
	mode   Mode
	room   *entity.Room
	scores map[entity.Mark]int
}

func NewLocalGame(mode Mode) *LocalGame {
	game := &LocalGame{mode: mode}
	game.Reset()

	return game
}

// Reset starts over: scores are zeroed and X opens.
func (that *LocalGame) Reset() {
	that.room = entity.NewRoom(localCode, localPlayerX)
	that.room.Players = append(that.room.Players, localPlayerO)
	that.room.Status = entity.StatusInProgress
	that.scores = make(map[entity.Mark]int, 2)
}

func (that *LocalGame) Mode() Mode {
	return that.mode
}

func (that *LocalGame) Board() entity.Board {
	return that.room.Board
}

func (that *LocalGame) Turn() entity.Mark {
	return that.room.TurnMark()
}

func (that *LocalGame) Score(mark entity.Mark) int {
	return that.scores[mark]
}

func (that *LocalGame) LastWinner() entity.Mark {
	return that.room.LastWinner
}

func (that *LocalGame) IsRoundOver() bool {
	return that.room.GameOver
}

// Play places the mark whose turn it is. Against the AI only the human may call it.
func (that *LocalGame) Play(index int) (MoveOutcome, error) {
	if that.mode == ModeAI && that.Turn() != HumanMark && !that.room.GameOver {
		return MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrNotYourTurn)
	}

	return that.move(index)
}

// AIMove lets the AI answer with its minimax choice.
func (that *LocalGame) AIMove() (MoveOutcome, error) {
	if that.mode != ModeAI {
		return MoveOutcome{}, ErrNotAIMode
	}

	if that.room.GameOver {
		return MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrRoundOver)
	}

	if that.Turn() != AIMark {
		return MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrNotYourTurn)
	}

	cell, err := BestMove(that.room.Board, AIMark)
	if err != nil {
		return MoveOutcome{}, fmt.Errorf("failed to pick AI move: %w", err)
	}

	return that.move(cell)
}

// NextRound clears the board once a round is over; O opens only after an O win.
func (that *LocalGame) NextRound() error {
	if err := ResetRound(that.room); err != nil {
		return fmt.Errorf("failed to start next round: %w", err)
	}

	return nil
}

func (that *LocalGame) move(index int) (MoveOutcome, error) {
	connID := that.room.Players[that.room.CurrentTurn]

	outcome, err := ApplyMove(that.room, connID, index)
	if err != nil {
		return MoveOutcome{}, err
	}

	if outcome.Result == RoundWon {
		that.scores[outcome.Mark]++
	}

	return outcome, nil
}
