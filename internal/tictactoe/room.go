package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

type RoundResult int

const (
	RoundContinues RoundResult = iota
	RoundWon
	RoundDrawn
)

func (that RoundResult) String() string {
	switch that {
	case RoundWon:
		return "won"
	case RoundDrawn:
		return "drawn"
	default:
		return "continues"
	}
}

// MoveOutcome describes an accepted move.
type MoveOutcome struct {
	Index  int
	Mark   entity.Mark
	Result RoundResult
}

// AddPlayer seats connID as the next player. The second player starts the game.
func AddPlayer(room *entity.Room, connID string) error {
	if room.IsAbandoned() {
		return apperror.ErrRoomAbandoned
	}

	if room.PlayerIndex(connID) != -1 {
		return apperror.ErrAlreadyInRoom
	}

	if room.IsFull() {
		return apperror.ErrRoomFull
	}

	room.Players = append(room.Players, connID)
	if room.IsFull() {
		room.Status = entity.StatusInProgress
	}
	room.Version++

	return nil
}

// RemovePlayer drops connID from the room. A room left with a single player after
// having had an opponent is abandoned for good. Returns false when connID was not seated.
func RemovePlayer(room *entity.Room, connID string) bool {
	index := room.PlayerIndex(connID)
	if index == -1 {
		return false
	}

	room.Players = slices.Delete(room.Players, index, index+1)
	if len(room.Players) == 1 {
		room.Status = entity.StatusAbandoned
	}
	room.Version++

	return true
}

// ApplyMove validates and applies a move by connID at cell index.
// A rejected move leaves the room untouched and returns an error wrapping ErrInvalidMove.
func ApplyMove(room *entity.Room, connID string, index int) (MoveOutcome, error) {
	if err := validateMove(room, connID, index); err != nil {
		return MoveOutcome{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	mark := room.TurnMark()
	room.Board[index] = mark
	room.Version++

	outcome := MoveOutcome{Index: index, Mark: mark}

	switch {
	case CheckWin(room.Board, mark):
		finishRound(room, mark)
		outcome.Result = RoundWon
	case CheckDraw(room.Board):
		finishRound(room, entity.Empty)
		outcome.Result = RoundDrawn
	default:
		room.CurrentTurn = 1 - room.CurrentTurn
		outcome.Result = RoundContinues
	}

	return outcome, nil
}

// ResetRound clears the board after a finished round. The player who played O opens
// the next round if O won; X opens after an X win or a draw.
func ResetRound(room *entity.Room) error {
	if room.IsAbandoned() {
		return apperror.ErrRoomAbandoned
	}

	if !room.GameOver {
		return apperror.ErrRoundInProgress
	}

	room.Board = entity.Board{}
	room.GameOver = false
	room.Status = entity.StatusInProgress
	room.CurrentTurn = 0
	if room.LastWinner == entity.O {
		room.CurrentTurn = 1
	}
	room.Version++

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(room *entity.Room, connID string, index int) error {
	if room.IsAbandoned() {
		return apperror.ErrRoomAbandoned
	}

	if len(room.Players) < entity.MaxPlayers {
		return apperror.ErrNotEnoughPlayers
	}

	if room.GameOver {
		return apperror.ErrRoundOver
	}

	if index < 0 || index >= len(room.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, index)
	}

	if room.Board[index] != entity.Empty {
		return apperror.ErrCellOccupied
	}

	playerIndex := room.PlayerIndex(connID)
	if playerIndex == -1 {
		return apperror.ErrNotInRoom
	}

	if playerIndex != room.CurrentTurn {
		return apperror.ErrNotYourTurn
	}

	return nil
}

func finishRound(room *entity.Room, winner entity.Mark) {
	room.LastWinner = winner
	room.RoundsPlayed++
	room.GameOver = true
	room.Status = entity.StatusRoundOver
}
