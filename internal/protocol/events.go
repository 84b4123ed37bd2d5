// Package protocol defines the events exchanged between game clients and the server.
package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

// Client -> server actions.
const (
	ActionCreateRoom = "createRoom"
	ActionJoinRoom   = "joinRoom"
	ActionPlayerMove = "playerMove"
	ActionResetGame  = "resetGame"
)

// Server -> client actions.
const (
	ActionRoomCreated = "roomCreated"
	ActionStartGame   = "startGame"
	ActionUpdateBoard = "updateBoard"
	ActionShowResult  = "showResult"
	ActionDraw        = "draw"
	ActionResetBoard  = "resetBoard"
	ActionErrorMsg    = "errorMsg"
)

var ErrEmptyPayload = errors.New("payload is empty")

const (
	MsgRoomNotFound         = "Room not found. Please check the code."
	MsgRoomFull             = "Room is full. Try another code."
	MsgRoomAbandoned        = "This room is no longer available."
	MsgOpponentDisconnected = "Your opponent has disconnected. The game cannot continue."
	MsgAlreadyInRoom        = "You are already in this room."
	MsgServerUnavailable    = "Server is not accepting games right now."
)

// MovePayload is sent by a client to play a cell.
type MovePayload struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// BoardUpdate is broadcast after an accepted move.
type BoardUpdate struct {
	Index  int         `json:"index"`
	Symbol entity.Mark `json:"symbol"`
}

// ResetPayload is broadcast when a new round starts.
type ResetPayload struct {
	Board       entity.Board `json:"board"`
	CurrentTurn int          `json:"currentTurn"`
}

// NormalizeCode makes user typed room codes comparable with generated ones.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// WinMessage is the showResult text; clients find the winning symbol in it.
func WinMessage(mark entity.Mark) string {
	return fmt.Sprintf("Player %s Wins!", mark)
}

// WinnerFromMessage extracts the winning symbol from a showResult text.
func WinnerFromMessage(msg string) entity.Mark {
	var symbol string
	if _, err := fmt.Sscanf(msg, "Player %s Wins!", &symbol); err != nil {
		return entity.Empty
	}

	mark, err := entity.ParseMark(symbol)
	if err != nil {
		return entity.Empty
	}

	return mark
}

// ErrorText turns a join failure into the message shown to the requesting player.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return MsgRoomNotFound
	case errors.Is(err, apperror.ErrRoomFull):
		return MsgRoomFull
	case errors.Is(err, apperror.ErrRoomAbandoned):
		return MsgRoomAbandoned
	case errors.Is(err, apperror.ErrAlreadyInRoom):
		return MsgAlreadyInRoom
	case errors.Is(err, apperror.ErrOpponentDisconnected):
		return MsgOpponentDisconnected
	default:
		return MsgServerUnavailable
	}
}
