package apperror

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomFull             = errors.New("room is full")
	ErrRoomAbandoned        = errors.New("room is abandoned")
	ErrAlreadyInRoom        = errors.New("player is already in the room")
	ErrNotInRoom            = errors.New("player is not in the room")
	ErrOpponentDisconnected = errors.New("opponent disconnected")
	ErrCodeSpaceExhausted   = errors.New("could not allocate a free room code")
	ErrRegistryClosed       = errors.New("room registry is closed")
	ErrRoundInProgress      = errors.New("round is still in progress")

	// ErrInvalidMove wraps every reason a move is rejected.
	ErrInvalidMove      = errors.New("invalid move")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrRoundOver        = errors.New("round is already over")
	ErrNotEnoughPlayers = errors.New("waiting for an opponent")
)
