package entity

import "slices"

type RoomStatus string

const (
	StatusWaiting    RoomStatus = "waiting"
	StatusInProgress RoomStatus = "in_progress"
	StatusRoundOver  RoomStatus = "round_over"
	StatusAbandoned  RoomStatus = "abandoned"
)

const MaxPlayers = 2

// Room is the authoritative state of one two-player session.
// Players[0] plays X and Players[1] plays O.
type Room struct {
	Code        string
	Players     []string
	Board       Board
	CurrentTurn int
	// LastWinner is Empty both before the first round ends and after a draw,
	// RoundsPlayed tells the two apart.
	LastWinner   Mark
	RoundsPlayed int
	GameOver     bool
	Status       RoomStatus
	Version      uint64
}

// RoomSnapshot is a detached copy of a room, safe to hand out of the room lock.
type RoomSnapshot struct {
	Code         string     `json:"code"`
	Players      []string   `json:"-"`
	PlayerCount  int        `json:"player_count"`
	Board        Board      `json:"board"`
	CurrentTurn  int        `json:"current_turn"`
	LastWinner   Mark       `json:"last_winner"`
	RoundsPlayed int        `json:"rounds_played"`
	GameOver     bool       `json:"game_over"`
	Status       RoomStatus `json:"status"`
	Version      uint64     `json:"version"`
}

func NewRoom(code, creatorID string) *Room {
	return &Room{
		Code:        code,
		Players:     []string{creatorID},
		CurrentTurn: 0,
		Status:      StatusWaiting,
	}
}

// PlayerIndex returns -1 when connID is not a member.
func (that *Room) PlayerIndex(connID string) int {
	return slices.Index(that.Players, connID)
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) IsAbandoned() bool {
	return that.Status == StatusAbandoned
}

func (that *Room) IsRoundOver() bool {
	return that.Status == StatusRoundOver
}

// TurnMark is the mark expected to move next.
func (that *Room) TurnMark() Mark {
	return MarkForIndex(that.CurrentTurn)
}

func (that *Room) Snapshot() RoomSnapshot {
	return RoomSnapshot{
		Code:         that.Code,
		Players:      slices.Clone(that.Players),
		PlayerCount:  len(that.Players),
		Board:        that.Board,
		CurrentTurn:  that.CurrentTurn,
		LastWinner:   that.LastWinner,
		RoundsPlayed: that.RoundsPlayed,
		GameOver:     that.GameOver,
		Status:       that.Status,
		Version:      that.Version,
	}
}
