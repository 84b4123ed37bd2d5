package client

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseWaiting
	PhasePlaying
	PhaseRoundOver
)

func (that Phase) String() string {
	switch that {
	case PhaseLobby:
		return "lobby"
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseRoundOver:
		return "round over"
	default:
		return fmt.Sprintf("phase(%d)", int(that))
	}
}

// View is what one player knows about the online game. Everything except the optimistic
// MyTurn lock comes from server events.
type View struct {
	Token    string
	MySymbol entity.Mark
	MyTurn   bool
	Board    entity.Board
	Phase    Phase
	Notice   string
	// Score counts round wins by mark index.
	Score      [2]int
	LastWinner entity.Mark
}

func lobbyView(notice string) View {
	return View{Phase: PhaseLobby, Notice: notice}
}

func turnNotice(turn entity.Mark) string {
	return fmt.Sprintf("Player %s's Turn", turn)
}
