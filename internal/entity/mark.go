package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mark is the content of a board cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

const BoardSize = 9

var ErrUnknownMark = errors.New("unknown mark")

// Board is a row-major 3x3 grid.
type Board [BoardSize]Mark

// MarkForIndex maps a player index to the symbol it plays with for the room's lifetime.
func MarkForIndex(index int) Mark {
	switch index {
	case 0:
		return X
	case 1:
		return O
	default:
		return Empty
	}
}

// ParseMark is the inverse of Mark.String.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "":
		return Empty, nil
	case "X":
		return X, nil
	case "O":
		return O, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownMark, s)
	}
}

func (that Mark) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Index is the player index playing this mark, -1 for Empty.
func (that Mark) Index() int {
	switch that {
	case X:
		return 0
	case O:
		return 1
	default:
		return -1
	}
}

func (that Mark) Opponent() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (that Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	mark, err := ParseMark(s)
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

// Strings renders the board the way clients expect it on the wire.
func (that Board) Strings() [BoardSize]string {
	var cells [BoardSize]string
	for i, mark := range that {
		cells[i] = mark.String()
	}
	return cells
}
