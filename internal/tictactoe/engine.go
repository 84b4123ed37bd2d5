package tictactoe

import "github.com/rocketscienceinc/tictactoe-online/internal/entity"

// WinCombos are the 3 rows, 3 columns and 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// CheckWin reports whether mark occupies a full line.
func CheckWin(board entity.Board, mark entity.Mark) bool {
	if mark == entity.Empty {
		return false
	}

	for _, combo := range WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}

	return false
}

// CheckDraw reports whether no empty cells remain. Callers check for a win first.
func CheckDraw(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.Empty {
			return false
		}
	}

	return true
}

// EmptyCells returns free cell indexes in ascending order.
func EmptyCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

// Winner returns the mark holding a full line, or Empty.
func Winner(board entity.Board) entity.Mark {
	switch {
	case CheckWin(board, entity.X):
		return entity.X
	case CheckWin(board, entity.O):
		return entity.O
	default:
		return entity.Empty
	}
}
