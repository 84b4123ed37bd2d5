package tictactoe

import (
	"errors"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

var ErrNoMovesLeft = errors.New("no available moves")

const (
	scoreWin  = 1
	scoreLoss = -1
	scoreDraw = 0
)

// BestMove searches the whole game tree with minimax and returns the cell that is best
// for ai assuming optimal play from the opponent. Ties go to the lowest index.
func BestMove(board entity.Board, ai entity.Mark) (int, error) {
	cells := EmptyCells(board)
	if len(cells) == 0 || Winner(board) != entity.Empty {
		return -1, ErrNoMovesLeft
	}

	bestScore := scoreLoss - 1
	bestMove := -1

	for _, cell := range cells {
		board[cell] = ai
		score := minimax(board, ai, false)
		board[cell] = entity.Empty

		if score > bestScore {
			bestScore = score
			bestMove = cell
		}
	}

	return bestMove, nil
}

// minimax scores the board from ai's point of view. The board is passed by value,
// so every branch works on its own copy.
func minimax(board entity.Board, ai entity.Mark, maximizing bool) int {
	switch {
	case CheckWin(board, ai):
		return scoreWin
	case CheckWin(board, ai.Opponent()):
		return scoreLoss
	case CheckDraw(board):
		return scoreDraw
	}

	mark := ai.Opponent()
	best := scoreWin + 1
	if maximizing {
		mark = ai
		best = scoreLoss - 1
	}

	for _, cell := range EmptyCells(board) {
		board[cell] = mark
		score := minimax(board, ai, !maximizing)
		board[cell] = entity.Empty

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
