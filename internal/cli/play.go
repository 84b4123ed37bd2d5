package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

const localHelp = "Type 1-9 to play a cell, n for the next round, r to reset the scores, q to quit."

func newPlayCmd() *cobra.Command {
	var vsAI bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play offline on this terminal",
		Long: `Play tic-tac-toe offline.

Without flags two players share the keyboard (hot-seat). With --ai you play X
against an unbeatable minimax opponent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := tictactoe.ModeHotSeat
			if vsAI {
				mode = tictactoe.ModeAI
			}

			return runLocal(cmd.InOrStdin(), cmd.OutOrStdout(), tictactoe.NewLocalGame(mode))
		},
	}

	cmd.Flags().BoolVar(&vsAI, "ai", false, "Play against the computer")

	return cmd
}

// runLocal reads commands line by line until q or end of input.
func runLocal(in io.Reader, out io.Writer, game *tictactoe.LocalGame) error {
	fmt.Fprintln(out, localHelp)
	printLocal(out, game, turnLine(game))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "r", "reset":
			game.Reset()
			printLocal(out, game, turnLine(game))
			continue
		case "n", "next":
			if err := game.NextRound(); err != nil {
				fmt.Fprintln(out, renderNotice("Finish the round first."))
				continue
			}

			// O opens after an O win, so the AI may have to move first
			if game.Mode() == tictactoe.ModeAI && game.Turn() == tictactoe.AIMark {
				outcome, err := game.AIMove()
				if err != nil {
					return fmt.Errorf("AI failed to move: %w", err)
				}
				printLocal(out, game, resultLine(game, outcome))
				continue
			}

			printLocal(out, game, turnLine(game))
			continue
		}

		cell, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(out, renderNotice(localHelp))
			continue
		}

		outcome, err := game.Play(cell - 1)
		if err != nil {
			fmt.Fprintln(out, renderNotice(moveError(err)))
			continue
		}

		if outcome.Result == tictactoe.RoundContinues && game.Mode() == tictactoe.ModeAI {
			outcome, err = game.AIMove()
			if err != nil {
				return fmt.Errorf("AI failed to move: %w", err)
			}
		}

		printLocal(out, game, resultLine(game, outcome))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func printLocal(out io.Writer, game *tictactoe.LocalGame, notice string) {
	fmt.Fprintln(out, renderBoard(game.Board()))
	fmt.Fprintln(out, renderScore(game.Score(entity.X), game.Score(entity.O)))
	fmt.Fprintln(out, renderNotice(notice))
}

func turnLine(game *tictactoe.LocalGame) string {
	if game.Mode() == tictactoe.ModeAI && game.Turn() == tictactoe.AIMark {
		return "AI's Turn..."
	}

	return fmt.Sprintf("Player %s's Turn", game.Turn())
}

func resultLine(game *tictactoe.LocalGame, outcome tictactoe.MoveOutcome) string {
	switch outcome.Result {
	case tictactoe.RoundWon:
		if game.Mode() == tictactoe.ModeAI && outcome.Mark == tictactoe.AIMark {
			return "AI Wins! Type n for the next round."
		}
		return fmt.Sprintf("Player %s Wins! Type n for the next round.", outcome.Mark)
	case tictactoe.RoundDrawn:
		return "Game Draw. Type n for the next round."
	default:
		return turnLine(game)
	}
}

func moveError(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return "This box is already taken!"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "Pick a cell between 1 and 9."
	case errors.Is(err, apperror.ErrRoundOver):
		return "The round is over. Type n for the next round."
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "It's not your turn!"
	default:
		return err.Error()
	}
}
