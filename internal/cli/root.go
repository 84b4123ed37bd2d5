package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the tictactoe command tree. newLogger turns a configured level name
// into the process logger.
func NewRootCmd(newLogger func(level string) *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe offline, against the AI or online in two-player rooms",
		Long: `tictactoe runs the realtime room server and the terminal clients.

  serve   start the websocket room server
  play    play offline, hot-seat or against the AI
  online  join a server and play in a room`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(newLogger))
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newOnlineCmd(newLogger))

	return rootCmd
}
