package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/client"
)

const onlineHelp = "Type c to create a room, j <code> to join, 1-9 to play, r to request the next round, q to quit."

type onlineOptions struct {
	server string
	create bool
	join   string
}

func newOnlineCmd(newLogger func(level string) *slog.Logger) *cobra.Command {
	opts := onlineOptions{}

	cmd := &cobra.Command{
		Use:   "online",
		Short: "Play against another player through a server",
		Long: `Connect to a tictactoe-online server and play in a two-player room.

Examples:
  tictactoe online --create
  tictactoe online --join ABC123 --server ws://game.example.com:9090/ws`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnline(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), newLogger("warn"), opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "ws://localhost:9090/ws", "Server websocket URL")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create a room right away")
	cmd.Flags().StringVar(&opts.join, "join", "", "Join the room with this code right away")
	cmd.MarkFlagsMutuallyExclusive("create", "join")

	return cmd
}

func runOnline(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger, opts onlineOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, err := client.Dial(ctx, opts.server)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var outMu sync.Mutex
	show := func(text string) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprint(out, text)
	}

	session := client.NewSession(logger, conn, client.SessionOptions{
		OnChange: func(view client.View) { show(renderView(view)) },
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- conn.Listen(ctx, session.Handle, func(err error) {
			logger.Warn("bad server event", "error", err)
		})
		session.Leave()
		cancel()
	}()

	show(onlineHelp + "\n")

	switch {
	case opts.create:
		err = session.CreateRoom()
	case opts.join != "":
		err = session.JoinRoom(opts.join)
	}
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return <-listenErr
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			quit, err := onlineCommand(session, line)
			if quit {
				return nil
			}
			if err != nil {
				show(renderNotice(onlineError(err)) + "\n")
			}
		}
	}
}

// onlineCommand applies one line of user input to the session.
func onlineCommand(session *client.Session, line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "q", "quit":
		return true, nil
	case "c", "create":
		return false, session.CreateRoom()
	case "j", "join":
		if len(fields) < 2 {
			return false, client.ErrEmptyRoomCode
		}
		return false, session.JoinRoom(fields[1])
	case "r", "reset":
		return false, session.RequestReset()
	}

	cell, err := strconv.Atoi(fields[0])
	if err != nil {
		return false, errUnknownCommand
	}

	return false, session.Move(cell - 1)
}

var errUnknownCommand = errors.New(onlineHelp)

func onlineError(err error) string {
	switch {
	case errors.Is(err, client.ErrNotPlaying):
		return "No round is being played right now."
	case errors.Is(err, client.ErrNotInRoom):
		return "You are not in a room."
	case errors.Is(err, client.ErrEmptyRoomCode):
		return "Please enter a room code to join."
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrNotYourTurn):
		return moveError(err)
	default:
		return err.Error()
	}
}
