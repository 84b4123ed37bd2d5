package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rocketscienceinc/tictactoe-online/internal/cli"
)

// main - is the entry point of the application. It builds the command tree and runs it.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := cli.NewRootCmd(initLogger).Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize logger.
func initLogger(logLevel string) *slog.Logger {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
