package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-online/internal"
	"github.com/rocketscienceinc/tictactoe-online/internal/config"
)

func newServeCmd(newLogger func(level string) *slog.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the room server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if err = app.RunApp(newLogger(conf.LogLevel), conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "./config.yml", "Path to the config file")

	return cmd
}
