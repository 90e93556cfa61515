package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timada-org/todo/internal/app/todo"
	"github.com/timada-org/todo/internal/core"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the todo web server",

	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.NewConfig(cfgFile)
		if err != nil {
			return err
		}

		logger, err := core.NewLogger(config.Env, os.Stdout)
		if err != nil {
			return err
		}

		app, err := todo.New(config, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to start")
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		listenErr := app.Listen(ctx)

		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}

		return listenErr
	},
}
