package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timed-quiz/internal/config"
	"timed-quiz/internal/transport/terminal"
)

// NewPlayCmd runs a single quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal (a-d answer, n skip, g N jump, r restart, q quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			service, cleanup, err := newQuizService(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return terminal.Run(ctx, service, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
