package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/app"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
)

// BotCmd returns the bot command, which runs a single bot in the foreground.
func BotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run one ticket bot",
		Long: `Run one ticket bot configured from the environment (and .env when present).

The launcher starts this command once per manifest entry with TOKEN, PORT,
BOT_NAME and DATA_DIR set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, app.Options{Logger: logger})
			if err != nil {
				logger.Error("bot failed to start", zap.Error(err))
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}
