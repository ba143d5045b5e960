package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/launcher"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
)

const defaultManifest = "launcher.yaml"

// LaunchCmd returns the launch command, which runs every bot of a manifest.
func LaunchCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch every bot listed in the manifest",
		Long: `Launch every bot listed in the manifest as a child process.

Bots whose token variable is unset are skipped with a warning. A missing
manifest file runs the built-in default (the tickets bot alone).

Examples:
  nuvix launch
  nuvix launch --manifest deploy/launcher.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if manifestPath == "" {
				manifestPath = os.Getenv("LAUNCHER_MANIFEST")
			}
			if manifestPath == "" {
				manifestPath = defaultManifest
			}

			manifest, err := config.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(config.LoggerConfig{Level: os.Getenv("LOG_LEVEL")}, "launcher")
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			l, err := launcher.New(manifest, launcher.Options{Logger: logger})
			if err != nil {
				return err
			}

			plan := l.Plan()
			fmt.Println(color.New(color.FgCyan, color.Bold).Sprint("🚀 Starting Nuvix Suite"))
			for _, proc := range plan {
				fmt.Printf("  %s %s on :%d\n", color.New(color.FgGreen).Sprint("✓"), proc.Name, proc.Port)
			}
			if skipped := len(manifest.Bots) - len(plan); skipped > 0 {
				fmt.Printf("  %s %d bot(s) skipped, token missing\n", color.New(color.FgYellow).Sprint("!"), skipped)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := l.Run(ctx); err != nil {
				return err
			}
			fmt.Println(color.New(color.FgRed).Sprint("🛑 All bots stopped."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest path (default $LAUNCHER_MANIFEST or launcher.yaml)")
	return cmd
}
