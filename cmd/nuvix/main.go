package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nuvix-market/nuvix-suite/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "nuvix",
		Short:   "Nuvix Suite - Discord support ticket bots",
		Version: version,
		Long: `Nuvix Suite runs Discord support-ticket bots. "launch" supervises every bot
of a manifest; "bot" runs a single bot in the foreground.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.LaunchCmd())
	rootCmd.AddCommand(cli.BotCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
