package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nuvix-market/nuvix-suite/internal/auth"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Read API credential helpers",
	}
	cmd.AddCommand(hashKeyCmd())
	return cmd
}

func hashKeyCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the bcrypt hash of an API key for API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			fmt.Fprintln(cmd.ErrOrStderr(), color.New(color.FgYellow).Sprint("set API_KEY_HASH to the value above"))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default 10)")
	return cmd
}
