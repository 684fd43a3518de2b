package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for posters.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posters",
		Short: "Generate printable memorial posters from a JSON backup",
		Long: `posters generates one printable A4 PDF per memorial record.

Every poster carries the person's photo (or a placeholder when it cannot be
downloaded), their name in Latin and Persian script, the city and date, a
biography sized to fit the page, and a QR code pointing to the verification
page of the record.

Photos can be fetched directly, through a SOCKS5 proxy (--proxy) or through
an embedded Tor daemon (--tor).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
