package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mentora/internal/interfaces/cli/migrate"
	"mentora/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mentora",
		Short: "Advisor credit ledger and assignment lifecycle engine",
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
