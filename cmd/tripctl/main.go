package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tripdiary/tripadmin/cmd/tripctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tripctl",
		Short:        "Administrative tasks for the tripadmin backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
