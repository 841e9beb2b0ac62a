package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/habito/habito-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "habito-configure",
		Short: "Configuration tool for the Habito API",
		Long:  "CLI tool for configuring OIDC providers and other settings",
	}

	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewTemplatesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
