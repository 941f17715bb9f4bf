package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authtools CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authtools",
		Short: "authtools - register, login and token refresh over HTTP",
		Long: `authtools serves the register, login, logout, refresh and check flows
over HTTP, backed by PostgreSQL or memory for users and Redis or memory for
refresh tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewLoadtestCmd())

	return cmd
}
