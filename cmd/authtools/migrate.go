package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/authtools/store/postgres"
)

type migrateEnv struct {
	DatabaseURL string `env:"AUTHTOOLS_DATABASE_URL,required"`
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
		Long:  `Apply all pending migrations to AUTHTOOLS_DATABASE_URL, or drop the schema with --down.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var e migrateEnv
			if err := env.Parse(&e); err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			if down {
				cmd.Println("Rolling back migrations...")
				return withMigrator(e.DatabaseURL, (*postgres.Migrator).Down)
			}

			cmd.Println("Running migrations...")
			if err := migrateUp(e.DatabaseURL); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")

	return cmd
}

func migrateUp(databaseURL string) error {
	return withMigrator(databaseURL, (*postgres.Migrator).Up)
}

func withMigrator(databaseURL string, run func(*postgres.Migrator) error) (err error) {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); err == nil {
			err = closeErr
		}
	}()
	return run(m)
}
