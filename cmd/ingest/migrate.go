package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"localfeed/internal/infra/db"
)

var flagMigrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply (or with --down, drop) the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		if flagMigrateDown {
			if err := db.MigrateDown(database); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
			return nil
		}
		if err := db.MigrateUp(database); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&flagMigrateDown, "down", false, "drop all tables instead of creating them")
}
