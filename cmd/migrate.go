package cmd

import (
	"fmt"

	"ditto/internal/store"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the database schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(GetConfig().Database)
		if err != nil {
			return err
		}
		defer store.New(db).Close()

		if err := store.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
