package commands

import (
	"log/slog"

	"autoreviews-backend/lib/serviceutil"
	"autoreviews-backend/lib/sqliteutil"
	"autoreviews-backend/services/harvester/db"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var initdbDb *string

func init() {
	initdbDb = initdbCmd.Flags().String("db", "reviews.db", "The database file to create.")
	rootCmd.AddCommand(initdbCmd)
}

var initdbCmd = &cobra.Command{
	Use:   "initdb [--db <path/to/output.db>]",
	Short: "Creates an empty review database with the full schema applied.",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := sqliteutil.OpenDB(db.Schema, *initdbDb)
		if err != nil {
			serviceutil.Fatal("failed to create db", err)
		}
		defer database.Close()
		slog.Info("database initialized", "db", *initdbDb)
	},
}
