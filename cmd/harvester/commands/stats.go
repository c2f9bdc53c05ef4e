package commands

import (
	"os"
	"time"

	"autoreviews-backend/lib/serviceutil"
	"autoreviews-backend/lib/sqliteutil"
	"autoreviews-backend/services/harvester/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var statsDb *string

func init() {
	statsDb = statsCmd.Flags().String("db", "reviews.db", "The database to read.")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [--db <path/to/output.db>]",
	Short: "Prints row counts and the outcome of the last harvest session.",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := sqliteutil.OpenDB(db.Schema, *statsDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		qry := db.New(database)

		brands, err := qry.CountBrands(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count brands", err)
		}
		models, err := qry.CountModels(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count models", err)
		}
		reviews, err := qry.CountReviews(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count reviews", err)
		}
		partial, err := qry.CountReviewsByParseStatus(ctx, db.ParseStatusPartial)
		if err != nil {
			serviceutil.Fatal("failed to count partial reviews", err)
		}
		errored, err := qry.CountReviewsByParseStatus(ctx, db.ParseStatusError)
		if err != nil {
			serviceutil.Fatal("failed to count errored reviews", err)
		}
		comments, err := qry.CountComments(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count comments", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Table", "Rows"})
		t.AppendRow(table.Row{"brands", brands})
		t.AppendRow(table.Row{"models", models})
		t.AppendRow(table.Row{"reviews", reviews})
		t.AppendRow(table.Row{"reviews (partial)", partial})
		t.AppendRow(table.Row{"reviews (parse errors)", errored})
		t.AppendRow(table.Row{"comments", comments})
		t.SetStyle(table.StyleRounded)
		t.Render()

		session, err := qry.GetLastHarvestSession(ctx)
		if err != nil {
			// nothing harvested yet
			return
		}

		s := table.NewWriter()
		s.SetOutputMirror(os.Stdout)
		s.AppendHeader(table.Row{"Last Session", ""})
		s.AppendRow(table.Row{"scope", session.Scope})
		s.AppendRow(table.Row{"started", session.StartedAt.Format(time.RFC3339)})
		if session.FinishedAt.Valid {
			s.AppendRow(table.Row{"finished", session.FinishedAt.Time.Format(time.RFC3339)})
		}
		s.AppendRow(table.Row{"fetched", session.Fetched})
		s.AppendRow(table.Row{"parsed", session.Parsed})
		s.AppendRow(table.Row{"saved", session.Saved})
		s.AppendRow(table.Row{"skipped duplicates", session.SkippedDuplicate})
		s.AppendRow(table.Row{"rewritten", session.Rewritten})
		s.AppendRow(table.Row{"failed", session.Failed})
		s.SetStyle(table.StyleRounded)
		s.Render()
	},
}
