package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"autoreviews-backend/lib/configutil"
	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/lib/serviceutil"
	"autoreviews-backend/lib/sqliteutil"
	"autoreviews-backend/services/harvester"
	"autoreviews-backend/services/harvester/db"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

type Config struct {
	BaseUrl string `json:"base_url"`
	// directory of the listing-page cache; empty disables caching
	CachePath     string           `json:"cache_path"`
	CacheTTLHours int              `json:"cache_ttl_hours"`
	Harvest       harvester.Config `json:"harvest"`
}

var (
	runDb    *string
	runBrand *string
	runModel *string
)

func init() {
	runDb = runCmd.Flags().String("db", "reviews.db", "The database to write harvest results to.")
	runBrand = runCmd.Flags().String("brand", "", "Harvest only this brand (catalog slug).")
	runModel = runCmd.Flags().String("model", "", "Harvest only this model (catalog slug, requires --brand).")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--brand <slug>] [--model <slug>] [--db <path/to/output.db>]",
	Short: "Walks the review catalog once and stores everything new or incomplete.",
	Run: func(cmd *cobra.Command, args []string) {
		if *runModel != "" && *runBrand == "" {
			serviceutil.Fatal("invalid flags", errors.New("--model requires --brand"))
		}

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no config.json5 found, using defaults")
		} else if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		var cache *badger.DB
		if cfg.CachePath != "" {
			cache, err = badger.Open(
				badger.DefaultOptions(cfg.CachePath).WithLogger(nil),
			)
			if err != nil {
				serviceutil.Fatal("failed to open page cache", err)
			}
			defer cache.Close()
		}

		ctx := serviceutil.SignalContext()
		client, err := drom.NewClient(ctx, drom.ClientOptions{
			BaseUrl:  cfg.BaseUrl,
			Cache:    cache,
			CacheTTL: time.Duration(cfg.CacheTTLHours) * time.Hour,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize drom client", err)
		}

		database, err := sqliteutil.OpenDB(db.Schema, *runDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		scope := harvester.Scope{Brand: *runBrand, Model: *runModel}
		slog.Info("starting harvest", "scope", scope.String(), "db", *runDb)

		service := harvester.NewService(database, client, cfg.Harvest)
		snapshot, err := service.RunHarvest(ctx, scope)
		if errors.Is(err, context.Canceled) {
			slog.Warn("harvest interrupted",
				"saved", snapshot.Saved, "failed", snapshot.Failed)
			return
		}
		if err != nil {
			serviceutil.Fatal("harvest failed", err)
		}
	},
}
