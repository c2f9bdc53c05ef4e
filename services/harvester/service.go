package harvester

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"autoreviews-backend/lib/ratelimit"
	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/services/harvester/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvester")

type Config struct {
	Workers               int              `json:"workers"`
	MaxPagesPerModel      int              `json:"max_pages_per_model"`
	CompletenessThreshold int              `json:"completeness_threshold"`
	RateLimit             ratelimit.Config `json:"rate_limit"`
}

func DefaultConfig() Config {
	return Config{
		Workers:               4,
		MaxPagesPerModel:      50,
		CompletenessThreshold: DefaultCompletenessThreshold,
		RateLimit:             ratelimit.DefaultConfig(),
	}
}

type Service struct {
	db  *sql.DB
	qry *db.Queries

	fetcher   pageFetcher
	extractor drom.PageExtractor
	cfg       Config
}

func NewService(database *sql.DB, client *drom.Client, cfg Config) Service {
	return newService(database, client, drom.NewExtractor(), cfg)
}

func newService(database *sql.DB, fetcher pageFetcher, extractor drom.PageExtractor, cfg Config) Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.MaxPagesPerModel <= 0 {
		cfg.MaxPagesPerModel = DefaultConfig().MaxPagesPerModel
	}
	if cfg.CompletenessThreshold <= 0 {
		cfg.CompletenessThreshold = DefaultCompletenessThreshold
	}
	if cfg.RateLimit == (ratelimit.Config{}) {
		cfg.RateLimit = ratelimit.DefaultConfig()
	}
	return Service{
		db:        database,
		qry:       db.New(database),
		fetcher:   fetcher,
		extractor: extractor,
		cfg:       cfg,
	}
}

// RunHarvest walks the scoped part of the catalog once and persists the
// run counters as a harvest session row. The counters gathered so far
// are stored and returned even when the walk is aborted.
func (s Service) RunHarvest(ctx context.Context, scope Scope) (SessionSnapshot, error) {
	ctx, span := tracer.Start(ctx, "RunHarvest")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.String()))

	sessionID, err := s.qry.CreateHarvestSession(ctx, db.CreateHarvestSessionParams{
		Scope:     scope.String(),
		StartedAt: time.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SessionSnapshot{}, err
	}

	tracker := NewSessionTracker()
	walker := NewCatalogWalker(WalkerOptions{
		Fetcher:          s.fetcher,
		Extractor:        s.extractor,
		Limiter:          ratelimit.New(s.cfg.RateLimit),
		Upserter:         NewRecordUpserter(s.db, s.cfg.CompletenessThreshold),
		Queries:          s.qry,
		Tracker:          tracker,
		Workers:          s.cfg.Workers,
		MaxPagesPerModel: s.cfg.MaxPagesPerModel,
	})

	walkErr := walker.Walk(ctx, scope)
	snapshot := tracker.Snapshot()

	// the session row is finalized without the walk's context so a
	// cancelled run still records what it got done
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err = s.qry.FinishHarvestSession(finishCtx, db.FinishHarvestSessionParams{
		FinishedAt:       sql.NullTime{Time: time.Now(), Valid: true},
		Fetched:          snapshot.Fetched,
		Parsed:           snapshot.Parsed,
		Saved:            snapshot.Saved,
		SkippedDuplicate: snapshot.SkippedDuplicate,
		Rewritten:        snapshot.Rewritten,
		Failed:           snapshot.Failed,
		ID:               sessionID,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to finalize harvest session", "session_id", sessionID, "err", err)
	}

	if walkErr != nil {
		span.RecordError(walkErr)
		span.SetStatus(codes.Error, walkErr.Error())
		return snapshot, walkErr
	}

	slog.InfoContext(ctx, "harvest finished",
		"scope", scope.String(),
		"fetched", snapshot.Fetched,
		"parsed", snapshot.Parsed,
		"saved", snapshot.Saved,
		"skipped_duplicate", snapshot.SkippedDuplicate,
		"rewritten", snapshot.Rewritten,
		"failed", snapshot.Failed,
		"elapsed", snapshot.Elapsed.Round(time.Millisecond),
	)
	return snapshot, nil
}
