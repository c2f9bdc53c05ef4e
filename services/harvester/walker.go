package harvester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"autoreviews-backend/lib/ratelimit"
	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/services/harvester/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Scope narrows a walk to one brand or one model. The zero value walks
// the whole catalog.
type Scope struct {
	Brand string
	Model string
}

func (s Scope) String() string {
	switch {
	case s.Brand == "":
		return "all"
	case s.Model == "":
		return s.Brand
	default:
		return s.Brand + "/" + s.Model
	}
}

// pageFetcher is the slice of drom.Client the walker needs. Listing
// pages go through the cache, detail pages always hit the site.
type pageFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
	FetchCached(ctx context.Context, path string) ([]byte, error)
}

// stalePageLimit is how many consecutive listing pages may contribute
// zero unseen reviews before pagination for the model stops. Listings
// shift while a walk is running, so a single empty delta is not proof
// the tail has been reached.
const stalePageLimit = 2

type WalkerOptions struct {
	Fetcher   pageFetcher
	Extractor drom.PageExtractor
	Limiter   *ratelimit.Limiter
	Upserter  RecordUpserter
	Queries   *db.Queries
	Tracker   *SessionTracker

	Workers          int
	MaxPagesPerModel int
}

// CatalogWalker traverses brand, model and review listing pages and
// fans detail work out to a fixed pool of workers. Failures on a single
// review, model or brand are logged and counted; only catalog-root
// failures or context cancellation abort the walk.
type CatalogWalker struct {
	fetcher   pageFetcher
	extractor drom.PageExtractor
	limiter   *ratelimit.Limiter
	upserter  RecordUpserter
	resolver  EntityResolver
	qry       *db.Queries
	tracker   *SessionTracker

	workers          int
	maxPagesPerModel int
}

func NewCatalogWalker(opts WalkerOptions) *CatalogWalker {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxPagesPerModel <= 0 {
		opts.MaxPagesPerModel = 50
	}
	return &CatalogWalker{
		fetcher:          opts.Fetcher,
		extractor:        opts.Extractor,
		limiter:          opts.Limiter,
		upserter:         opts.Upserter,
		resolver:         NewEntityResolver(opts.Queries),
		qry:              opts.Queries,
		tracker:          opts.Tracker,
		workers:          opts.Workers,
		maxPagesPerModel: opts.MaxPagesPerModel,
	}
}

type walkJob struct {
	modelID int64
	ref     drom.ReviewRef
}

// Walk runs one harvest pass over the scoped part of the catalog. On
// cancellation dispatch stops immediately but in-flight detail writes
// are allowed to finish.
func (w *CatalogWalker) Walk(ctx context.Context, scope Scope) error {
	ctx, span := tracer.Start(ctx, "Walk")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope.String()))

	jobs := make(chan walkJob, w.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.worker(ctx, jobs)
		}()
	}

	err := w.dispatch(ctx, scope, jobs)
	close(jobs)
	wg.Wait()
	if err == nil {
		// cancellation during the drain still counts as an aborted walk
		err = ctx.Err()
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (w *CatalogWalker) dispatch(ctx context.Context, scope Scope, jobs chan<- walkJob) error {
	err := w.limiter.Throttle(ctx, ratelimit.TierBrand)
	if err != nil {
		return err
	}
	markup, err := w.fetcher.FetchCached(ctx, drom.BrandListPath)
	if err != nil {
		return fmt.Errorf("fetch catalog root: %w", err)
	}
	brands, err := w.extractor.ExtractBrandList(markup)
	if err != nil {
		return fmt.Errorf("parse catalog root: %w", err)
	}

	if scope.Brand != "" {
		var match *drom.BrandStub
		for i := range brands {
			if brands[i].Slug == scope.Brand {
				match = &brands[i]
				break
			}
		}
		if match == nil {
			return fmt.Errorf("brand %q not found in catalog", scope.Brand)
		}
		brands = []drom.BrandStub{*match}
	}

	for _, brandStub := range brands {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := w.walkBrand(ctx, scope, brandStub, jobs)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			slog.WarnContext(ctx, "brand walk failed", "brand", brandStub.Slug, "err", err)
		}
	}
	return nil
}

func (w *CatalogWalker) walkBrand(ctx context.Context, scope Scope, brandStub drom.BrandStub, jobs chan<- walkJob) error {
	brand, err := w.resolver.ResolveBrand(ctx, brandStub)
	if err != nil {
		return err
	}
	if brandStub.ReviewCount > 0 && brandStub.ReviewCount != brand.ReviewCountHint {
		err = w.qry.UpdateBrandReviewCountHint(ctx, db.UpdateBrandReviewCountHintParams{
			ReviewCountHint: brandStub.ReviewCount,
			ID:              brand.ID,
		})
		if err != nil {
			return err
		}
	}

	err = w.limiter.Throttle(ctx, ratelimit.TierBrand)
	if err != nil {
		return err
	}
	markup, err := w.fetcher.FetchCached(ctx, drom.BrandPath(brandStub.Slug))
	if err != nil {
		return err
	}
	models, err := w.extractor.ExtractModelList(markup)
	if err != nil {
		return err
	}

	if scope.Model != "" {
		var match *drom.ModelStub
		for i := range models {
			if models[i].Slug == scope.Model {
				match = &models[i]
				break
			}
		}
		if match == nil {
			return fmt.Errorf("model %q not found under brand %q", scope.Model, scope.Brand)
		}
		models = []drom.ModelStub{*match}
	}

	slog.DebugContext(ctx, "walking brand", "brand", brandStub.Slug, "models", len(models))

	for _, modelStub := range models {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := w.walkModel(ctx, brandStub.Slug, brand.ID, modelStub, jobs)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			slog.WarnContext(ctx, "model walk failed",
				"brand", brandStub.Slug, "model", modelStub.Slug, "err", err)
		}
	}
	return nil
}

func (w *CatalogWalker) walkModel(ctx context.Context, brandSlug string, brandID int64, modelStub drom.ModelStub, jobs chan<- walkJob) error {
	model, err := w.resolver.ResolveModel(ctx, brandID, modelStub)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	staleStreak := 0
	for page := 1; page <= w.maxPagesPerModel; page++ {
		err := w.limiter.Throttle(ctx, ratelimit.TierModel)
		if err != nil {
			return err
		}
		markup, err := w.fetcher.FetchCached(ctx, drom.ModelPagePath(brandSlug, modelStub.Slug, page))
		if errors.Is(err, drom.ErrNotFound) {
			// past the last listing page
			return nil
		}
		if err != nil {
			return err
		}
		refs, err := w.extractor.ExtractReviewRefs(markup)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}
		slog.DebugContext(ctx, "listing page",
			"brand", brandSlug, "model", modelStub.Slug, "page", page, "refs", len(refs))

		unseen := 0
		for _, ref := range refs {
			if seen[ref.ExternalID] {
				continue
			}
			seen[ref.ExternalID] = true
			unseen++

			state, _, err := w.upserter.Classify(ctx, ref.ExternalID)
			if err != nil {
				slog.WarnContext(ctx, "review lookup failed", "external_id", ref.ExternalID, "err", err)
				w.tracker.Failed()
				continue
			}
			if state == ReviewCompleteExisting {
				w.tracker.SkippedDuplicate()
				continue
			}

			select {
			case jobs <- walkJob{modelID: model.ID, ref: ref}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if unseen == 0 {
			staleStreak++
			if staleStreak >= stalePageLimit {
				return nil
			}
		} else {
			staleStreak = 0
		}
	}
	return nil
}

func (w *CatalogWalker) worker(ctx context.Context, jobs <-chan walkJob) {
	for job := range jobs {
		err := w.limiter.Throttle(ctx, ratelimit.TierReview)
		if err != nil {
			// cancelled; drain remaining jobs without fetching
			continue
		}

		markup, err := w.fetcher.Fetch(ctx, job.ref.URL)
		if err != nil {
			slog.WarnContext(ctx, "review fetch failed", "url", job.ref.URL, "err", err)
			w.tracker.Failed()
			continue
		}
		w.tracker.Fetched()

		detail, err := w.extractor.ExtractReviewDetail(markup)
		if err != nil {
			slog.WarnContext(ctx, "review parse failed", "url", job.ref.URL, "err", err)
			w.tracker.Failed()
			recErr := w.upserter.RecordParseFailure(ctx, job.modelID, job.ref, err)
			if recErr != nil {
				slog.WarnContext(ctx, "failed to record parse failure",
					"external_id", job.ref.ExternalID, "err", recErr)
			}
			continue
		}
		// the listing entry is authoritative for identity when the
		// detail markup omits it
		if detail.ExternalID == "" {
			detail.ExternalID = job.ref.ExternalID
		}
		if detail.URL == "" {
			detail.URL = job.ref.URL
		}
		if detail.Title == "" {
			detail.Title = job.ref.Title
		}
		w.tracker.Parsed()

		outcome, err := w.upserter.Upsert(ctx, job.modelID, detail)
		if err != nil {
			slog.WarnContext(ctx, "review upsert failed", "external_id", detail.ExternalID, "err", err)
			w.tracker.Failed()
			continue
		}
		switch outcome {
		case OutcomeSaved:
			w.tracker.Saved()
		case OutcomeRewritten:
			w.tracker.Saved()
			w.tracker.Rewritten()
		case OutcomeSkipped:
			w.tracker.SkippedDuplicate()
		}
	}
}
