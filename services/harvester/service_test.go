package harvester

import (
	"context"
	"testing"
	"time"

	"autoreviews-backend/lib/ratelimit"
	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/lib/testutil"
	"autoreviews-backend/services/harvester/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// testConfig keeps the inter-request delays far below the test timeouts.
func testConfig(workers int) Config {
	return Config{
		Workers: workers,
		RateLimit: ratelimit.Config{
			ReviewDelay: time.Millisecond,
			ModelDelay:  time.Millisecond,
			BrandDelay:  time.Millisecond,
		},
	}
}

func TestRunHarvest(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester",
		DbSchema: db.Schema,
	})
	defer cleanup()

	refs := []drom.ReviewRef{
		reviewRef("toyota", "corolla", "501"),
		reviewRef("toyota", "corolla", "502"),
	}
	fetcher, extractor := oneModelSite(refs)
	service := newService(setup.DB, fetcher, extractor, testConfig(2))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	snapshot, err := service.RunHarvest(ctx, Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(2), snapshot.Fetched)
	require.Equal(t, int64(2), snapshot.Saved)
	require.Equal(t, int64(0), snapshot.SkippedDuplicate)

	qry := db.New(setup.DB)
	session, err := qry.GetLastHarvestSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "all", session.Scope)
	require.True(t, session.FinishedAt.Valid)
	require.Equal(t, int64(2), session.Saved)

	// a second pass over an unchanged catalog converges: everything is
	// already complete, nothing is fetched again
	snapshot, err = service.RunHarvest(ctx, Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(0), snapshot.Fetched)
	require.Equal(t, int64(0), snapshot.Saved)
	require.Equal(t, int64(0), snapshot.Rewritten)
	require.Equal(t, int64(2), snapshot.SkippedDuplicate)

	count, err := qry.CountReviews(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	session, err = qry.GetLastHarvestSession(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), session.SkippedDuplicate)
}

func TestRunHarvestConvergesIncompleteRows(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester",
		DbSchema: db.Schema,
	})
	defer cleanup()

	ref := reviewRef("toyota", "corolla", "601")
	fetcher, extractor := oneModelSite([]drom.ReviewRef{ref})
	service := newService(setup.DB, fetcher, extractor, testConfig(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// first pass only manages a stub
	full := extractor.details[ref.URL]
	stub := full
	stub.Body = "ok"
	extractor.details[ref.URL] = stub

	snapshot, err := service.RunHarvest(ctx, Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(1), snapshot.Saved)

	// the site recovers; the next pass rewrites the stub in place
	extractor.details[ref.URL] = full
	snapshot, err = service.RunHarvest(ctx, Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(1), snapshot.Saved)
	require.Equal(t, int64(1), snapshot.Rewritten)

	qry := db.New(setup.DB)
	rec, err := qry.GetReviewByExternalID(ctx, "601")
	require.NoError(t, err)
	require.True(t, IsComplete(rec, DefaultCompletenessThreshold))

	count, err := qry.CountReviews(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

type cancellingFetcher struct {
	inner  pageFetcher
	on     string
	cancel context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if path == f.on {
		f.cancel()
		return nil, context.Canceled
	}
	return f.inner.Fetch(ctx, path)
}

func (f *cancellingFetcher) FetchCached(ctx context.Context, path string) ([]byte, error) {
	if path == f.on {
		f.cancel()
		return nil, context.Canceled
	}
	return f.inner.FetchCached(ctx, path)
}

func TestRunHarvestCancellation(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester",
		DbSchema: db.Schema,
	})
	defer cleanup()

	ref := reviewRef("toyota", "corolla", "701")
	fetcher, extractor := oneModelSite([]drom.ReviewRef{ref})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// pull the plug the moment the first detail page is requested
	service := newService(setup.DB, &cancellingFetcher{
		inner:  fetcher,
		on:     ref.URL,
		cancel: cancel,
	}, extractor, testConfig(1))

	_, err := service.RunHarvest(ctx, Scope{})
	require.ErrorIs(t, err, context.Canceled)

	// the session row is still finalized
	session, err := db.New(setup.DB).GetLastHarvestSession(context.Background())
	require.NoError(t, err)
	require.True(t, session.FinishedAt.Valid)
}
