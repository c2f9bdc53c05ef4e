package harvester

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"autoreviews-backend/lib/ratelimit"
	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/lib/testutil"
	"autoreviews-backend/services/harvester/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeFetcher hands the requested path back as the "markup" so the fake
// extractor can key its canned responses on it.
type fakeFetcher struct {
	mu       sync.Mutex
	requests []string
	notFound map[string]bool
	failing  map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, path)
	f.mu.Unlock()
	if f.notFound[path] {
		return nil, fmt.Errorf("GET %s: %w", path, drom.ErrNotFound)
	}
	if f.failing[path] {
		return nil, fmt.Errorf("GET %s: status 503", path)
	}
	return []byte(path), nil
}

func (f *fakeFetcher) FetchCached(ctx context.Context, path string) ([]byte, error) {
	return f.Fetch(ctx, path)
}

func (f *fakeFetcher) requested(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == path {
			return true
		}
	}
	return false
}

type fakeExtractor struct {
	brands  map[string][]drom.BrandStub
	models  map[string][]drom.ModelStub
	refs    map[string][]drom.ReviewRef
	details map[string]drom.ReviewDetail
}

func (e *fakeExtractor) ExtractBrandList(markup []byte) ([]drom.BrandStub, error) {
	return e.brands[string(markup)], nil
}

func (e *fakeExtractor) ExtractModelList(markup []byte) ([]drom.ModelStub, error) {
	return e.models[string(markup)], nil
}

func (e *fakeExtractor) ExtractReviewRefs(markup []byte) ([]drom.ReviewRef, error) {
	return e.refs[string(markup)], nil
}

func (e *fakeExtractor) ExtractReviewDetail(markup []byte) (drom.ReviewDetail, error) {
	detail, ok := e.details[string(markup)]
	if !ok {
		return drom.ReviewDetail{}, fmt.Errorf("no usable review content")
	}
	return detail, nil
}

func reviewRef(brand, model, id string) drom.ReviewRef {
	return drom.ReviewRef{
		ExternalID: id,
		URL:        "/reviews/" + brand + "/" + model + "/" + id + "/",
	}
}

func detailFor(ref drom.ReviewRef) drom.ReviewDetail {
	return drom.ReviewDetail{
		ExternalID: ref.ExternalID,
		URL:        ref.URL,
		Title:      "review " + ref.ExternalID,
		Body:       strings.Repeat("повседневная эксплуатация ", 10),
		AuthorName: "author_" + ref.ExternalID,
	}
}

// oneModelSite builds a catalog with a single toyota/corolla model whose
// first listing page carries the given refs.
func oneModelSite(refs []drom.ReviewRef) (*fakeFetcher, *fakeExtractor) {
	fetcher := &fakeFetcher{
		notFound: map[string]bool{drom.ModelPagePath("toyota", "corolla", 2): true},
		failing:  map[string]bool{},
	}
	extractor := &fakeExtractor{
		brands: map[string][]drom.BrandStub{
			drom.BrandListPath: {{Slug: "toyota", Name: "Toyota", ReviewCount: 3}},
		},
		models: map[string][]drom.ModelStub{
			drom.BrandPath("toyota"): {{Slug: "corolla", Name: "Corolla"}},
		},
		refs: map[string][]drom.ReviewRef{
			drom.ModelPagePath("toyota", "corolla", 1): refs,
		},
		details: map[string]drom.ReviewDetail{},
	}
	for _, ref := range refs {
		extractor.details[ref.URL] = detailFor(ref)
	}
	return fetcher, extractor
}

func newTestWalker(t *testing.T, fetcher *fakeFetcher, extractor *fakeExtractor) (*CatalogWalker, *SessionTracker, *db.Queries) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/walker",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	qry := db.New(setup.DB)
	tracker := NewSessionTracker()
	walker := NewCatalogWalker(WalkerOptions{
		Fetcher:          fetcher,
		Extractor:        extractor,
		Limiter:          ratelimit.New(ratelimit.Config{}),
		Upserter:         NewRecordUpserter(setup.DB, DefaultCompletenessThreshold),
		Queries:          qry,
		Tracker:          tracker,
		Workers:          2,
		MaxPagesPerModel: 10,
	})
	return walker, tracker, qry
}

func TestWalkDecisionTable(t *testing.T) {
	refA := reviewRef("toyota", "corolla", "101")
	refB := reviewRef("toyota", "corolla", "102")
	refC := reviewRef("toyota", "corolla", "103")
	fetcher, extractor := oneModelSite([]drom.ReviewRef{refA, refB, refC})
	walker, tracker, qry := newTestWalker(t, fetcher, extractor)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// pre-seed: B is already stored complete, C only as a stub
	resolver := walker.resolver
	brand, err := resolver.ResolveBrand(ctx, drom.BrandStub{Slug: "toyota", Name: "Toyota"})
	require.NoError(t, err)
	model, err := resolver.ResolveModel(ctx, brand.ID, drom.ModelStub{Slug: "corolla", Name: "Corolla"})
	require.NoError(t, err)
	_, err = walker.upserter.Upsert(ctx, model.ID, detailFor(refB))
	require.NoError(t, err)
	stubC := detailFor(refC)
	stubC.Body = "ok"
	_, err = walker.upserter.Upsert(ctx, model.ID, stubC)
	require.NoError(t, err)

	err = walker.Walk(ctx, Scope{})
	require.NoError(t, err)

	snapshot := tracker.Snapshot()
	require.Equal(t, int64(2), snapshot.Fetched, "only A and C hit the detail page")
	require.Equal(t, int64(2), snapshot.Parsed)
	require.Equal(t, int64(2), snapshot.Saved)
	require.Equal(t, int64(1), snapshot.SkippedDuplicate)
	require.Equal(t, int64(1), snapshot.Rewritten)
	require.Equal(t, int64(0), snapshot.Failed)

	require.False(t, fetcher.requested(refB.URL), "a complete row skips the detail fetch")

	count, err := qry.CountReviews(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	// the listing hint was written onto the brand row
	got, err := qry.GetBrandBySlug(ctx, "toyota")
	require.NoError(t, err)
	require.Equal(t, int64(3), got.ReviewCountHint)
}

func TestWalkFailureIsolation(t *testing.T) {
	refA := reviewRef("toyota", "corolla", "201")
	refB := reviewRef("toyota", "corolla", "202")
	refC := reviewRef("toyota", "corolla", "203")
	fetcher, extractor := oneModelSite([]drom.ReviewRef{refA, refB, refC})
	// B's detail page refuses to load, C's markup yields nothing
	fetcher.failing[refB.URL] = true
	delete(extractor.details, refC.URL)
	walker, tracker, qry := newTestWalker(t, fetcher, extractor)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	err := walker.Walk(ctx, Scope{})
	require.NoError(t, err, "per-review failures do not abort the walk")

	snapshot := tracker.Snapshot()
	require.Equal(t, int64(1), snapshot.Saved)
	require.Equal(t, int64(2), snapshot.Failed)

	// A landed, C left an error stub, B never got past the fetch
	count, err := qry.CountReviews(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	stub, err := qry.GetReviewByExternalID(ctx, "203")
	require.NoError(t, err)
	require.Equal(t, db.ParseStatusError, stub.ParseStatus)
	require.True(t, stub.ParseErrorDetail.Valid)
}

func TestWalkStalePagination(t *testing.T) {
	refs := []drom.ReviewRef{
		reviewRef("toyota", "corolla", "301"),
		reviewRef("toyota", "corolla", "302"),
	}
	fetcher, extractor := oneModelSite(refs)
	// pages 2 and 3 repeat page 1, page 4 would be new again but the
	// walk must never get there
	delete(fetcher.notFound, drom.ModelPagePath("toyota", "corolla", 2))
	extractor.refs[drom.ModelPagePath("toyota", "corolla", 2)] = refs
	extractor.refs[drom.ModelPagePath("toyota", "corolla", 3)] = refs
	extractor.refs[drom.ModelPagePath("toyota", "corolla", 4)] = []drom.ReviewRef{
		reviewRef("toyota", "corolla", "304"),
	}
	walker, tracker, _ := newTestWalker(t, fetcher, extractor)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	err := walker.Walk(ctx, Scope{})
	require.NoError(t, err)

	require.True(t, fetcher.requested(drom.ModelPagePath("toyota", "corolla", 3)))
	require.False(t, fetcher.requested(drom.ModelPagePath("toyota", "corolla", 4)),
		"two stale pages end pagination")
	require.Equal(t, int64(2), tracker.Snapshot().Saved)
}

func TestWalkUnknownBrandScope(t *testing.T) {
	fetcher, extractor := oneModelSite(nil)
	walker, _, _ := newTestWalker(t, fetcher, extractor)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := walker.Walk(ctx, Scope{Brand: "lada"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "lada")
}

func TestWalkScopedToModel(t *testing.T) {
	refA := reviewRef("toyota", "corolla", "401")
	fetcher, extractor := oneModelSite([]drom.ReviewRef{refA})
	extractor.models[drom.BrandPath("toyota")] = append(
		extractor.models[drom.BrandPath("toyota")],
		drom.ModelStub{Slug: "camry", Name: "Camry"},
	)
	walker, tracker, _ := newTestWalker(t, fetcher, extractor)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	err := walker.Walk(ctx, Scope{Brand: "toyota", Model: "corolla"})
	require.NoError(t, err)
	require.Equal(t, int64(1), tracker.Snapshot().Saved)
	require.False(t, fetcher.requested(drom.ModelPagePath("toyota", "camry", 1)))
}
