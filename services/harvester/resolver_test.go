package harvester

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/lib/testutil"
	"autoreviews-backend/services/harvester/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestResolveBrandIdempotent(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/resolver",
		DbSchema: db.Schema,
	})
	defer cleanup()
	resolver := NewEntityResolver(db.New(setup.DB))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	stub := drom.BrandStub{
		Slug:        "toyota",
		Name:        "Toyota",
		URL:         "https://www.drom.ru/reviews/toyota/",
		ReviewCount: 1200,
	}
	first, err := resolver.ResolveBrand(ctx, stub)
	require.NoError(t, err)
	second, err := resolver.ResolveBrand(ctx, stub)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	count, err := db.New(setup.DB).CountBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestResolveModelMergesAttributes(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/resolver",
		DbSchema: db.Schema,
	})
	defer cleanup()
	qry := db.New(setup.DB)
	resolver := NewEntityResolver(qry)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	brand, err := resolver.ResolveBrand(ctx, drom.BrandStub{Slug: "honda", Name: "Honda"})
	require.NoError(t, err)

	// first sighting from the listing page carries no attributes
	model, err := resolver.ResolveModel(ctx, brand.ID, drom.ModelStub{
		Slug: "accord",
		Name: "Accord",
	})
	require.NoError(t, err)
	require.False(t, model.FuelType.Valid)

	// a later detail page fills in what it knows
	_, err = resolver.ResolveModel(ctx, brand.ID, drom.ModelStub{
		Slug:           "accord",
		Name:           "Accord",
		FuelType:       "petrol",
		EngineVolumeCC: 2400,
	})
	require.NoError(t, err)

	got, err := qry.GetModelBySlug(ctx, db.GetModelBySlugParams{BrandID: brand.ID, Slug: "accord"})
	require.NoError(t, err)
	require.Equal(t, "petrol", got.FuelType.String)
	require.Equal(t, int64(2400), got.EngineVolumeCc.Int64)

	// existing values are never overwritten
	_, err = resolver.ResolveModel(ctx, brand.ID, drom.ModelStub{
		Slug:     "accord",
		Name:     "Accord",
		FuelType: "diesel",
	})
	require.NoError(t, err)
	got, err = qry.GetModelBySlug(ctx, db.GetModelBySlugParams{BrandID: brand.ID, Slug: "accord"})
	require.NoError(t, err)
	require.Equal(t, "petrol", got.FuelType.String)
}

func TestResolveAuthorConcurrent(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/resolver",
		DbSchema: db.Schema,
	})
	defer cleanup()
	resolver := NewEntityResolver(db.New(setup.DB))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	var wg sync.WaitGroup
	ids := make([]sql.NullInt64, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = resolver.ResolveAuthor(ctx, "driver42", "", sql.NullInt64{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		require.NoError(t, errs[i])
		require.True(t, ids[i].Valid)
		require.Equal(t, ids[0].Int64, ids[i].Int64)
	}

	count := int64(0)
	row := setup.DB.QueryRowContext(ctx, "SELECT count(*) FROM author")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, int64(1), count)
}

func TestResolveAuthorFillsDetails(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/resolver",
		DbSchema: db.Schema,
	})
	defer cleanup()
	qry := db.New(setup.DB)
	resolver := NewEntityResolver(qry)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	id, err := resolver.ResolveAuthor(ctx, "petr", "", sql.NullInt64{})
	require.NoError(t, err)
	require.True(t, id.Valid)

	author, err := qry.GetAuthorByName(ctx, "petr")
	require.NoError(t, err)
	require.False(t, author.CityID.Valid)

	cityID, err := resolver.ResolveCity(ctx, "Новосибирск")
	require.NoError(t, err)
	require.True(t, cityID.Valid)

	id2, err := resolver.ResolveAuthor(ctx, "petr", "Пётр", cityID)
	require.NoError(t, err)
	require.Equal(t, id.Int64, id2.Int64)

	author, err = qry.GetAuthorByName(ctx, "petr")
	require.NoError(t, err)
	require.Equal(t, "Пётр", author.RealName.String)
	require.Equal(t, cityID.Int64, author.CityID.Int64)
}

func TestResolveCityEmptyName(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/harvester/resolver",
		DbSchema: db.Schema,
	})
	defer cleanup()
	resolver := NewEntityResolver(db.New(setup.DB))

	ctx := context.Background()
	id, err := resolver.ResolveCity(ctx, "")
	require.NoError(t, err)
	require.False(t, id.Valid)
}
