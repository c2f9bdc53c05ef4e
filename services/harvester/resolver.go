package harvester

import (
	"context"
	"database/sql"
	"errors"

	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/services/harvester/db"
)

// EntityResolver maps scraped stubs onto stored rows, creating them on
// first sight. Lookups go by natural key (slug or name); when a
// concurrent worker wins the insert race the unique constraint fires
// and the resolver falls back to a second lookup.
type EntityResolver struct {
	qry *db.Queries
}

func NewEntityResolver(qry *db.Queries) EntityResolver {
	return EntityResolver{qry: qry}
}

func (r EntityResolver) ResolveBrand(ctx context.Context, stub drom.BrandStub) (db.Brand, error) {
	brand, err := r.qry.GetBrandBySlug(ctx, stub.Slug)
	if err == nil {
		return brand, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Brand{}, err
	}

	brand, err = r.qry.CreateBrand(ctx, db.CreateBrandParams{
		Slug:            stub.Slug,
		DisplayName:     stub.Name,
		SourceUrl:       stub.URL,
		ReviewCountHint: stub.ReviewCount,
	})
	if err == nil {
		return brand, nil
	}
	if brand, lookupErr := r.qry.GetBrandBySlug(ctx, stub.Slug); lookupErr == nil {
		return brand, nil
	}
	return db.Brand{}, err
}

// ResolveModel gets or creates the model row, then merges any technical
// attributes the stub carries into columns that are still null. Existing
// values are never overwritten.
func (r EntityResolver) ResolveModel(ctx context.Context, brandID int64, stub drom.ModelStub) (db.Model, error) {
	model, err := r.getOrCreateModel(ctx, brandID, stub)
	if err != nil {
		return db.Model{}, err
	}
	err = r.FillModelAttributes(ctx, model.ID, stub)
	if err != nil {
		return db.Model{}, err
	}
	return model, nil
}

func (r EntityResolver) getOrCreateModel(ctx context.Context, brandID int64, stub drom.ModelStub) (db.Model, error) {
	model, err := r.qry.GetModelBySlug(ctx, db.GetModelBySlugParams{
		BrandID: brandID,
		Slug:    stub.Slug,
	})
	if err == nil {
		return model, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Model{}, err
	}

	model, err = r.qry.CreateModel(ctx, db.CreateModelParams{
		BrandID:     brandID,
		Slug:        stub.Slug,
		DisplayName: stub.Name,
		SourceUrl:   stub.URL,
	})
	if err == nil {
		return model, nil
	}
	if model, lookupErr := r.qry.GetModelBySlug(ctx, db.GetModelBySlugParams{
		BrandID: brandID,
		Slug:    stub.Slug,
	}); lookupErr == nil {
		return model, nil
	}
	return db.Model{}, err
}

func (r EntityResolver) FillModelAttributes(ctx context.Context, modelID int64, stub drom.ModelStub) error {
	if stub.BodyType == "" && stub.Transmission == "" && stub.DriveType == "" &&
		stub.FuelType == "" && stub.EngineVolumeCC == 0 && stub.EnginePowerHP == 0 {
		return nil
	}
	return r.qry.FillModelAttributes(ctx, db.FillModelAttributesParams{
		BodyType:       nullString(stub.BodyType),
		Transmission:   nullString(stub.Transmission),
		DriveType:      nullString(stub.DriveType),
		EngineVolumeCc: nullInt64(stub.EngineVolumeCC),
		EnginePowerHp:  nullInt64(stub.EnginePowerHP),
		FuelType:       nullString(stub.FuelType),
		ID:             modelID,
	})
}

// ResolveCity returns a null id for an empty name.
func (r EntityResolver) ResolveCity(ctx context.Context, name string) (sql.NullInt64, error) {
	if name == "" {
		return sql.NullInt64{}, nil
	}
	city, err := r.qry.GetCityByName(ctx, name)
	if err == nil {
		return sql.NullInt64{Int64: city.ID, Valid: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return sql.NullInt64{}, err
	}

	city, err = r.qry.CreateCity(ctx, name)
	if err == nil {
		return sql.NullInt64{Int64: city.ID, Valid: true}, nil
	}
	if city, lookupErr := r.qry.GetCityByName(ctx, name); lookupErr == nil {
		return sql.NullInt64{Int64: city.ID, Valid: true}, nil
	}
	return sql.NullInt64{}, err
}

// ResolveAuthor keys authors on display name. Real name and home city
// fill in later if an earlier sighting lacked them.
func (r EntityResolver) ResolveAuthor(ctx context.Context, displayName, realName string, cityID sql.NullInt64) (sql.NullInt64, error) {
	if displayName == "" {
		return sql.NullInt64{}, nil
	}

	author, err := r.getOrCreateAuthor(ctx, displayName, realName, cityID)
	if err != nil {
		return sql.NullInt64{}, err
	}
	if (realName != "" && !author.RealName.Valid) || (cityID.Valid && !author.CityID.Valid) {
		err = r.qry.FillAuthorDetails(ctx, db.FillAuthorDetailsParams{
			RealName: nullString(realName),
			CityID:   cityID,
			ID:       author.ID,
		})
		if err != nil {
			return sql.NullInt64{}, err
		}
	}
	return sql.NullInt64{Int64: author.ID, Valid: true}, nil
}

func (r EntityResolver) getOrCreateAuthor(ctx context.Context, displayName, realName string, cityID sql.NullInt64) (db.Author, error) {
	author, err := r.qry.GetAuthorByName(ctx, displayName)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Author{}, err
	}

	author, err = r.qry.CreateAuthor(ctx, db.CreateAuthorParams{
		DisplayName: displayName,
		RealName:    nullString(realName),
		CityID:      cityID,
	})
	if err == nil {
		return author, nil
	}
	if author, lookupErr := r.qry.GetAuthorByName(ctx, displayName); lookupErr == nil {
		return author, nil
	}
	return db.Author{}, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func nullFloat64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}
