package harvester

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"
	"unicode/utf8"

	"autoreviews-backend/lib/scrapers/drom"
	"autoreviews-backend/services/harvester/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UpsertOutcome reports what a single review write did to the store.
type UpsertOutcome int

const (
	OutcomeSaved UpsertOutcome = iota
	OutcomeSkipped
	OutcomeRewritten
)

// ContentHash is a stable digest of the textual payload of a review,
// used to detect content drift between harvests.
func ContentHash(detail drom.ReviewDetail) string {
	h := sha256.New()
	h.Write([]byte(detail.Body))
	h.Write([]byte{0})
	h.Write([]byte(detail.Pros))
	h.Write([]byte{0})
	h.Write([]byte(detail.Cons))
	return hex.EncodeToString(h.Sum(nil))
}

// contentLength measures the textual payload in characters, the same
// unit the completeness threshold is compared against.
func contentLength(detail drom.ReviewDetail) int64 {
	return int64(utf8.RuneCountInString(detail.Body) +
		utf8.RuneCountInString(detail.Pros) +
		utf8.RuneCountInString(detail.Cons))
}

// RecordUpserter writes one parsed review and all of its child rows in
// a single transaction.
type RecordUpserter struct {
	db        *sql.DB
	qry       *db.Queries
	threshold int
}

func NewRecordUpserter(database *sql.DB, threshold int) RecordUpserter {
	return RecordUpserter{
		db:        database,
		qry:       db.New(database),
		threshold: threshold,
	}
}

// Classify decides what to do with a listing entry before its detail
// page is fetched.
func (u RecordUpserter) Classify(ctx context.Context, externalID string) (ReviewState, db.Review, error) {
	return ClassifyReview(ctx, u.qry, externalID, u.threshold)
}

// Upsert stores a parsed review under the given model. An existing
// complete row short-circuits to a skip; an incomplete one is deleted
// together with its child rows and written from scratch. The state of
// the stored row is re-checked inside the transaction so two workers
// racing on the same external id cannot double-write.
func (u RecordUpserter) Upsert(ctx context.Context, modelID int64, detail drom.ReviewDetail) (UpsertOutcome, error) {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("external_id", detail.ExternalID))

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}
	defer tx.Rollback()
	txqry := u.qry.WithTx(tx)

	outcome := OutcomeSaved
	state, existing, err := ClassifyReview(ctx, txqry, detail.ExternalID, u.threshold)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}
	switch state {
	case ReviewCompleteExisting:
		return OutcomeSkipped, nil
	case ReviewIncompleteExisting:
		outcome = OutcomeRewritten
		err = u.deleteReviewTree(ctx, txqry, existing.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return OutcomeSkipped, err
		}
	}

	resolver := NewEntityResolver(txqry)
	err = resolver.FillModelAttributes(ctx, modelID, detail.Model)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}
	cityID, err := resolver.ResolveCity(ctx, detail.AuthorCity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}
	authorID, err := resolver.ResolveAuthor(ctx, detail.AuthorName, "", cityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}

	parseStatus := db.ParseStatusSuccess
	var parseErrorDetail sql.NullString
	if detail.Body == "" {
		parseStatus = db.ParseStatusPartial
		parseErrorDetail = nullString("empty review body")
	} else if detail.AuthorName == "" {
		parseStatus = db.ParseStatusPartial
		parseErrorDetail = nullString("missing author")
	}

	reviewID, err := txqry.CreateReview(ctx, db.CreateReviewParams{
		ExternalID:       detail.ExternalID,
		ModelID:          modelID,
		AuthorID:         authorID,
		CityID:           cityID,
		Url:              detail.URL,
		Title:            nullString(detail.Title),
		BodyText:         nullString(detail.Body),
		ProsText:         nullString(detail.Pros),
		ConsText:         nullString(detail.Cons),
		BreakagesText:    nullString(detail.Breakages),
		OverallRating:    nullFloat64(detail.OverallRating),
		OwnerRating:      nullFloat64(detail.OwnerRating),
		AcquisitionYear:  nullInt64(detail.AcquisitionYear),
		MileageKm:        nullInt64(detail.MileageKM),
		ExteriorColor:    nullString(detail.ExteriorColor),
		InteriorColor:    nullString(detail.InteriorColor),
		ViewCount:        detail.ViewCount,
		LikeCount:        detail.LikeCount,
		DislikeCount:     detail.DislikeCount,
		PublishedAt:      nullTime(detail.PublishedAt),
		ContentLength:    contentLength(detail),
		ContentHash:      ContentHash(detail),
		ParseStatus:      parseStatus,
		ParseErrorDetail: parseErrorDetail,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}

	err = u.createChildren(ctx, txqry, resolver, reviewID, detail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OutcomeSkipped, err
	}
	return outcome, nil
}

// RecordParseFailure stores a stub row for a detail page whose markup
// yielded no usable review, so the failure is visible in the store. A
// row that already exists is left alone. The stub carries no body or
// author, so a later pass classifies it incomplete and rewrites it.
func (u RecordUpserter) RecordParseFailure(ctx context.Context, modelID int64, ref drom.ReviewRef, parseErr error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := u.qry.WithTx(tx)

	state, _, err := ClassifyReview(ctx, txqry, ref.ExternalID, u.threshold)
	if err != nil {
		return err
	}
	if state != ReviewAbsent {
		return nil
	}

	_, err = txqry.CreateReview(ctx, db.CreateReviewParams{
		ExternalID:       ref.ExternalID,
		ModelID:          modelID,
		Url:              ref.URL,
		Title:            nullString(ref.Title),
		ContentHash:      "",
		ParseStatus:      db.ParseStatusError,
		ParseErrorDetail: nullString(parseErr.Error()),
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// deleteReviewTree removes a review and its child rows. The children go
// explicitly so the rewrite does not depend on the foreign_keys pragma
// being on for the connection.
func (u RecordUpserter) deleteReviewTree(ctx context.Context, txqry *db.Queries, reviewID int64) error {
	err := txqry.DeleteDetailRatingForReview(ctx, reviewID)
	if err != nil {
		return err
	}
	err = txqry.DeleteFuelConsumptionForReview(ctx, reviewID)
	if err != nil {
		return err
	}
	err = txqry.DeleteCommentsForReview(ctx, reviewID)
	if err != nil {
		return err
	}
	err = txqry.DeleteCharacteristicsForReview(ctx, reviewID)
	if err != nil {
		return err
	}
	return txqry.DeleteReview(ctx, reviewID)
}

func (u RecordUpserter) createChildren(ctx context.Context, txqry *db.Queries, resolver EntityResolver, reviewID int64, detail drom.ReviewDetail) error {
	if detail.RatingExterior != 0 || detail.RatingInterior != 0 ||
		detail.RatingEngine != 0 || detail.RatingHandling != 0 {
		err := txqry.CreateDetailRating(ctx, db.CreateDetailRatingParams{
			ReviewID: reviewID,
			Exterior: nullInt64(detail.RatingExterior),
			Interior: nullInt64(detail.RatingInterior),
			Engine:   nullInt64(detail.RatingEngine),
			Handling: nullInt64(detail.RatingHandling),
		})
		if err != nil {
			return err
		}
	}

	if detail.FuelCityL100KM != 0 || detail.FuelHighwayL100KM != 0 || detail.FuelMixedL100KM != 0 {
		err := txqry.CreateFuelConsumption(ctx, db.CreateFuelConsumptionParams{
			ReviewID:         reviewID,
			CityLPer100km:    nullFloat64(detail.FuelCityL100KM),
			HighwayLPer100km: nullFloat64(detail.FuelHighwayL100KM),
			MixedLPer100km:   nullFloat64(detail.FuelMixedL100KM),
		})
		if err != nil {
			return err
		}
	}

	for _, comment := range detail.Comments {
		authorID, err := resolver.ResolveAuthor(ctx, comment.AuthorName, "", sql.NullInt64{})
		if err != nil {
			return err
		}
		err = txqry.CreateComment(ctx, db.CreateCommentParams{
			ReviewID:     reviewID,
			AuthorID:     authorID,
			BodyText:     nullString(comment.Body),
			PublishedAt:  nullTime(comment.PublishedAt),
			LikeCount:    comment.LikeCount,
			DislikeCount: comment.DislikeCount,
		})
		if err != nil {
			return err
		}
	}

	for _, char := range detail.Characteristics {
		err := txqry.CreateCharacteristic(ctx, db.CreateCharacteristicParams{
			ReviewID: reviewID,
			Name:     char.Name,
			Value:    nullString(char.Value),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
