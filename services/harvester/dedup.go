package harvester

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"autoreviews-backend/services/harvester/db"
)

// DefaultCompletenessThreshold is the minimum body length (in
// characters, not bytes) a stored review needs before it is considered
// not worth re-fetching.
const DefaultCompletenessThreshold = 100

// ReviewState is the fate of a listing entry decided before its detail
// page is fetched.
type ReviewState int

const (
	// ReviewAbsent means no row with this external id exists yet.
	ReviewAbsent ReviewState = iota
	// ReviewCompleteExisting means a usable row exists; the detail page
	// is not fetched again.
	ReviewCompleteExisting
	// ReviewIncompleteExisting means a row exists but is missing content
	// or relations; it is deleted and re-harvested.
	ReviewIncompleteExisting
)

func (s ReviewState) String() string {
	switch s {
	case ReviewCompleteExisting:
		return "complete"
	case ReviewIncompleteExisting:
		return "incomplete"
	default:
		return "absent"
	}
}

// IsComplete reports whether a stored review carries enough content to
// skip re-harvesting. A review is complete when its body exceeds the
// threshold and both the model and author relations are set.
func IsComplete(rec db.Review, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultCompletenessThreshold
	}
	// the corpus is Cyrillic, so counting bytes would double-count
	// nearly every character
	if !rec.BodyText.Valid || utf8.RuneCountInString(rec.BodyText.String) <= threshold {
		return false
	}
	if rec.ModelID == 0 {
		return false
	}
	if !rec.AuthorID.Valid {
		return false
	}
	return true
}

// ClassifyReview looks up the stored row for an external id and decides
// what the walker should do with the listing entry.
func ClassifyReview(ctx context.Context, qry *db.Queries, externalID string, threshold int) (ReviewState, db.Review, error) {
	rec, err := qry.GetReviewByExternalID(ctx, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewAbsent, db.Review{}, nil
	}
	if err != nil {
		return ReviewAbsent, db.Review{}, err
	}
	if IsComplete(rec, threshold) {
		return ReviewCompleteExisting, rec, nil
	}
	return ReviewIncompleteExisting, rec, nil
}
