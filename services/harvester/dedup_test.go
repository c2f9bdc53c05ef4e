package harvester

import (
	"database/sql"
	"strings"
	"testing"

	"autoreviews-backend/services/harvester/db"

	"github.com/stretchr/testify/require"
)

func TestIsComplete(t *testing.T) {
	longBody := make([]byte, 150)
	for i := range longBody {
		longBody[i] = 'x'
	}

	complete := db.Review{
		ModelID:  5,
		AuthorID: sql.NullInt64{Int64: 3, Valid: true},
		BodyText: sql.NullString{String: string(longBody), Valid: true},
	}
	require.True(t, IsComplete(complete, 100))

	shortBody := complete
	shortBody.BodyText = sql.NullString{String: "ok", Valid: true}
	require.False(t, IsComplete(shortBody, 100))

	noBody := complete
	noBody.BodyText = sql.NullString{}
	require.False(t, IsComplete(noBody, 100))

	noAuthor := complete
	noAuthor.AuthorID = sql.NullInt64{}
	require.False(t, IsComplete(noAuthor, 100))

	noModel := complete
	noModel.ModelID = 0
	require.False(t, IsComplete(noModel, 100))

	// threshold is exclusive
	exact := complete
	exact.BodyText = sql.NullString{String: string(longBody[:100]), Valid: true}
	require.False(t, IsComplete(exact, 100))
	require.True(t, IsComplete(complete, 0), "zero threshold falls back to the default")
}

func TestIsCompleteCountsCharactersNotBytes(t *testing.T) {
	rec := db.Review{
		ModelID:  5,
		AuthorID: sql.NullInt64{Int64: 3, Valid: true},
	}

	// 60 Cyrillic characters take 120 bytes; the row is still a stub
	rec.BodyText = sql.NullString{String: strings.Repeat("ж", 60), Valid: true}
	require.False(t, IsComplete(rec, 100))

	rec.BodyText = sql.NullString{String: strings.Repeat("ж", 100), Valid: true}
	require.False(t, IsComplete(rec, 100), "threshold is exclusive")

	rec.BodyText = sql.NullString{String: strings.Repeat("ж", 101), Valid: true}
	require.True(t, IsComplete(rec, 100))
}

func TestIsCompleteCustomThreshold(t *testing.T) {
	rec := db.Review{
		ModelID:  1,
		AuthorID: sql.NullInt64{Int64: 1, Valid: true},
		BodyText: sql.NullString{String: "short but fine", Valid: true},
	}
	require.False(t, IsComplete(rec, 100))
	require.True(t, IsComplete(rec, 5))
}
