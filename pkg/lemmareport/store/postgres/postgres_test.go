package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

var columns = []string{"lemma", "pos", "token_text", "timestamp"}

func TestQueryBoundedWindow(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	src, err := New(mockPool, "")
	require.NoError(t, err)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	from := now.Add(-24 * time.Hour)
	ts := now.Add(-time.Hour)

	rows := pgxmock.NewRows(columns).
		AddRow("gå", "VERB", "går", &ts).
		AddRow("er", "AUX", "er", &ts)

	mockPool.ExpectQuery(`SELECT .* FROM tokens WHERE UPPER\(pos\) = ANY\(\$1\) AND "timestamp" >= \$2 AND "timestamp" <= \$3 ORDER BY id`).
		WithArgs([]string{"VERB", "AUX"}, from, now).
		WillReturnRows(rows)

	got, err := src.Query(context.Background(), window.Range{From: from, To: now}, []string{"verb", "aux"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gå", got[0].Lemma)
	assert.Equal(t, token.VERB, got[0].POS)
	assert.Equal(t, "går", got[0].Surface)
	assert.True(t, got[0].Timestamp.Equal(ts))

	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestQueryUnboundedAllowsNullTimestamp(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	src, err := New(mockPool, "danish_tokens")
	require.NoError(t, err)

	var missing *time.Time
	mockPool.ExpectQuery(`SELECT .* FROM danish_tokens ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(columns).AddRow("hund", "NOUN", "hunden", missing))

	got, err := src.Query(context.Background(), window.Range{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Timestamp.IsZero())
	assert.ErrorIs(t, got[0].Validate(), internalerr.ErrMissingField)

	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestQueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	src, err := New(mockPool, "")
	require.NoError(t, err)

	boom := errors.New("connection reset by peer")
	mockPool.ExpectQuery(`SELECT .* FROM tokens`).WillReturnError(boom)

	_, err = src.Query(context.Background(), window.Range{}, []string{token.NOUN})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestNewRejectsBadTable(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	_, err = New(mockPool, "tokens;--")
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
