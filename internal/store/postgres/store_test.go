package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"jobtrawler/internal/listing"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s, err := NewWithPool(mock)
	require.NoError(t, err)
	return s, mock
}

func TestStore_Exists(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	query := regexp.QuoteMeta(`SELECT 1 FROM listings WHERE title = $1 LIMIT 1`)

	mock.ExpectQuery(query).
		WithArgs("Go Developer").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := s.Exists(context.Background(), "Go Developer")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(query).
		WithArgs("Unknown").
		WillReturnError(pgx.ErrNoRows)

	exists, err = s.Exists(context.Background(), "Unknown")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	rec := listing.Record{
		Title:       "Go Developer",
		Location:    "Paris",
		Salary:      "",
		Benefits:    "Mutuelle",
		Description: "Ship services.",
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listings`)).
		WithArgs(pgxmock.AnyArg(), rec.Title, rec.Location, rec.Salary,
			rec.Benefits, rec.Description, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := s.Insert(context.Background(), rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListAll(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, location, salary, benefits, description, reviewed, added_at`)).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "title", "location", "salary", "benefits", "description", "reviewed", "added_at"}).
			AddRow("id-1", "First", "Lille", "40k", "RTT", "Desc one", false, now).
			AddRow("id-2", "Second", "Lyon", "", "N/A", "Desc two", true, now))

	stored, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "First", stored[0].Record.Title)
	require.Equal(t, "", stored[1].Record.Salary)
	require.True(t, stored[1].Reviewed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetReviewed(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	query := regexp.QuoteMeta(`UPDATE listings SET reviewed = $1 WHERE id = $2`)

	mock.ExpectExec(query).
		WithArgs(true, "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.SetReviewed(context.Background(), "id-1", true))

	mock.ExpectExec(query).
		WithArgs(true, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.Error(t, s.SetReviewed(context.Background(), "missing", true))

	require.NoError(t, mock.ExpectationsWereMet())
}
