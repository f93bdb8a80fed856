package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cbCols() []string {
	return []string{"id", "user_id", "amount", "created_at"}
}

func TestCashbackRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCashbackRepo(mock)
	cb := domain.NewCashbackRecord("alice", decimal.NewFromInt(5), time.Now().UTC())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cashbacks").
		WithArgs(cb.ID, cb.UserID, cb.Amount, cb.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, &cb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashbackRepo_ListByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCashbackRepo(mock)
	newer := domain.NewCashbackRecord("alice", decimal.NewFromInt(5), time.Now().UTC())
	older := domain.NewCashbackRecord("alice", decimal.RequireFromString("0.5"), newer.Timestamp.Add(-time.Hour))

	mock.ExpectQuery("SELECT .+ FROM cashbacks WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(cbCols()).
			AddRow(newer.ID, newer.UserID, newer.Amount, newer.Timestamp).
			AddRow(older.ID, older.UserID, older.Amount, older.Timestamp))

	got, err := repo.ListByUserID(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashbackRepo_ListByUserIDPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCashbackRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM cashbacks\\s+WHERE user_id = \\$1 ORDER BY created_at DESC LIMIT").
		WithArgs("alice", 3, 3).
		WillReturnRows(pgxmock.NewRows(cbCols()))

	got, err := repo.ListByUserIDPage(context.Background(), "alice", 1, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashbackRepo_ListByUserIDBetween_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCashbackRepo(mock)
	start, end := time.Now().Add(-time.Hour), time.Now()

	mock.ExpectQuery("SELECT .+ FROM cashbacks").
		WithArgs("alice", start, end).
		WillReturnError(errors.New("connection reset"))

	got, err := repo.ListByUserIDBetween(context.Background(), "alice", start, end)
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "list cashbacks in range")
}
