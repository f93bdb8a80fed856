package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const cashbackColumns = `id, user_id, amount, created_at`

// CashbackRepo implements ports.CashbackRepository.
type CashbackRepo struct {
	pool Pool
}

// NewCashbackRepo creates a new CashbackRepo.
func NewCashbackRepo(pool Pool) *CashbackRepo {
	return &CashbackRepo{pool: pool}
}

// Create inserts a cashback record within a database transaction.
func (r *CashbackRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.CashbackRecord) error {
	query := `INSERT INTO cashbacks (` + cashbackColumns + `) VALUES ($1, $2, $3, $4)`

	if _, err := tx.Exec(ctx, query, c.ID, c.UserID, c.Amount, c.Timestamp); err != nil {
		return fmt.Errorf("insert cashback: %w", err)
	}
	return nil
}

// ListByUserID returns every cashback of userID, newest first.
func (r *CashbackRepo) ListByUserID(ctx context.Context, userID string) ([]domain.CashbackRecord, error) {
	query := `SELECT ` + cashbackColumns + ` FROM cashbacks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cashbacks: %w", err)
	}
	return scanCashbacks(rows)
}

// ListByUserIDPage returns page (zero-based) of size cashbacks, newest first.
func (r *CashbackRepo) ListByUserIDPage(ctx context.Context, userID string, page, size int) ([]domain.CashbackRecord, error) {
	query := `SELECT ` + cashbackColumns + ` FROM cashbacks
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list cashbacks page: %w", err)
	}
	return scanCashbacks(rows)
}

// ListByUserIDBetween returns cashbacks in [start, end], newest first.
func (r *CashbackRepo) ListByUserIDBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.CashbackRecord, error) {
	query := `SELECT ` + cashbackColumns + ` FROM cashbacks
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list cashbacks in range: %w", err)
	}
	return scanCashbacks(rows)
}

func scanCashbacks(rows pgx.Rows) ([]domain.CashbackRecord, error) {
	defer rows.Close()

	out := []domain.CashbackRecord{}
	for rows.Next() {
		c := domain.CashbackRecord{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Amount, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan cashback row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cashback rows: %w", err)
	}
	return out, nil
}
