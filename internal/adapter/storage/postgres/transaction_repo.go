package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, wallet_id, transaction_type, amount, sender_id, recipient_id, created_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a record within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.TransactionRecord) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.UserID, t.WalletID, t.Type, t.Amount,
		t.SenderID, t.RecipientID, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByUserID returns page (zero-based) of size records, newest first.
func (r *TransactionRepo) ListByUserID(ctx context.Context, userID string, page, size int) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return scanTransactions(rows)
}

// ListByUserIDBetween returns records in [start, end], newest first.
func (r *TransactionRepo) ListByUserIDBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]domain.TransactionRecord, error) {
	defer rows.Close()

	txns := []domain.TransactionRecord{}
	for rows.Next() {
		t := domain.TransactionRecord{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.WalletID, &t.Type, &t.Amount,
			&t.SenderID, &t.RecipientID, &t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
