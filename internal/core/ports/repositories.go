package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, tx pgx.Tx, id string) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside a transaction; GetByUserIDForUpdate
// holds the wallet lock until that transaction ends.
// Lookups return (nil, nil) when no wallet exists.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error)
	Save(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	DeleteByUserID(ctx context.Context, tx pgx.Tx, userID string) error
}

// TransactionRepository is the append-only store of ledger records.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, record *domain.TransactionRecord) error
	// ListByUserID returns one zero-based page, newest first.
	ListByUserID(ctx context.Context, userID string, page, size int) ([]domain.TransactionRecord, error)
	// ListByUserIDBetween returns records with start <= timestamp <= end, newest first.
	ListByUserIDBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.TransactionRecord, error)
}

// CashbackRepository is the append-only store of cashback records.
type CashbackRepository interface {
	Create(ctx context.Context, tx pgx.Tx, record *domain.CashbackRecord) error
	ListByUserID(ctx context.Context, userID string) ([]domain.CashbackRecord, error)
	ListByUserIDPage(ctx context.Context, userID string, page, size int) ([]domain.CashbackRecord, error)
	ListByUserIDBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.CashbackRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
