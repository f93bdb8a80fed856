package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   string
	Username string
}

// Notifier delivers user notifications. Callers treat delivery as best effort.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// RateLimiter counts requests per key in a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate-limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// LedgerMetrics receives ledger events for instrumentation.
type LedgerMetrics interface {
	ObserveOperation(op string, outcome string)
	ObserveAmount(op string, amount decimal.Decimal)
	DependentFailure(step string)
}

// --- Service Ports (Business Logic) ---

// LedgerService moves money between balances.
type LedgerService interface {
	Recharge(ctx context.Context, userID string, amount decimal.Decimal) (*domain.TransactionRecord, error)
	// Transfer returns the sender-side and recipient-side records, in that order.
	Transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) ([]domain.TransactionRecord, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	// GetStatement pages each source independently with the same page/size and merges the results.
	GetStatement(ctx context.Context, userID string, page, size int) ([]domain.HistoryItem, error)
}

// CashbackService applies and reports promotional cashback.
type CashbackService interface {
	ApplyCashback(ctx context.Context, userID string, rechargeAmount decimal.Decimal) (*domain.CashbackRecord, error)
	GetCashbackHistory(ctx context.Context, userID string) ([]domain.CashbackRecord, error)
}

// AnalyticsService serves the range-bounded combined history.
type AnalyticsService interface {
	GetCombinedHistory(ctx context.Context, userID string, start, end time.Time) ([]domain.HistoryItem, error)
}

// SessionHistoryService is the process-lifetime per-user entry log.
type SessionHistoryService interface {
	Add(userID string, entries []domain.SessionEntry) error
	Get(userID string) []domain.SessionEntry
}

// UserService defines registration and authentication.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	Delete(ctx context.Context, userID string) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}
