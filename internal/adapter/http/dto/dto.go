package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_username"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RechargeRequest accepts the amount as a JSON number or string.
// Positivity is enforced by the ledger.
type RechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest addresses the recipient by username.
type TransferRequest struct {
	RecipientUsername string          `json:"recipient_username" binding:"required,safe_username"`
	Amount            decimal.Decimal `json:"amount"`
}

// TransferResponse carries the sender-side and recipient-side records.
type TransferResponse struct {
	Transactions []domain.TransactionRecord `json:"transactions"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// StatementQuery is the query string of the paginated statement.
type StatementQuery struct {
	Page int `form:"page" binding:"min=0"`
	Size int `form:"size,default=20" binding:"min=1,max=100"`
}

// StatementResponse wraps one statement page.
type StatementResponse struct {
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Items []domain.HistoryItem `json:"items"`
}

// HistoryRangeRequest selects the inclusive [start, end] range, RFC 3339.
type HistoryRangeRequest struct {
	Start *time.Time `json:"start" binding:"required"`
	End   *time.Time `json:"end" binding:"required"`
}

// HistoryResponse wraps a combined history.
type HistoryResponse struct {
	Items []domain.HistoryItem `json:"items"`
}

// SessionHistoryRequest appends entries. A missing or null list is rejected.
type SessionHistoryRequest struct {
	Entries []domain.SessionEntry `json:"entries"`
}

// SessionHistoryResponse returns the caller's session entries.
type SessionHistoryResponse struct {
	Entries []domain.SessionEntry `json:"entries"`
}

// CashbackHistoryResponse lists cashback records newest first.
type CashbackHistoryResponse struct {
	Items []domain.CashbackRecord `json:"items"`
}
