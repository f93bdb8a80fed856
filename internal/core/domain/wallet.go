package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for every amount.
const AmountScale = 4

// ValidAmount reports whether amount is positive and representable with
// AmountScale fractional digits.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(AmountScale))
}

// Wallet holds the balance of a single user. Balance is never negative.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet returns an empty wallet for userID.
func NewWallet(userID string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount decimal.Decimal, at time.Time) {
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = at
}

// CanDebit reports whether the balance covers amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// Debit subtracts amount. Callers check CanDebit first; Debit returns false
// and leaves the wallet untouched when funds are short.
func (w *Wallet) Debit(amount decimal.Decimal, at time.Time) bool {
	if !w.CanDebit(amount) {
		return false
	}
	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = at
	return true
}
