package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCashbackRate is the promotional rate applied to recharges.
var DefaultCashbackRate = decimal.RequireFromString("0.05")

// CashbackRecord is created only as a side effect of a successful recharge.
type CashbackRecord struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// ComputeCashback returns rechargeAmount * rate rounded half away from zero
// to AmountScale digits. The result may be zero for tiny recharges.
func ComputeCashback(rechargeAmount, rate decimal.Decimal) decimal.Decimal {
	return rechargeAmount.Mul(rate).Round(AmountScale)
}

// NewCashbackRecord builds a cashback record for userID.
func NewCashbackRecord(userID string, amount decimal.Decimal, at time.Time) CashbackRecord {
	return CashbackRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Timestamp: at,
	}
}
