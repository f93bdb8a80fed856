package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance mutation.
type TransactionType string

const (
	TransactionTypeRecharge TransactionType = "RECHARGE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// SelfRecipient is the recipient marker stored on recharge records.
const SelfRecipient = "self"

// TransactionRecord is an immutable ledger entry.
// A transfer yields two records: the sender side carries RecipientID,
// the recipient side carries SenderID.
type TransactionRecord struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"user_id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	SenderID    *string         `json:"sender_id,omitempty"`
	RecipientID *string         `json:"recipient_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewRechargeRecord builds the record for a recharge of w.
func NewRechargeRecord(w *Wallet, amount decimal.Decimal, at time.Time) TransactionRecord {
	self := SelfRecipient
	return TransactionRecord{
		ID:          uuid.New(),
		UserID:      w.UserID,
		WalletID:    w.ID,
		Type:        TransactionTypeRecharge,
		Amount:      amount,
		RecipientID: &self,
		Timestamp:   at,
	}
}

// NewTransferRecords builds the sender-side and recipient-side records of a transfer.
func NewTransferRecords(sender, recipient *Wallet, amount decimal.Decimal, at time.Time) (TransactionRecord, TransactionRecord) {
	recipientID := recipient.UserID
	senderID := sender.UserID

	out := TransactionRecord{
		ID:          uuid.New(),
		UserID:      sender.UserID,
		WalletID:    sender.ID,
		Type:        TransactionTypeTransfer,
		Amount:      amount,
		RecipientID: &recipientID,
		Timestamp:   at,
	}
	in := TransactionRecord{
		ID:        uuid.New(),
		UserID:    recipient.UserID,
		WalletID:  recipient.ID,
		Type:      TransactionTypeTransfer,
		Amount:    amount,
		SenderID:  &senderID,
		Timestamp: at,
	}
	return out, in
}
