package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationEvent names what triggered a notification.
type NotificationEvent string

const (
	NotificationRecharge         NotificationEvent = "RECHARGE"
	NotificationTransferReceived NotificationEvent = "TRANSFER_RECEIVED"
)

// Notification is an email-style message about a ledger event.
type Notification struct {
	UserID    string            `json:"user_id"`
	Email     string            `json:"email"`
	Event     NotificationEvent `json:"event"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Amount    decimal.Decimal   `json:"amount"`
	CreatedAt time.Time         `json:"created_at"`
}
