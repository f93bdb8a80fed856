package notify

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the log instead of sending mail.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.log.Info().
		Str("user_id", msg.UserID).
		Str("email", msg.Email).
		Str("event", string(msg.Event)).
		Str("subject", msg.Subject).
		Str("amount", msg.Amount.String()).
		Msg(msg.Body)
	return nil
}
