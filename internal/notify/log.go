package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// Log writes emails to the logger instead of sending them. It is used when no
// SendGrid key is configured.
type Log struct {
	log      *slog.Logger
	currency string
}

// NewLog constructs a Log notifier.
func NewLog(log *slog.Logger, currency string) *Log {
	return &Log{log: log, currency: currency}
}

// SendBookingConfirmation logs the confirmation email and returns a local message id.
func (l *Log) SendBookingConfirmation(ctx context.Context, b domain.BookingDetails) (string, error) {
	msg, err := confirmationMessage(b, l.currency)
	if err != nil {
		return "", err
	}
	return l.write(ctx, b, msg), nil
}

// SendCheckInReminder logs the reminder email.
func (l *Log) SendCheckInReminder(ctx context.Context, b domain.BookingDetails) (string, error) {
	msg, err := reminderMessage(b, l.currency)
	if err != nil {
		return "", err
	}
	return l.write(ctx, b, msg), nil
}

func (l *Log) write(ctx context.Context, b domain.BookingDetails, msg message) string {
	id := "log-" + uuid.NewString()
	l.log.InfoContext(ctx, "email (not sent)",
		"message_id", id,
		"to", b.CustomerEmail,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return id
}
