package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// mailSender is the part of *sendgrid.Client the notifier uses.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

var _ mailSender = (*sendgrid.Client)(nil)

// SendGrid sends booking emails through the SendGrid v3 mail API.
type SendGrid struct {
	client   mailSender
	from     *mail.Email
	currency string
}

// NewSendGrid constructs a SendGrid notifier.
func NewSendGrid(apiKey, fromAddress, fromName, currency string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		from:     mail.NewEmail(fromName, fromAddress),
		currency: currency,
	}
}

// SendBookingConfirmation emails the customer their booking summary and
// returns SendGrid's message id.
func (s *SendGrid) SendBookingConfirmation(ctx context.Context, b domain.BookingDetails) (string, error) {
	msg, err := confirmationMessage(b, s.currency)
	if err != nil {
		return "", err
	}
	return s.send(ctx, b, msg)
}

// SendCheckInReminder emails the customer the day before pick-up.
func (s *SendGrid) SendCheckInReminder(ctx context.Context, b domain.BookingDetails) (string, error) {
	msg, err := reminderMessage(b, s.currency)
	if err != nil {
		return "", err
	}
	return s.send(ctx, b, msg)
}

func (s *SendGrid) send(ctx context.Context, b domain.BookingDetails, msg message) (string, error) {
	if b.CustomerEmail == "" {
		return "", fmt.Errorf("notify.SendGrid: booking %s has no customer email", b.ID)
	}
	to := mail.NewEmail(b.CustomerName, b.CustomerEmail)
	email := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return "", fmt.Errorf("notify.SendGrid: send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("notify.SendGrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return messageID(resp), nil
}

func messageID(resp *rest.Response) string {
	for k, v := range resp.Headers {
		if len(v) > 0 && strings.EqualFold(k, "X-Message-Id") {
			return v[0]
		}
	}
	return ""
}
