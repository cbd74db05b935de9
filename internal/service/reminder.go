package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
)

// ReminderService emails customers whose rental starts on a given day.
type ReminderService struct {
	bookings repo.BookingRepo
	notifier Notifier
	clock    Clock
	log      *slog.Logger
	metrics  Recorder
}

// NewReminderService constructs a ReminderService. A nil recorder disables metrics.
func NewReminderService(bookings repo.BookingRepo, notifier Notifier, clock Clock, log *slog.Logger, metrics Recorder) *ReminderService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ReminderService{bookings: bookings, notifier: notifier, clock: clock, log: log, metrics: metrics}
}

// ReminderResult counts the outcome of one reminder run.
type ReminderResult struct {
	Sent   int
	Failed int
}

// SendCheckInReminders notifies every booking that starts on day. A failed
// email is logged and counted; it does not stop the run.
func (s *ReminderService) SendCheckInReminders(ctx context.Context, day time.Time) (ReminderResult, error) {
	day = domain.Day(day)
	bookings, err := s.bookings.ListStartingOn(ctx, day)
	if err != nil {
		return ReminderResult{}, fmt.Errorf("service.ReminderService.SendCheckInReminders: %w", err)
	}

	var res ReminderResult
	for _, b := range bookings {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("service.ReminderService.SendCheckInReminders: %w", err)
		}
		id, err := s.notifier.SendCheckInReminder(ctx, b)
		if err != nil {
			res.Failed++
			s.metrics.NotificationFailed(notifyCheckInReminder)
			s.log.ErrorContext(ctx, "check-in reminder failed", "booking_id", b.ID, "error", err)
			continue
		}
		res.Sent++
		s.log.InfoContext(ctx, "check-in reminder sent", "booking_id", b.ID, "message_id", id)
	}

	s.log.InfoContext(ctx, "check-in reminders done",
		"day", day.Format(domain.DateLayout), "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

// RunForTomorrow sends reminders for stays starting the day after today.
// It is the entry point used by the scheduler.
func (s *ReminderService) RunForTomorrow(ctx context.Context) error {
	_, err := s.SendCheckInReminders(ctx, s.clock.Today().AddDate(0, 0, 1))
	return err
}
