package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
)

// ReminderService nudges the accountant about expenses left under review
type ReminderService struct {
	expenses     port.ExpenseRepository
	dispatcher   dispatcher.Dispatcher
	pendingAfter time.Duration
	logger       Logger
	now          func() time.Time
}

// NewReminderService creates a service reminding about expenses pending longer than pendingAfter
func NewReminderService(expenses port.ExpenseRepository, d dispatcher.Dispatcher, pendingAfter time.Duration, logger Logger) *ReminderService {
	return &ReminderService{
		expenses:     expenses,
		dispatcher:   d,
		pendingAfter: pendingAfter,
		logger:       orNop(logger),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SendReminders publishes one reminder per stale IN_PROGRESS expense and
// returns how many were sent
func (s *ReminderService) SendReminders(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingAfter)
	views, err := s.expenses.ListPendingSince(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list pending expenses", "error", err, "cutoff", cutoff)
		return 0, fmt.Errorf("list pending expenses: %w", err)
	}

	for _, v := range views {
		evt := expenseEvent(event.TypePendingReminder, v, "").
			WithPayload(event.KeyPendingSince, v.StatusChangedAt)
		publish(ctx, s.dispatcher, evt)
	}

	if len(views) > 0 {
		s.logger.Info("Pending expense reminders sent", "count", len(views), "cutoff", cutoff)
	}
	return len(views), nil
}
