package service

import (
	"context"
	"errors"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
)

// publish fires evt without waiting; a nil dispatcher drops it
func publish(ctx context.Context, d dispatcher.Dispatcher, evt *event.Event) {
	if d == nil {
		return
	}
	d.DispatchAsync(ctx, evt)
}

func expenseEvent(t event.Type, v entity.ExpenseView, actorID string) *event.Event {
	payload := map[string]interface{}{
		event.KeyOwnerID:  v.OwnerID,
		event.KeyAmount:   v.Amount,
		event.KeyKind:     string(v.Kind),
		event.KeyNewState: v.Status.String(),
	}
	if v.RefusalReason != "" {
		payload[event.KeyReason] = v.RefusalReason
	}
	return event.NewEvent(t, v.ID, actorID, payload)
}

// warnLodgingMismatch logs a declared night count that disagrees with the stay dates
func warnLodgingMismatch(logger Logger, e *entity.Expense, err error) {
	var domErr *entity.Error
	if !errors.As(err, &domErr) || domErr.Field != "night_count" || e.Kind() != entity.KindLodging {
		return
	}
	logger.Warn("Lodging night count does not match stay dates",
		"expense_id", e.ID(),
		"detail", domErr.Message,
	)
}
