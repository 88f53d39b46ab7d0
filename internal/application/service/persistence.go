package service

import (
	"context"
	"fmt"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// Persistence groups the stores the workflows write through. The zero value
// keeps everything in memory.
type Persistence struct {
	Expenses  port.ExpenseRepository
	History   port.HistoryRepository
	TxManager port.TransactionManager
}

func (p Persistence) enabled() bool {
	return p.Expenses != nil
}

func (p Persistence) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.TxManager == nil {
		return fn(ctx)
	}
	return p.TxManager.WithTransaction(ctx, fn)
}

func (p Persistence) writeHistory(ctx context.Context, h *entity.ExpenseHistory) error {
	if p.History == nil {
		return nil
	}
	if err := p.History.Create(ctx, h); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// commitFor saves the new snapshot and its history entry in one transaction
func (p Persistence) commitFor(actorID string) entity.CommitFunc {
	if !p.enabled() {
		return nil
	}
	return func(ctx context.Context, t entity.Transition) error {
		return p.inTx(ctx, func(txCtx context.Context) error {
			if err := p.Expenses.Save(txCtx, t.After); err != nil {
				return fmt.Errorf("save expense: %w", err)
			}
			return p.writeHistory(txCtx, entity.NewHistoryFromTransition(t, actorID))
		})
	}
}

// withdrawFor deletes the expense row; its history is kept
func (p Persistence) withdrawFor(actorID string) entity.CommitFunc {
	if !p.enabled() {
		return nil
	}
	return func(ctx context.Context, t entity.Transition) error {
		return p.inTx(ctx, func(txCtx context.Context) error {
			if err := p.Expenses.Delete(txCtx, t.ExpenseID); err != nil {
				return fmt.Errorf("delete expense: %w", err)
			}
			h := entity.NewHistoryFromTransition(t, actorID)
			h.ActionType = entity.ActionWithdraw
			return p.writeHistory(txCtx, h)
		})
	}
}

// file stores a new expense with its creation entry
func (p Persistence) file(ctx context.Context, v entity.ExpenseView, actorID string) error {
	if !p.enabled() {
		return nil
	}
	return p.inTx(ctx, func(txCtx context.Context) error {
		if err := p.Expenses.Save(txCtx, v); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return p.writeHistory(txCtx, &entity.ExpenseHistory{
			ExpenseID:  v.ID,
			ActorID:    actorID,
			NewStatus:  v.Status.String(),
			ActionType: entity.ActionFile,
			Timestamp:  v.CreatedAt,
		})
	})
}
