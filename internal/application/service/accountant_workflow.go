package service

import (
	"context"
	"strings"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

const workingSetName = "working set"

// AccountantWorkflow drives submitted expenses to a decision and payment.
// Every successful control, accept, refuse or payment enrolls the expense in
// the accountant's working set.
type AccountantWorkflow struct {
	actor   actor
	working *expenseSet
	deps    WorkflowDeps
}

// NewAccountantWorkflow creates a workflow with an empty working set
func NewAccountantWorkflow(identity entity.Identity, deps WorkflowDeps) *AccountantWorkflow {
	w := &AccountantWorkflow{
		working: newExpenseSet(),
		deps:    deps.withDefaults(),
	}
	w.actor.set(identity)
	return w
}

// Identity returns the acting accountant
func (w *AccountantWorkflow) Identity() entity.Identity {
	return w.actor.get()
}

// Rebind replaces the acting identity
func (w *AccountantWorkflow) Rebind(identity entity.Identity) {
	w.actor.set(identity)
}

// Control checks that an expense under review is ready for a decision. The
// status is left unchanged.
func (w *AccountantWorkflow) Control(ctx context.Context, e *entity.Expense) error {
	if _, err := w.actor.authorize(); err != nil {
		return err
	}

	view := e.Snapshot()
	if view.Status != workflow.StateInProgress {
		return &entity.Error{
			Kind:      entity.KindState,
			ExpenseID: view.ID,
			Field:     "status",
			Message:   "cannot control from " + view.Status.String(),
		}
	}
	if err := e.FieldValidity(); err != nil {
		warnLodgingMismatch(w.deps.Logger, e, err)
		return err
	}
	if strings.TrimSpace(view.ReceiptReference) == "" {
		return entity.NewValidationError(view.ID, "receipt_reference", "a receipt is required")
	}

	w.working.add(e)
	w.deps.Logger.Info("Expense controlled", "expense_id", view.ID)
	return nil
}

// Accept validates an expense under review
func (w *AccountantWorkflow) Accept(ctx context.Context, e *entity.Expense) error {
	return w.decide(ctx, e, "accept", event.TypeExpenseValidated, func(commit entity.CommitFunc) error {
		return e.Accept(ctx, commit)
	})
}

// Refuse closes an expense under review; reason must not be blank
func (w *AccountantWorkflow) Refuse(ctx context.Context, e *entity.Expense, reason string) error {
	return w.decide(ctx, e, "refuse", event.TypeExpenseRefused, func(commit entity.CommitFunc) error {
		return e.Refuse(ctx, reason, commit)
	})
}

// SchedulePayment moves a VALIDATED expense to PAID
func (w *AccountantWorkflow) SchedulePayment(ctx context.Context, e *entity.Expense) error {
	return w.decide(ctx, e, "schedule payment", event.TypeExpensePaid, func(commit entity.CommitFunc) error {
		return e.SchedulePayment(ctx, commit)
	})
}

// ConfirmPayment reports a PAID expense to its owner without changing it
func (w *AccountantWorkflow) ConfirmPayment(ctx context.Context, e *entity.Expense) error {
	identity, err := w.actor.authorize()
	if err != nil {
		return err
	}
	if err := e.ConfirmPayment(ctx); err != nil {
		w.deps.Logger.Info("Payment confirmation rejected", "expense_id", e.ID(), "reason", err.Error())
		return err
	}

	view := e.Snapshot()
	w.deps.Logger.Info("Payment confirmed", "expense_id", view.ID, "amount", view.Amount)
	publish(ctx, w.deps.Dispatcher, expenseEvent(event.TypePaymentConfirmed, view, identity.AccountID()))
	return nil
}

func (w *AccountantWorkflow) decide(ctx context.Context, e *entity.Expense, action string, published event.Type, fire func(entity.CommitFunc) error) error {
	identity, err := w.actor.authorize()
	if err != nil {
		return err
	}
	if err := fire(w.deps.Store.commitFor(identity.AccountID())); err != nil {
		if isBusinessError(err) {
			w.deps.Logger.Info("Expense "+action+" rejected", "expense_id", e.ID(), "reason", err.Error())
		} else {
			w.deps.Logger.Error("Failed to "+action+" expense", "expense_id", e.ID(), "error", err)
		}
		return err
	}

	w.working.add(e)
	view := e.Snapshot()
	w.deps.Logger.Info("Expense "+action+" done", "expense_id", view.ID, "status", view.Status)
	publish(ctx, w.deps.Dispatcher, expenseEvent(published, view, identity.AccountID()))
	return nil
}

// Release drops an expense from the working set
func (w *AccountantWorkflow) Release(id string) error {
	if e, ok := w.working.get(id); ok && e.IsWithdrawn() {
		w.working.prune(e)
		return entity.NewMembershipError(id, workingSetName)
	}
	if !w.working.remove(id) {
		return entity.NewMembershipError(id, workingSetName)
	}
	return nil
}

// Lookup resolves an expense by id from the shared registry
func (w *AccountantWorkflow) Lookup(ctx context.Context, id string) (*entity.Expense, error) {
	return w.deps.Registry.Get(ctx, id)
}

// Pending returns every expense waiting for a decision, in or out of the working set
func (w *AccountantWorkflow) Pending(ctx context.Context) ([]entity.ExpenseView, error) {
	expenses, err := w.deps.Registry.ByStatus(ctx, workflow.StateInProgress)
	if err != nil {
		return nil, err
	}
	views := make([]entity.ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, e.Snapshot())
	}
	return views, nil
}

// List returns snapshots of the working set in enrollment order
func (w *AccountantWorkflow) List() []entity.ExpenseView {
	return w.working.views()
}

// ListByStatus returns snapshots of the working set in the given status
func (w *AccountantWorkflow) ListByStatus(state workflow.State) []entity.ExpenseView {
	return entity.FilterByStatus(w.working.views(), state)
}

// SumByStatus totals the working set amounts in the given status
func (w *AccountantWorkflow) SumByStatus(state workflow.State) float64 {
	return entity.SumByStatus(w.working.views(), state)
}

// Summary aggregates the working set by status
func (w *AccountantWorkflow) Summary() entity.Summary {
	return entity.Summarize(w.working.views())
}
