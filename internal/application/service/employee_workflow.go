package service

import (
	"context"
	"errors"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

const claimSetName = "claim set"

// EmployeeWorkflow is what one employee can do with their own claims. An
// expense is mutable through this workflow while it is DRAFT or IN_PROGRESS.
type EmployeeWorkflow struct {
	actor  actor
	claims *expenseSet
	deps   WorkflowDeps
}

// NewEmployeeWorkflow creates a workflow with an empty claim set
func NewEmployeeWorkflow(identity entity.Identity, deps WorkflowDeps) *EmployeeWorkflow {
	w := &EmployeeWorkflow{
		claims: newExpenseSet(),
		deps:   deps.withDefaults(),
	}
	w.actor.set(identity)
	return w
}

// Identity returns the acting employee
func (w *EmployeeWorkflow) Identity() entity.Identity {
	return w.actor.get()
}

// Rebind replaces the acting identity, e.g. after the account was reloaded
func (w *EmployeeWorkflow) Rebind(identity entity.Identity) {
	w.actor.set(identity)
}

// Load fills the claim set with the employee's stored expenses
func (w *EmployeeWorkflow) Load(ctx context.Context) error {
	identity := w.actor.get()
	if identity == nil {
		return entity.NewAuthorizationError("")
	}
	expenses, err := w.deps.Registry.ByOwner(ctx, identity.AccountID())
	if err != nil {
		w.deps.Logger.Error("Failed to load claim set", "error", err, "owner_id", identity.AccountID())
		return err
	}
	for _, e := range expenses {
		if !e.IsWithdrawn() {
			w.claims.add(e)
		}
	}
	w.deps.Logger.Info("Claim set loaded", "owner_id", identity.AccountID(), "count", len(expenses))
	return nil
}

// NewExpense builds a DRAFT expense owned by the acting employee. When amount
// is zero it is computed with the default price of the variant.
func (w *EmployeeWorkflow) NewExpense(ctx context.Context, p entity.NewExpenseParams) (*entity.Expense, error) {
	identity, err := w.actor.authorize()
	if err != nil {
		return nil, err
	}
	p.OwnerID = identity.AccountID()
	e, err := entity.NewExpense(p)
	if err != nil {
		return nil, err
	}
	if p.Amount == 0 {
		if _, err := e.CalculateAmount(ctx, w.deps.Pricing.PriceFor(e.Kind()), w.deps.Resolver); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// File admits a new DRAFT expense into the claim set. The amount and the
// variant fields must be valid.
func (w *EmployeeWorkflow) File(ctx context.Context, e *entity.Expense) error {
	identity, err := w.actor.authorize()
	if err != nil {
		return err
	}

	view := e.Snapshot()
	if view.OwnerID != identity.AccountID() {
		return entity.NewValidationError(view.ID, "owner_id", "expense belongs to another employee")
	}
	if view.Status != workflow.StateDraft || e.IsWithdrawn() {
		return &entity.Error{
			Kind:      entity.KindState,
			ExpenseID: view.ID,
			Field:     "status",
			Message:   "only a new DRAFT expense can be filed",
		}
	}
	if _, ok := w.claims.get(view.ID); ok {
		return entity.NewValidationError(view.ID, "id", "expense is already filed")
	}
	if err := e.FieldValidity(); err != nil {
		warnLodgingMismatch(w.deps.Logger, e, err)
		return err
	}

	if err := w.deps.Store.file(ctx, view, identity.AccountID()); err != nil {
		w.deps.Logger.Error("Failed to file expense", "error", err, "expense_id", view.ID)
		return err
	}
	w.deps.Registry.Put(e)
	w.claims.add(e)

	w.deps.Logger.Info("Expense filed", "expense_id", view.ID, "owner_id", view.OwnerID, "kind", view.Kind, "amount", view.Amount)
	publish(ctx, w.deps.Dispatcher, expenseEvent(event.TypeExpenseFiled, view, identity.AccountID()))
	return nil
}

// Submit hands a DRAFT expense over for review
func (w *EmployeeWorkflow) Submit(ctx context.Context, e *entity.Expense) error {
	identity, err := w.member(e)
	if err != nil {
		return err
	}
	if err := e.Submit(ctx, w.deps.Store.commitFor(identity.AccountID())); err != nil {
		warnLodgingMismatch(w.deps.Logger, e, err)
		w.logFailure("submit", e, err)
		return err
	}

	view := e.Snapshot()
	w.deps.Logger.Info("Expense submitted", "expense_id", view.ID, "owner_id", view.OwnerID)
	publish(ctx, w.deps.Dispatcher, expenseEvent(event.TypeExpenseSubmitted, view, identity.AccountID()))
	return nil
}

// Update replaces the fields set in patch
func (w *EmployeeWorkflow) Update(ctx context.Context, e *entity.Expense, patch entity.Patch) error {
	identity, err := w.member(e)
	if err != nil {
		return err
	}
	if err := e.Update(ctx, patch, w.deps.Store.commitFor(identity.AccountID())); err != nil {
		w.logFailure("update", e, err)
		return err
	}
	w.deps.Logger.Info("Expense updated", "expense_id", e.ID())
	return nil
}

// Recalculate recomputes the amount; a non-positive price selects the default
func (w *EmployeeWorkflow) Recalculate(ctx context.Context, e *entity.Expense, price float64) (float64, error) {
	identity, err := w.member(e)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		price = w.deps.Pricing.PriceFor(e.Kind())
	}
	amount, err := e.Recalculate(ctx, price, w.deps.Resolver, w.deps.Store.commitFor(identity.AccountID()))
	if err != nil {
		w.logFailure("recalculate", e, err)
		return 0, err
	}
	w.deps.Logger.Info("Expense amount recalculated", "expense_id", e.ID(), "amount", amount)
	return amount, nil
}

// Withdraw removes a mutable expense from the claim set for good
func (w *EmployeeWorkflow) Withdraw(ctx context.Context, e *entity.Expense) error {
	identity, err := w.member(e)
	if err != nil {
		return err
	}
	if err := e.Withdraw(ctx, w.deps.Store.withdrawFor(identity.AccountID())); err != nil {
		w.logFailure("withdraw", e, err)
		return err
	}

	view := e.Snapshot()
	w.claims.remove(view.ID)
	w.deps.Registry.Remove(view.ID)

	w.deps.Logger.Info("Expense withdrawn", "expense_id", view.ID, "owner_id", view.OwnerID)
	publish(ctx, w.deps.Dispatcher, expenseEvent(event.TypeExpenseWithdrawn, view, identity.AccountID()))
	return nil
}

// Lookup returns the claim with the given id
func (w *EmployeeWorkflow) Lookup(id string) (*entity.Expense, error) {
	e, ok := w.claims.get(id)
	if !ok {
		return nil, entity.NewMembershipError(id, claimSetName)
	}
	return e, nil
}

// List returns snapshots of every claim in filing order
func (w *EmployeeWorkflow) List() []entity.ExpenseView {
	return w.claims.views()
}

// ListByStatus returns snapshots of the claims in the given status
func (w *EmployeeWorkflow) ListByStatus(state workflow.State) []entity.ExpenseView {
	return entity.FilterByStatus(w.claims.views(), state)
}

// SumByStatus totals the amounts of the claims in the given status
func (w *EmployeeWorkflow) SumByStatus(state workflow.State) float64 {
	return entity.SumByStatus(w.claims.views(), state)
}

// Summary aggregates the claim set by status
func (w *EmployeeWorkflow) Summary() entity.Summary {
	return entity.Summarize(w.claims.views())
}

func (w *EmployeeWorkflow) member(e *entity.Expense) (entity.Identity, error) {
	identity, err := w.actor.authorize()
	if err != nil {
		return nil, err
	}
	if !w.claims.contains(e) {
		return nil, entity.NewMembershipError(e.ID(), claimSetName)
	}
	return identity, nil
}

func (w *EmployeeWorkflow) logFailure(action string, e *entity.Expense, err error) {
	if isBusinessError(err) {
		w.deps.Logger.Info("Expense "+action+" rejected", "expense_id", e.ID(), "reason", err.Error())
		return
	}
	w.deps.Logger.Error("Failed to "+action+" expense", "expense_id", e.ID(), "error", err)
}

func isBusinessError(err error) bool {
	for _, kind := range []error{entity.ErrAuthorization, entity.ErrState, entity.ErrValidation, entity.ErrMembership} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
