package entity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// Transition describes a change about to be applied to an expense.
// Trigger is empty for field edits.
type Transition struct {
	ExpenseID string
	Trigger   workflow.Trigger
	From      workflow.State
	To        workflow.State
	Before    ExpenseView
	After     ExpenseView
}

// CommitFunc runs while the expense is locked, after every guard passed and
// before the change is applied. Returning an error aborts the change.
type CommitFunc func(ctx context.Context, t Transition) error

// ExpenseView is an immutable snapshot of an expense
type ExpenseView struct {
	ID               string         `json:"id"`
	OwnerID          string         `json:"owner_id"`
	Kind             Kind           `json:"kind"`
	Date             time.Time      `json:"date"`
	Amount           float64        `json:"amount"`
	ReceiptReference string         `json:"receipt_reference,omitempty"`
	RefusalReason    string         `json:"refusal_reason,omitempty"`
	Status           workflow.State `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	StatusChangedAt  time.Time      `json:"status_changed_at"`
	Details          Details        `json:"details"`
	Valid            bool           `json:"valid"`
}

// NewExpenseParams holds the fields an employee supplies for a new claim
type NewExpenseParams struct {
	OwnerID          string
	Date             time.Time
	Amount           float64
	ReceiptReference string
	Details          Details
}

type expenseData struct {
	id               string
	ownerID          string
	date             time.Time
	amount           float64
	receiptReference string
	refusalReason    string
	status           workflow.State
	createdAt        time.Time
	statusChangedAt  time.Time
	details          Details
	withdrawn        bool
}

func (d expenseData) clone() expenseData {
	d.details = d.details.clone()
	return d
}

// Expense is a single claimed cost. Status changes go through the lifecycle
// state machine and are serialised on the expense's own lock.
type Expense struct {
	mu   sync.Mutex
	data expenseData
}

// NewExpense creates a DRAFT expense with a fresh identifier
func NewExpense(p NewExpenseParams) (*Expense, error) {
	if p.Details == nil {
		return nil, NewValidationError("", "details", "expense variant is required")
	}
	now := time.Now().UTC()
	return &Expense{data: expenseData{
		id:               uuid.NewString(),
		ownerID:          p.OwnerID,
		date:             p.Date,
		amount:           p.Amount,
		receiptReference: p.ReceiptReference,
		status:           workflow.StateDraft,
		createdAt:        now,
		statusChangedAt:  now,
		details:          p.Details.clone(),
	}}, nil
}

// RestoreExpense rebuilds an expense from a stored snapshot
func RestoreExpense(v ExpenseView) (*Expense, error) {
	if v.ID == "" {
		return nil, NewValidationError("", "id", "stored expense has no id")
	}
	if v.Details == nil {
		return nil, NewValidationError(v.ID, "details", "stored expense has no variant")
	}
	if !v.Status.IsValid() {
		err := NewValidationError(v.ID, "status", "unknown status "+v.Status.String())
		err.Err = workflow.ErrInvalidState
		return nil, err
	}
	return &Expense{data: expenseData{
		id:               v.ID,
		ownerID:          v.OwnerID,
		date:             v.Date,
		amount:           v.Amount,
		receiptReference: v.ReceiptReference,
		refusalReason:    v.RefusalReason,
		status:           v.Status,
		createdAt:        v.CreatedAt,
		statusChangedAt:  v.StatusChangedAt,
		details:          v.Details.clone(),
	}}, nil
}

func (e *Expense) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.id
}

func (e *Expense) OwnerID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.ownerID
}

func (e *Expense) Status() workflow.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.status
}

func (e *Expense) Amount() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.amount
}

func (e *Expense) ReceiptReference() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.receiptReference
}

func (e *Expense) RefusalReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.refusalReason
}

func (e *Expense) Kind() Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.details.Kind()
}

// Details returns a copy of the variant fields
func (e *Expense) Details() Details {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.details.clone()
}

// Snapshot returns a consistent copy of every field
func (e *Expense) Snapshot() ExpenseView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.view()
}

func (d expenseData) view() ExpenseView {
	return ExpenseView{
		ID:               d.id,
		OwnerID:          d.ownerID,
		Kind:             d.details.Kind(),
		Date:             d.date,
		Amount:           d.amount,
		ReceiptReference: d.receiptReference,
		RefusalReason:    d.refusalReason,
		Status:           d.status,
		CreatedAt:        d.createdAt,
		StatusChangedAt:  d.statusChangedAt,
		Details:          d.details.clone(),
		Valid:            d.isValid(),
	}
}

// CanBeModified reports whether the owner may still edit or withdraw the expense
func (e *Expense) CanBeModified() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.data.withdrawn && e.data.status.IsMutable()
}

// IsWithdrawn reports whether the owner removed the expense
func (e *Expense) IsWithdrawn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.withdrawn
}

// LocalValidity checks the variant fields only
func (e *Expense) LocalValidity() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.localValidity()
}

// FieldValidity checks the amount and the variant fields, independent of status
func (e *Expense) FieldValidity() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.fieldValidity()
}

// FieldValid is FieldValidity as a predicate
func (e *Expense) FieldValid() bool {
	return e.FieldValidity() == nil
}

// IsValid holds for a well-formed expense an accountant has already accepted
func (e *Expense) IsValid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.isValid()
}

func (d expenseData) localValidity() error {
	if err := d.details.LocalValidity(); err != nil {
		var domErr *Error
		if errors.As(err, &domErr) && domErr.ExpenseID == "" {
			scoped := *domErr
			scoped.ExpenseID = d.id
			return &scoped
		}
		return err
	}
	return nil
}

func (d expenseData) fieldValidity() error {
	if d.amount <= 0 {
		return NewValidationError(d.id, "amount", "amount must be positive")
	}
	return d.localValidity()
}

func (d expenseData) isValid() bool {
	return d.status.IsSettled() && d.fieldValidity() == nil
}

// CalculateAmount recomputes the amount from the variant fields and overwrites
// it. Travel expenses with no distance resolve it first and keep the result.
// Status is neither checked nor changed.
func (e *Expense) CalculateAmount(ctx context.Context, price float64, resolver DistanceResolver) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.data.priced(ctx, price, resolver)
	if err != nil {
		return 0, err
	}
	e.data = next
	return next.amount, nil
}

// Recalculate is CalculateAmount for an expense the owner may still modify.
// The new amount goes through commit before it is applied.
func (e *Expense) Recalculate(ctx context.Context, price float64, resolver DistanceResolver, commit CommitFunc) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.data.checkModifiable("recalculate"); err != nil {
		return 0, err
	}
	next, err := e.data.priced(ctx, price, resolver)
	if err != nil {
		return 0, err
	}
	if err := e.data.commit(ctx, commit, "", next); err != nil {
		return 0, err
	}
	e.data = next
	return next.amount, nil
}

func (d expenseData) priced(ctx context.Context, price float64, resolver DistanceResolver) (expenseData, error) {
	next := d.clone()
	amount, err := computeAmount(ctx, next.details, price, resolver)
	if err != nil {
		var domErr *Error
		if errors.As(err, &domErr) && domErr.ExpenseID == "" {
			domErr.ExpenseID = d.id
		}
		return d, err
	}
	next.amount = amount
	return next, nil
}

func (d expenseData) commit(ctx context.Context, commit CommitFunc, trigger workflow.Trigger, next expenseData) error {
	if commit == nil {
		return nil
	}
	return commit(ctx, Transition{
		ExpenseID: d.id,
		Trigger:   trigger,
		From:      d.status,
		To:        next.status,
		Before:    d.view(),
		After:     next.view(),
	})
}

// Submit hands a DRAFT expense over for review
func (e *Expense) Submit(ctx context.Context, commit CommitFunc) error {
	return e.fire(ctx, workflow.TriggerSubmit, nil, nil, commit)
}

// Accept validates an expense under review. A receipt reference is required.
func (e *Expense) Accept(ctx context.Context, commit CommitFunc) error {
	return e.fire(ctx, workflow.TriggerAccept, nil, nil, commit)
}

// Refuse closes an expense under review with a reason kept beside the receipt
func (e *Expense) Refuse(ctx context.Context, reason string, commit CommitFunc) error {
	reason = strings.TrimSpace(reason)
	guard := func(ctx context.Context) error {
		if reason == "" {
			return NewValidationError(e.data.id, "reason", "refusal reason is required")
		}
		return nil
	}
	return e.fire(ctx, workflow.TriggerRefuse, guard, func(d *expenseData) {
		d.refusalReason = reason
	}, commit)
}

// SchedulePayment moves a VALIDATED expense to PAID
func (e *Expense) SchedulePayment(ctx context.Context, commit CommitFunc) error {
	return e.fire(ctx, workflow.TriggerSchedulePayment, nil, nil, commit)
}

// ConfirmPayment checks that the expense is PAID; nothing is modified
func (e *Expense) ConfirmPayment(ctx context.Context) error {
	return e.fire(ctx, workflow.TriggerConfirmPayment, nil, nil, nil)
}

// CheckModifiable returns a StateError unless the expense is still mutable
func (e *Expense) CheckModifiable() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.checkModifiable("modify")
}

func (d expenseData) checkModifiable(action string) error {
	if d.withdrawn {
		return d.withdrawnError(action)
	}
	if d.status.IsMutable() {
		return nil
	}
	return &Error{
		Kind:      KindState,
		ExpenseID: d.id,
		Field:     "status",
		Message:   action + " is not allowed once an expense is " + d.status.String(),
	}
}

func (d expenseData) withdrawnError(action string) error {
	return &Error{
		Kind:      KindState,
		ExpenseID: d.id,
		Field:     "status",
		Message:   action + " is not allowed on a withdrawn expense",
	}
}

// Withdraw marks a mutable expense as removed by its owner. Every later
// transition or edit fails.
func (e *Expense) Withdraw(ctx context.Context, commit CommitFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.data.checkModifiable("withdraw"); err != nil {
		return err
	}
	next := e.data
	next.withdrawn = true
	if err := e.data.commit(ctx, commit, "", next); err != nil {
		return err
	}
	e.data = next
	return nil
}

// Update replaces the fields set in p. Only mutable expenses can be updated and
// nothing changes if any field is rejected.
func (e *Expense) Update(ctx context.Context, p Patch, commit CommitFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.data.checkModifiable("update"); err != nil {
		return err
	}

	next := e.data.clone()
	if err := p.apply(&next); err != nil {
		return err
	}

	if err := e.data.commit(ctx, commit, "", next); err != nil {
		return err
	}

	e.data = next
	return nil
}

// fire runs trigger through the lifecycle machine as one check-and-set.
// extra is an additional guard for this call; mutate edits the candidate state.
func (e *Expense) fire(ctx context.Context, trigger workflow.Trigger, extra workflow.GuardFunc, mutate func(*expenseData), commit CommitFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.data.status
	if e.data.withdrawn {
		return e.data.withdrawnError(strings.ToLower(trigger.String()))
	}
	guards := workflow.ExpenseGuards{
		Submit: func(ctx context.Context) error { return e.data.fieldValidity() },
		Accept: func(ctx context.Context) error {
			if strings.TrimSpace(e.data.receiptReference) == "" {
				return NewValidationError(e.data.id, "receipt_reference", "a receipt is required to accept an expense")
			}
			return nil
		},
		Refuse: extra,
	}

	machine := workflow.BuildExpenseStateMachine(from, guards)
	if !machine.CanFire(trigger) {
		return NewStateError(e.data.id, from, trigger, workflow.ErrInvalidTransition)
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		var domErr *Error
		if errors.As(err, &domErr) {
			return domErr
		}
		return NewStateError(e.data.id, from, trigger, err)
	}

	next := e.data.clone()
	next.status = machine.State()
	if next.status != from {
		next.statusChangedAt = time.Now().UTC()
	}
	if mutate != nil {
		mutate(&next)
	}

	if err := e.data.commit(ctx, commit, trigger, next); err != nil {
		return err
	}

	e.data = next
	return nil
}
