package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/distance"
)

type workflowFixture struct {
	expenses *mockExpenseRepo
	history  *mockHistoryRepo
	tx       *mockTxManager
	events   *recordingDispatcher
	logger   *mockLogger
	deps     WorkflowDeps
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		expenses: newMockExpenseRepo(),
		history:  &mockHistoryRepo{},
		tx:       &mockTxManager{},
		events:   &recordingDispatcher{},
		logger:   &mockLogger{},
	}
	f.deps = WorkflowDeps{
		Registry:   NewExpenseRegistry(f.expenses),
		Store:      Persistence{Expenses: f.expenses, History: f.history, TxManager: f.tx},
		Dispatcher: f.events,
		Resolver:   fixedResolver{{"Paris", "Lyon"}: 465},
		Pricing:    DefaultPricing(),
		Logger:     f.logger,
	}
	return f
}

func stay(nights int) *entity.Lodging {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &entity.Lodging{City: "Lyon", StayStart: start, StayEnd: start.AddDate(0, 0, 3), NightCount: nights}
}

func fileLodging(t *testing.T, w *EmployeeWorkflow, receipt string) *entity.Expense {
	t.Helper()
	e, err := w.NewExpense(context.Background(), entity.NewExpenseParams{
		Date:             time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Amount:           240,
		ReceiptReference: receipt,
		Details:          stay(3),
	})
	require.NoError(t, err)
	require.NoError(t, w.File(context.Background(), e))
	return e
}

func TestEmployeeWorkflow_FileAndSubmit(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	e := fileLodging(t, w, "hotel-42")
	assert.Equal(t, "emp-1", e.OwnerID())
	require.Len(t, w.List(), 1)

	require.NoError(t, w.Submit(ctx, e))
	assert.Equal(t, workflow.StateInProgress, e.Status())

	stored, err := f.expenses.GetByID(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, workflow.StateInProgress, stored.Status)
	assert.Equal(t, []string{entity.ActionFile, "SUBMIT"}, f.history.actions(e.ID()))
	assert.Equal(t, []event.Type{event.TypeExpenseFiled, event.TypeExpenseSubmitted}, f.events.types())
	assert.Equal(t, "emp-1", f.events.last().GetPayloadString(event.KeyOwnerID))
}

func TestEmployeeWorkflow_NewExpenseComputesMissingAmount(t *testing.T) {
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	e, err := w.NewExpense(context.Background(), entity.NewExpenseParams{
		Details: &entity.Travel{DepartureLocation: "Paris", ArrivalLocation: "Lyon"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 232.50, e.Amount(), 1e-9)
	assert.Equal(t, 465.0, e.Details().(*entity.Travel).DistanceKm)
}

func TestEmployeeWorkflow_InactiveIdentity(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	account := activeAccount("emp-1", entity.RoleEmployee)
	w := NewEmployeeWorkflow(account, f.deps)
	e := fileLodging(t, w, "r")

	inactive := *account
	inactive.Active = false
	w.Rebind(&inactive)

	assert.ErrorIs(t, w.Submit(ctx, e), entity.ErrAuthorization)
	assert.ErrorIs(t, w.Withdraw(ctx, e), entity.ErrAuthorization)
	_, err := w.NewExpense(ctx, entity.NewExpenseParams{Details: stay(3)})
	assert.ErrorIs(t, err, entity.ErrAuthorization)
	assert.Equal(t, workflow.StateDraft, e.Status())
	assert.Len(t, w.List(), 1, "queries need no active identity")
}

func TestEmployeeWorkflow_FileRejections(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	t.Run("zero amount", func(t *testing.T) {
		e, err := entity.NewExpense(entity.NewExpenseParams{OwnerID: "emp-1", Details: stay(3)})
		require.NoError(t, err)
		assert.ErrorIs(t, w.File(ctx, e), entity.ErrValidation)
	})

	t.Run("night count mismatch is logged", func(t *testing.T) {
		e, err := entity.NewExpense(entity.NewExpenseParams{OwnerID: "emp-1", Amount: 160, Details: stay(2)})
		require.NoError(t, err)
		before := f.logger.warnCount()
		assert.ErrorIs(t, w.File(ctx, e), entity.ErrValidation)
		assert.Equal(t, before+1, f.logger.warnCount())
	})

	t.Run("other owner", func(t *testing.T) {
		e, err := entity.NewExpense(entity.NewExpenseParams{OwnerID: "emp-2", Amount: 240, Details: stay(3)})
		require.NoError(t, err)
		assert.ErrorIs(t, w.File(ctx, e), entity.ErrValidation)
	})

	t.Run("filed twice", func(t *testing.T) {
		e := fileLodging(t, w, "r")
		assert.ErrorIs(t, w.File(ctx, e), entity.ErrValidation)
	})

	assert.Len(t, w.List(), 1)
}

func TestEmployeeWorkflow_MembershipRequired(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	stranger, err := entity.NewExpense(entity.NewExpenseParams{OwnerID: "emp-1", Amount: 240, Details: stay(3)})
	require.NoError(t, err)

	assert.ErrorIs(t, w.Submit(ctx, stranger), entity.ErrMembership)
	assert.ErrorIs(t, w.Update(ctx, stranger, entity.Patch{}), entity.ErrMembership)
	assert.ErrorIs(t, w.Withdraw(ctx, stranger), entity.ErrMembership)
	_, err = w.Lookup(stranger.ID())
	assert.ErrorIs(t, err, entity.ErrMembership)
}

func TestEmployeeWorkflow_CommitFailureLeavesExpenseUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)
	e := fileLodging(t, w, "r")

	diskFull := errors.New("disk full")
	f.expenses.saveFunc = func(ctx context.Context, v entity.ExpenseView) error { return diskFull }

	assert.ErrorIs(t, w.Submit(ctx, e), diskFull)
	assert.Equal(t, workflow.StateDraft, e.Status())
	assert.Equal(t, []event.Type{event.TypeExpenseFiled}, f.events.types())
}

func TestEmployeeWorkflow_UpdateAndRecalculate(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)
	e := fileLodging(t, w, "")

	receipt := "hotel-7"
	require.NoError(t, w.Update(ctx, e, entity.Patch{ReceiptReference: &receipt}))
	assert.Equal(t, "hotel-7", e.ReceiptReference())

	amount, err := w.Recalculate(ctx, e, 0)
	require.NoError(t, err)
	assert.Equal(t, 240.0, amount)

	amount, err = w.Recalculate(ctx, e, 95)
	require.NoError(t, err)
	assert.Equal(t, 285.0, amount)

	stored, err := f.expenses.GetByID(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, 285.0, stored.Amount)
	assert.Equal(t, "hotel-7", stored.ReceiptReference)
}

func TestEmployeeWorkflow_TravelLocationErrorsAreValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	resolver, err := distance.NewTableResolver(map[string]float64{"paris|lyon": 465}, 0, zap.NewNop())
	require.NoError(t, err)
	f.deps.Resolver = resolver
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	tests := []struct {
		name     string
		from, to string
		field    string
	}{
		{"blank departure", "", "Lyon", "departure_location"},
		{"blank arrival", "Paris", " ", "arrival_location"},
		{"same location", "Paris", "paris", "distance_km"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.NewExpense(ctx, entity.NewExpenseParams{
				Date:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				Details: &entity.Travel{DepartureLocation: tt.from, ArrivalLocation: tt.to},
			})
			var domErr *entity.Error
			require.ErrorAs(t, err, &domErr)
			assert.Equal(t, entity.KindValidation, domErr.Kind)
			assert.Equal(t, tt.field, domErr.Field)
		})
	}

	e, err := w.NewExpense(ctx, entity.NewExpenseParams{
		Date:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Details: &entity.Travel{DepartureLocation: "Paris", ArrivalLocation: "Lyon"},
	})
	require.NoError(t, err)
	require.NoError(t, w.File(ctx, e))

	arrival, zero := "Paris", 0.0
	require.NoError(t, w.Update(ctx, e, entity.Patch{ArrivalLocation: &arrival, DistanceKm: &zero}))

	_, err = w.Recalculate(ctx, e, 0)
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.ErrorIs(t, err, entity.ErrSameLocation)
	assert.Equal(t, 232.5, e.Amount())
}

func TestEmployeeWorkflow_Withdraw(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)
	e := fileLodging(t, w, "r")
	require.NoError(t, w.Submit(ctx, e))

	require.NoError(t, w.Withdraw(ctx, e))
	assert.Empty(t, w.List())
	_, err := f.expenses.GetByID(ctx, e.ID())
	assert.True(t, IsNotFound(err))
	assert.Contains(t, f.history.actions(e.ID()), entity.ActionWithdraw)
	assert.Equal(t, event.TypeExpenseWithdrawn, f.events.last().Type)

	assert.ErrorIs(t, w.Withdraw(ctx, e), entity.ErrMembership)
}

func TestEmployeeWorkflow_WithdrawRefusedOnceDecided(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)
	e := fileLodging(t, w, "r")
	require.NoError(t, w.Submit(ctx, e))
	require.NoError(t, e.Accept(ctx, nil))

	assert.ErrorIs(t, w.Withdraw(ctx, e), entity.ErrState)
	assert.Len(t, w.List(), 1)
}

func TestEmployeeWorkflow_Queries(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	w := NewEmployeeWorkflow(activeAccount("emp-1", entity.RoleEmployee), f.deps)

	assert.Empty(t, w.List())
	assert.Empty(t, w.ListByStatus(workflow.StateDraft))
	assert.Zero(t, w.SumByStatus(workflow.StateDraft))
	assert.Zero(t, w.Summary().Count)

	a := fileLodging(t, w, "r")
	fileLodging(t, w, "r")
	require.NoError(t, w.Submit(ctx, a))

	assert.Len(t, w.ListByStatus(workflow.StateDraft), 1)
	assert.Equal(t, 240.0, w.SumByStatus(workflow.StateInProgress))
	summary := w.Summary()
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 480.0, summary.Total)
}

func TestEmployeeWorkflow_LoadRestoresClaimSet(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	account := activeAccount("emp-1", entity.RoleEmployee)
	first := NewEmployeeWorkflow(account, f.deps)
	e := fileLodging(t, first, "r")

	// a fresh process with an empty registry
	f.deps.Registry = NewExpenseRegistry(f.expenses)
	second := NewEmployeeWorkflow(account, f.deps)
	require.NoError(t, second.Load(ctx))

	restored, err := second.Lookup(e.ID())
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), restored.Snapshot())
	require.NoError(t, second.Submit(ctx, restored))
}
