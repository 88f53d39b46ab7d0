package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/persistence/sqlite"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/pkg/database"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: database.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run())
	return sqlite.NewDB(db.DB, logger)
}

func travelView(id, owner string, status workflow.State, changed time.Time) entity.ExpenseView {
	return entity.ExpenseView{
		ID:              id,
		OwnerID:         owner,
		Kind:            entity.KindTravel,
		Date:            time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		Amount:          232.5,
		Status:          status,
		CreatedAt:       changed,
		StatusChangedAt: changed,
		Details: &entity.Travel{
			DepartureLocation: "Paris",
			ArrivalLocation:   "Lyon",
			DistanceKm:        465,
		},
	}
}

func TestExpenseRepository_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	ctx := context.Background()
	created := time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, travelView("exp-1", "emp-1", workflow.StateDraft, created)))

	got, err := repo.GetByID(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.OwnerID)
	assert.Equal(t, entity.KindTravel, got.Kind)
	assert.Equal(t, workflow.StateDraft, got.Status)
	assert.InDelta(t, 232.5, got.Amount, 0.001)
	assert.True(t, got.CreatedAt.Equal(created))

	travel, ok := got.Details.(*entity.Travel)
	require.True(t, ok)
	assert.Equal(t, "Lyon", travel.ArrivalLocation)
	assert.InDelta(t, 465, travel.DistanceKm, 0.001)

	restored, err := entity.RestoreExpense(*got)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", restored.ID())
}

func TestExpenseRepository_SaveReplaces(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	view := travelView("exp-1", "emp-1", workflow.StateInProgress, now)
	require.NoError(t, repo.Save(ctx, view))

	view.Status = workflow.StateRefused
	view.RefusalReason = "duplicate"
	require.NoError(t, repo.Save(ctx, view))

	got, err := repo.GetByID(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRefused, got.Status)
	assert.Equal(t, "duplicate", got.RefusalReason)

	all, err := repo.ListByOwner(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExpenseRepository_GetMissing(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t), zap.NewNop())

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, port.ErrNotFound)

	err = repo.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestExpenseRepository_Lists(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, travelView("a", "emp-1", workflow.StateInProgress, base)))
	require.NoError(t, repo.Save(ctx, travelView("b", "emp-1", workflow.StateDraft, base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, travelView("c", "emp-2", workflow.StateInProgress, base.Add(72*time.Hour))))

	owned, err := repo.ListByOwner(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "a", owned[0].ID)
	assert.Equal(t, "b", owned[1].ID)

	pending, err := repo.ListByStatus(ctx, workflow.StateInProgress)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	stale, err := repo.ListPendingSince(ctx, base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "a", stale[0].ID)
	assert.True(t, stale[0].StatusChangedAt.Equal(base))

	require.NoError(t, repo.Delete(ctx, "a"))
	owned, err = repo.ListByOwner(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestExpenseRepository_LodgingDetails(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	view := entity.ExpenseView{
		ID:               "exp-l",
		OwnerID:          "emp-1",
		Kind:             entity.KindLodging,
		Date:             start,
		Amount:           240,
		ReceiptReference: "hotel.pdf",
		Status:           workflow.StateDraft,
		CreatedAt:        start,
		Details:          &entity.Lodging{City: "Nantes", StayStart: start, StayEnd: start.AddDate(0, 0, 3), NightCount: 3},
	}
	require.NoError(t, repo.Save(ctx, view))

	got, err := repo.GetByID(ctx, "exp-l")
	require.NoError(t, err)
	lodging, ok := got.Details.(*entity.Lodging)
	require.True(t, ok)
	assert.Equal(t, 3, lodging.NightCount)
	assert.Equal(t, "hotel.pdf", got.ReceiptReference)
	assert.True(t, got.StatusChangedAt.Equal(start))
}

func TestHistoryRepository_CreateAndList(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	first := &entity.ExpenseHistory{ExpenseID: "exp-1", ActorID: "emp-1", NewStatus: "DRAFT", ActionType: entity.ActionFile}
	second := &entity.ExpenseHistory{ExpenseID: "exp-1", ActorID: "emp-1", PreviousStatus: "DRAFT", NewStatus: "IN_PROGRESS", ActionType: "SUBMIT"}
	other := &entity.ExpenseHistory{ExpenseID: "exp-2", NewStatus: "DRAFT", ActionType: entity.ActionFile}

	for _, h := range []*entity.ExpenseHistory{first, second, other} {
		require.NoError(t, repo.Create(ctx, h))
		assert.NotZero(t, h.ID)
	}

	records, err := repo.ListByExpense(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.ActionFile, records[0].ActionType)
	assert.Equal(t, "SUBMIT", records[1].ActionType)
	assert.False(t, records[1].Timestamp.IsZero())
}

func TestTransaction_RollbackDiscardsWrites(t *testing.T) {
	db := newTestDB(t)
	expenses := NewExpenseRepository(db, zap.NewNop())
	history := NewHistoryRepository(db, zap.NewNop())
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := expenses.Save(txCtx, travelView("exp-1", "emp-1", workflow.StateDraft, time.Now())); err != nil {
			return err
		}
		if err := history.Create(txCtx, &entity.ExpenseHistory{ExpenseID: "exp-1", NewStatus: "DRAFT", ActionType: entity.ActionFile}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = expenses.GetByID(ctx, "exp-1")
	assert.ErrorIs(t, err, port.ErrNotFound)

	records, err := history.ListByExpense(ctx, "exp-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTransaction_Commit(t *testing.T) {
	db := newTestDB(t)
	expenses := NewExpenseRepository(db, zap.NewNop())
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		return db.WithTransaction(txCtx, func(inner context.Context) error {
			return expenses.Save(inner, travelView("exp-1", "emp-1", workflow.StateDraft, time.Now()))
		})
	})
	require.NoError(t, err)

	_, err = expenses.GetByID(ctx, "exp-1")
	assert.NoError(t, err)
}

func TestAccountRepository(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	account := &entity.Account{
		ID:        "acc-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		Role:      entity.RoleEmployee,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, account))

	got, err := repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Nil(t, got.ValidatedAt)
	assert.Equal(t, entity.RoleEmployee, got.Role)

	require.NoError(t, got.Validate(now.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, got.Active)
	require.NotNil(t, got.ValidatedAt)
	assert.True(t, got.ValidatedAt.Equal(now.Add(time.Hour)))

	duplicate := *account
	duplicate.ID = "acc-2"
	assert.Error(t, repo.Create(ctx, &duplicate))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Account{ID: "missing"}), port.ErrNotFound)
}
