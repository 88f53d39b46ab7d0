package container

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/pkg/database"
)

func testConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Database.Path = database.MemoryPath
	cfg.Storage.OutputDir = t.TempDir()
	cfg.Distance.Table = map[string]float64{"paris|lyon": 465}
	cfg.Bootstrap = BootstrapConfig{AdminName: "Root", AdminEmail: "root@example.com"}
	cfg.Reminder = ReminderConfig{Enabled: true, Interval: time.Hour, PendingAfter: time.Hour}
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Database.Path = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start is rejected")

	health := c.Health()
	assert.True(t, health.Overall, "%+v", health.Components)
	require.Len(t, health.Workers, 1)
	assert.Equal(t, "ReminderWorker", health.Workers[0].Name)

	accounts, err := c.Services().Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, entity.RoleAdministrator, accounts[0].Role)
	assert.True(t, accounts[0].Active)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_EndToEndClaim(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Close()

	svc := c.Services()
	admins, err := svc.Accounts.List(ctx)
	require.NoError(t, err)
	admin := admins[0]

	employee, err := svc.Accounts.Register(ctx, "Alice", "alice@example.com", entity.RoleEmployee)
	require.NoError(t, err)
	employee, err = svc.Accounts.Validate(ctx, admin, employee.ID)
	require.NoError(t, err)

	accountant, err := svc.Accounts.Register(ctx, "Bob", "bob@example.com", entity.RoleAccountant)
	require.NoError(t, err)
	accountant, err = svc.Accounts.Validate(ctx, admin, accountant.ID)
	require.NoError(t, err)

	ew, err := svc.Workflows.Employee(ctx, employee)
	require.NoError(t, err)

	e, err := ew.NewExpense(ctx, entity.NewExpenseParams{
		Date:             time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		ReceiptReference: "train-ticket.pdf",
		Details:          &entity.Travel{DepartureLocation: "Paris", ArrivalLocation: "Lyon"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 232.5, e.Amount(), 0.001)

	require.NoError(t, ew.File(ctx, e))
	require.NoError(t, ew.Submit(ctx, e))

	aw := svc.Workflows.Accountant(accountant)
	pending, err := aw.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, aw.Control(ctx, e))
	require.NoError(t, aw.Accept(ctx, e))
	require.NoError(t, aw.SchedulePayment(ctx, e))

	stored, err := c.Repositories().Expense.GetByID(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, "PAID", stored.Status.String())

	history, err := c.Repositories().History.ListByExpense(ctx, e.ID())
	require.NoError(t, err)
	assert.Len(t, history, 4, "file, submit, accept, schedule")

	data, name, err := svc.Export.Statement(ctx, *stored, employee)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, c.Documents().Exists(ctx, "statements/"+employee.ID+"/"+name))
}

func TestConvertToZapFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Warn("lodging mismatch", "expense_id", "exp-1", "error", errors.New("nights"), 42, "skipped", "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "exp-1", fields["expense_id"])
	assert.Equal(t, "nights", fields["error"])
	assert.Len(t, fields, 2)
}
