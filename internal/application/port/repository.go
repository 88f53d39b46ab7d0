package port

import (
	"context"
	"errors"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// ErrNotFound is returned by repositories when no row matches
var ErrNotFound = errors.New("not found")

// ExpenseRepository persists expense snapshots
type ExpenseRepository interface {
	// Save inserts or replaces the expense row
	Save(ctx context.Context, expense entity.ExpenseView) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.ExpenseView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.ExpenseView, error)
	ListByStatus(ctx context.Context, status workflow.State) ([]entity.ExpenseView, error)
	// ListPendingSince returns IN_PROGRESS expenses last changed before cutoff
	ListPendingSince(ctx context.Context, cutoff time.Time) ([]entity.ExpenseView, error)
}

// HistoryRepository persists the audit trail of expenses
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.ExpenseHistory) error
	ListByExpense(ctx context.Context, expenseID string) ([]*entity.ExpenseHistory, error)
}

// AccountRepository persists user accounts
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	List(ctx context.Context) ([]*entity.Account, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
