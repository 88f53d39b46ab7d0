package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const expenseColumns = `
	id, owner_id, kind, expense_date, amount, receipt_reference,
	refusal_reason, status, details, created_at, status_changed_at
`

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sqlite.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts the expense or replaces the stored row with the same id
func (r *ExpenseRepository) Save(ctx context.Context, expense entity.ExpenseView) error {
	details, err := entity.MarshalDetails(expense.Details)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}

	statusChangedAt := expense.StatusChangedAt
	if statusChangedAt.IsZero() {
		statusChangedAt = expense.CreatedAt
	}

	query := `
		INSERT INTO expenses (
			id, owner_id, kind, expense_date, amount, receipt_reference,
			refusal_reason, status, details, created_at, status_changed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			kind = excluded.kind,
			expense_date = excluded.expense_date,
			amount = excluded.amount,
			receipt_reference = excluded.receipt_reference,
			refusal_reason = excluded.refusal_reason,
			status = excluded.status,
			details = excluded.details,
			status_changed_at = excluded.status_changed_at,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		expense.ID,
		expense.OwnerID,
		string(expense.Kind),
		formatTime(expense.Date),
		expense.Amount,
		expense.ReceiptReference,
		expense.RefusalReason,
		expense.Status.String(),
		string(details),
		formatTime(expense.CreatedAt),
		formatTime(statusChangedAt),
		formatTime(time.Now()),
	)
	if err != nil {
		r.logger.Error("Failed to save expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// Delete removes the expense row
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("expense %s: %w", id, port.ErrNotFound)
	}
	return nil
}

// GetByID retrieves an expense by id
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.ExpenseView, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	view, err := scanExpense(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return view, nil
}

// ListByOwner retrieves the expenses of one employee, oldest first
func (r *ExpenseRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.ExpenseView, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE owner_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, ownerID)
}

// ListByStatus retrieves every expense in status, oldest first
func (r *ExpenseRepository) ListByStatus(ctx context.Context, status workflow.State) ([]entity.ExpenseView, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE status = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, status.String())
}

// ListPendingSince retrieves IN_PROGRESS expenses whose status last changed before cutoff
func (r *ExpenseRepository) ListPendingSince(ctx context.Context, cutoff time.Time) ([]entity.ExpenseView, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE status = ? AND COALESCE(status_changed_at, updated_at) < ?
		ORDER BY status_changed_at ASC, id ASC`
	return r.list(ctx, query, workflow.StateInProgress.String(), formatTime(cutoff))
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...interface{}) ([]entity.ExpenseView, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var views []entity.ExpenseView
	for rows.Next() {
		view, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

func scanExpense(row scanner) (*entity.ExpenseView, error) {
	var (
		view            entity.ExpenseView
		kind, status    string
		details         string
		statusChangedAt sql.NullTime
	)

	err := row.Scan(
		&view.ID,
		&view.OwnerID,
		&kind,
		&view.Date,
		&view.Amount,
		&view.ReceiptReference,
		&view.RefusalReason,
		&status,
		&details,
		&view.CreatedAt,
		&statusChangedAt,
	)
	if err != nil {
		return nil, err
	}

	view.Kind = entity.Kind(kind)
	view.Status = workflow.State(status)
	view.StatusChangedAt = view.CreatedAt
	if statusChangedAt.Valid {
		view.StatusChangedAt = statusChangedAt.Time
	}

	view.Details, err = entity.UnmarshalDetails(view.Kind, []byte(details))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
