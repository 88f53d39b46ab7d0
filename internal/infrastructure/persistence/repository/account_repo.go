package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const accountColumns = `id, name, email, role, active, validated_at, created_at, updated_at`

// AccountRepository implements port.AccountRepository
type AccountRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlite.DB, logger *zap.Logger) port.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		string(account.Role),
		account.Active,
		nullTime(account.ValidatedAt),
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		r.logger.Error("Failed to create account", zap.String("email", account.Email), zap.Error(err))
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get account", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Update stores the mutable fields of an account
func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	query := `
		UPDATE accounts
		SET name = ?, email = ?, role = ?, active = ?, validated_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		account.Name,
		account.Email,
		string(account.Role),
		account.Active,
		nullTime(account.ValidatedAt),
		formatTime(account.UpdatedAt),
		account.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update account", zap.String("id", account.ID), zap.Error(err))
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", account.ID, port.ErrNotFound)
	}
	return nil
}

// List retrieves every account ordered by creation
func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row scanner) (*entity.Account, error) {
	var (
		account     entity.Account
		role        string
		validatedAt sql.NullTime
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&role,
		&account.Active,
		&validatedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Role = entity.Role(role)
	if validatedAt.Valid {
		t := validatedAt.Time
		account.ValidatedAt = &t
	}
	return &account, nil
}

// Verify interface compliance
var _ port.AccountRepository = (*AccountRepository)(nil)
