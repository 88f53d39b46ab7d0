package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/pkg/utils"
)

// AccountService registers accounts and lets administrators activate them
type AccountService struct {
	repo       port.AccountRepository
	dispatcher dispatcher.Dispatcher
	logger     Logger
	now        func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(repo port.AccountRepository, d dispatcher.Dispatcher, logger Logger) *AccountService {
	return &AccountService{
		repo:       repo,
		dispatcher: d,
		logger:     orNop(logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an inactive account
func (s *AccountService) Register(ctx context.Context, name, email string, role entity.Role) (*entity.Account, error) {
	name = utils.SanitizeString(name)
	if name == "" {
		return nil, entity.NewValidationError("", "name", "name is required")
	}
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, entity.NewValidationError("", "email", "email address is malformed")
	}
	if !role.IsValid() {
		return nil, entity.NewValidationError("", "role", "unknown role "+string(role))
	}

	now := s.now()
	account := &entity.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		s.logger.Error("Failed to create account", "error", err, "email", email)
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("Account registered", "account_id", account.ID, "role", role)
	return account, nil
}

// Validate activates an account; admin must be an active administrator
func (s *AccountService) Validate(ctx context.Context, admin entity.Identity, id string) (*entity.Account, error) {
	if err := s.authorizeAdmin(admin); err != nil {
		return nil, err
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Validate(s.now()); err != nil {
		return nil, entity.NewValidationError("", "active", err.Error())
	}
	if err := s.repo.Update(ctx, account); err != nil {
		s.logger.Error("Failed to activate account", "error", err, "account_id", id)
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("Account validated", "account_id", id, "by", admin.AccountID())
	publish(ctx, s.dispatcher, event.NewEvent(event.TypeAccountValidated, "", admin.AccountID(), map[string]interface{}{
		event.KeyAccountID: account.ID,
	}))
	return account, nil
}

// Deactivate revokes an account; admin must be an active administrator
func (s *AccountService) Deactivate(ctx context.Context, admin entity.Identity, id string) (*entity.Account, error) {
	if err := s.authorizeAdmin(admin); err != nil {
		return nil, err
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Deactivate(s.now())
	if err := s.repo.Update(ctx, account); err != nil {
		s.logger.Error("Failed to deactivate account", "error", err, "account_id", id)
		return nil, fmt.Errorf("update account: %w", err)
	}
	s.logger.Info("Account deactivated", "account_id", id, "by", admin.AccountID())
	return account, nil
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, id string) (*entity.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	return account, nil
}

// List returns every account
func (s *AccountService) List(ctx context.Context) ([]*entity.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Bootstrap creates an active administrator when no account exists yet
func (s *AccountService) Bootstrap(ctx context.Context, name, email string) (*entity.Account, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) > 0 {
		return nil, nil
	}

	account, err := s.Register(ctx, name, email, entity.RoleAdministrator)
	if err != nil {
		return nil, err
	}
	if err := account.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("activate bootstrap account: %w", err)
	}
	s.logger.Info("Bootstrap administrator created", "account_id", account.ID, "email", email)
	return account, nil
}

func (s *AccountService) authorizeAdmin(admin entity.Identity) error {
	if admin == nil {
		return entity.NewAuthorizationError("")
	}
	if !admin.IsActive() || admin.AccountRole() != entity.RoleAdministrator {
		return entity.NewAuthorizationError(admin.AccountID())
	}
	return nil
}

// IsNotFound reports whether err means a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, port.ErrNotFound)
}
