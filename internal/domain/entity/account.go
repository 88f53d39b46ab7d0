package entity

import (
	"fmt"
	"time"
)

// Role is the part an account plays in the claim workflow
type Role string

const (
	RoleEmployee      Role = "EMPLOYEE"
	RoleAccountant    Role = "ACCOUNTANT"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleAccountant || r == RoleAdministrator
}

// Identity is the acting account as seen by the workflows
type Identity interface {
	AccountID() string
	DisplayName() string
	EmailAddress() string
	AccountRole() Role
	IsActive() bool
}

// Account is a user of the system. New accounts start inactive until an
// administrator validates them.
type Account struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *Account) AccountID() string    { return a.ID }
func (a *Account) DisplayName() string  { return a.Name }
func (a *Account) EmailAddress() string { return a.Email }
func (a *Account) AccountRole() Role    { return a.Role }
func (a *Account) IsActive() bool       { return a != nil && a.Active }

// Validate activates the account
func (a *Account) Validate(now time.Time) error {
	if a.Active {
		return fmt.Errorf("account %s is already active", a.ID)
	}
	a.Active = true
	a.ValidatedAt = &now
	a.UpdatedAt = now
	return nil
}

// Deactivate revokes the account's right to act
func (a *Account) Deactivate(now time.Time) {
	a.Active = false
	a.UpdatedAt = now
}
