package entity

import (
	"fmt"
	"strings"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// ErrorKind classifies business-rule violations reported by the workflows
type ErrorKind string

const (
	KindAuthorization ErrorKind = "AUTHORIZATION"
	KindState         ErrorKind = "STATE"
	KindValidation    ErrorKind = "VALIDATION"
	KindMembership    ErrorKind = "MEMBERSHIP"
)

// Sentinels for errors.Is matching by kind
var (
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrState         = &Error{Kind: KindState}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrMembership    = &Error{Kind: KindMembership}
)

// Error is an expected business-rule failure. Nothing was changed when one is returned.
type Error struct {
	Kind      ErrorKind
	ExpenseID string
	Field     string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Kind)))
	b.WriteString(" error")
	if e.ExpenseID != "" {
		fmt.Fprintf(&b, " on expense %s", e.ExpenseID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [%s]", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.ExpenseID == "" && t.Field == "" && t.Message == ""
}

// NewAuthorizationError reports an acting identity that is not active
func NewAuthorizationError(accountID string) *Error {
	return &Error{
		Kind:    KindAuthorization,
		Field:   "account",
		Message: fmt.Sprintf("account %q is not active", accountID),
	}
}

// NewStateError reports a trigger that is illegal from the current status
func NewStateError(expenseID string, from workflow.State, trigger workflow.Trigger, cause error) *Error {
	return &Error{
		Kind:      KindState,
		ExpenseID: expenseID,
		Field:     "status",
		Message:   fmt.Sprintf("cannot %s from %s", strings.ToLower(trigger.String()), from),
		Err:       cause,
	}
}

// NewValidationError reports a missing or malformed field
func NewValidationError(expenseID, field, message string) *Error {
	return &Error{
		Kind:      KindValidation,
		ExpenseID: expenseID,
		Field:     field,
		Message:   message,
	}
}

// NewMembershipError reports an expense absent from the caller's set
func NewMembershipError(expenseID, set string) *Error {
	return &Error{
		Kind:      KindMembership,
		ExpenseID: expenseID,
		Message:   fmt.Sprintf("expense is not in the %s", set),
	}
}
