package event

// Type identifies the type of domain event
type Type string

const (
	TypeAccountValidated Type = "account.validated"
	TypeExpenseFiled     Type = "expense.filed"
	TypeExpenseSubmitted Type = "expense.submitted"
	TypeExpenseWithdrawn Type = "expense.withdrawn"
	TypeExpenseValidated Type = "expense.validated"
	TypeExpenseRefused   Type = "expense.refused"
	TypeExpensePaid      Type = "expense.paid"
	TypePaymentConfirmed Type = "payment.confirmed"
	TypePendingReminder  Type = "expense.pending_reminder"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeAccountValidated,
		TypeExpenseFiled,
		TypeExpenseSubmitted,
		TypeExpenseWithdrawn,
		TypeExpenseValidated,
		TypeExpenseRefused,
		TypeExpensePaid,
		TypePaymentConfirmed,
		TypePendingReminder:
		return true
	default:
		return false
	}
}
