package workflow

// ExpenseGuards holds the entity-specific checks the expense lifecycle depends on.
// A nil guard always passes.
type ExpenseGuards struct {
	// Submit must hold for DRAFT -> IN_PROGRESS (field-level validity)
	Submit GuardFunc

	// Accept must hold for IN_PROGRESS -> VALIDATED (receipt present)
	Accept GuardFunc

	// Refuse must hold for IN_PROGRESS -> REFUSED (reason present)
	Refuse GuardFunc
}

// BuildExpenseStateMachine creates a state machine configured for the expense lifecycle
func BuildExpenseStateMachine(initialState State, guards ExpenseGuards) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateDraft).
		PermitIf(TriggerSubmit, StateInProgress, guards.Submit)

	builder.Configure(StateInProgress).
		PermitIf(TriggerAccept, StateValidated, guards.Accept).
		PermitIf(TriggerRefuse, StateRefused, guards.Refuse)

	builder.Configure(StateValidated).
		Permit(TriggerSchedulePayment, StatePaid)

	// Confirming a payment is observational: PAID stays PAID.
	builder.Configure(StatePaid).
		Permit(TriggerConfirmPayment, StatePaid)

	// REFUSED has no outgoing transitions

	return builder.Build(initialState)
}
