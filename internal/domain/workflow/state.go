package workflow

// State represents the workflow stage of an expense
type State string

const (
	StateDraft      State = "DRAFT"
	StateInProgress State = "IN_PROGRESS"
	StateValidated  State = "VALIDATED"
	StateRefused    State = "REFUSED"
	StatePaid       State = "PAID"
)

var validStates = map[State]bool{
	StateDraft:      true,
	StateInProgress: true,
	StateValidated:  true,
	StateRefused:    true,
	StatePaid:       true,
}

var terminalStates = map[State]bool{
	StateRefused: true,
	StatePaid:    true,
}

var mutableStates = map[State]bool{
	StateDraft:      true,
	StateInProgress: true,
}

// AllStates lists every state in lifecycle order
func AllStates() []State {
	return []State{StateDraft, StateInProgress, StateValidated, StateRefused, StatePaid}
}

// IsTerminal returns true if no state-changing transition leaves s
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsMutable returns true while the owning employee may still edit or withdraw the expense
func (s State) IsMutable() bool {
	return mutableStates[s]
}

// IsSettled returns true once an accountant has accepted the expense
func (s State) IsSettled() bool {
	return s == StateValidated || s == StatePaid
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known workflow state
func (s State) IsValid() bool {
	return validStates[s]
}
