package entity

import "time"

// Action types recorded in the history trail besides workflow triggers
const (
	ActionFile     = "FILE"
	ActionUpdate   = "UPDATE"
	ActionWithdraw = "WITHDRAW"
)

// ExpenseHistory is one entry of an expense's audit trail
type ExpenseHistory struct {
	ID             int64     `json:"id"`
	ExpenseID      string    `json:"expense_id"`
	ActorID        string    `json:"actor_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActionType     string    `json:"action_type"`
	ActionData     string    `json:"action_data"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewHistoryFromTransition records t as performed by actorID
func NewHistoryFromTransition(t Transition, actorID string) *ExpenseHistory {
	action := ActionUpdate
	if t.Trigger != "" {
		action = t.Trigger.String()
	}
	return &ExpenseHistory{
		ExpenseID:      t.ExpenseID,
		ActorID:        actorID,
		PreviousStatus: t.From.String(),
		NewStatus:      t.To.String(),
		ActionType:     action,
		ActionData:     t.After.RefusalReason,
		Timestamp:      time.Now().UTC(),
	}
}
