package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSubmit          Trigger = "SUBMIT"
	TriggerAccept          Trigger = "ACCEPT"
	TriggerRefuse          Trigger = "REFUSE"
	TriggerSchedulePayment Trigger = "SCHEDULE_PAYMENT"
	TriggerConfirmPayment  Trigger = "CONFIRM_PAYMENT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
