package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"account validated", TypeAccountValidated, true},
		{"expense refused", TypeExpenseRefused, true},
		{"payment confirmed", TypePaymentConfirmed, true},
		{"pending reminder", TypePendingReminder, true},
		{"unknown", Type("expense.archived"), false},
		{"empty", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	evt := NewEvent(TypeExpenseRefused, "exp-1", "acct-9", map[string]interface{}{
		KeyReason: "missing receipt",
	})

	if _, err := uuid.Parse(evt.ID); err != nil {
		t.Errorf("event ID %q is not a uuid: %v", evt.ID, err)
	}
	if evt.CorrelationID == "" || evt.CorrelationID == evt.ID {
		t.Errorf("correlation ID should be generated separately, got %q", evt.CorrelationID)
	}
	if evt.ExpenseID != "exp-1" || evt.ActorID != "acct-9" {
		t.Errorf("unexpected ids: expense=%q actor=%q", evt.ExpenseID, evt.ActorID)
	}
	if evt.Timestamp.Before(before) {
		t.Error("timestamp should be set at creation")
	}
	if got := evt.GetPayloadString(KeyReason); got != "missing receipt" {
		t.Errorf("GetPayloadString() = %q", got)
	}
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeExpenseSubmitted, "exp-1", "", nil)
	if evt.Payload == nil {
		t.Fatal("payload should never be nil")
	}
	if got := evt.GetPayloadString("missing"); got != "" {
		t.Errorf("GetPayloadString() on missing key = %q, want empty", got)
	}
}

func TestNewEventWithCorrelation(t *testing.T) {
	evt := NewEventWithCorrelation(TypeExpensePaid, "exp-1", "acct-1", nil, "chain-42")
	if evt.CorrelationID != "chain-42" {
		t.Errorf("CorrelationID = %q, want chain-42", evt.CorrelationID)
	}
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeExpenseValidated, "exp-1", "acct-1", map[string]interface{}{
		KeyAmount: 240.0,
	})

	updated := original.WithPayload(KeyOwnerID, "emp-3")

	if _, ok := original.Payload[KeyOwnerID]; ok {
		t.Error("WithPayload() must not mutate the original event")
	}
	if updated.ID != original.ID || updated.CorrelationID != original.CorrelationID {
		t.Error("WithPayload() should keep identity fields")
	}
	if got := updated.GetPayloadString(KeyOwnerID); got != "emp-3" {
		t.Errorf("GetPayloadString() = %q, want emp-3", got)
	}
	if got := updated.GetPayloadFloat(KeyAmount); got != 240.0 {
		t.Errorf("GetPayloadFloat() = %v, want 240", got)
	}
}

func TestEvent_GetPayloadFloat(t *testing.T) {
	evt := NewEvent(TypeExpensePaid, "", "", map[string]interface{}{
		"f":   12.5,
		"i":   3,
		"i64": int64(7),
		"s":   "nope",
	})

	tests := []struct {
		key  string
		want float64
	}{
		{"f", 12.5},
		{"i", 3},
		{"i64", 7},
		{"s", 0},
		{"absent", 0},
	}
	for _, tt := range tests {
		if got := evt.GetPayloadFloat(tt.key); got != tt.want {
			t.Errorf("GetPayloadFloat(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestEvent_GetPayloadTime(t *testing.T) {
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	evt := NewEvent(TypePendingReminder, "exp-1", "", map[string]interface{}{KeyPendingSince: since})

	if got := evt.GetPayloadTime(KeyPendingSince); !got.Equal(since) {
		t.Errorf("GetPayloadTime() = %v, want %v", got, since)
	}
	if got := evt.GetPayloadTime("absent"); !got.IsZero() {
		t.Errorf("GetPayloadTime() on missing key = %v, want zero", got)
	}
}
