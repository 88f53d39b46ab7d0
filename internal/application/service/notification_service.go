package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
)

// NotificationConfig addresses outgoing messages
type NotificationConfig struct {
	SenderName      string
	AccountantEmail string
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

// messageData is what every template can reference
type messageData struct {
	Name         string
	Sender       string
	ExpenseID    string
	Kind         string
	Amount       float64
	Reason       string
	PendingSince time.Time
}

var messageTemplates = map[event.Type]struct{ subject, body string }{
	event.TypeAccountValidated: {
		subject: "Your account is active",
		body: `Hello {{.Name}},

Your account has been validated. You can now file expense claims.

{{.Sender}}`,
	},
	event.TypeExpenseValidated: {
		subject: "Expense {{.ExpenseID}} validated",
		body: `Hello {{.Name}},

Your {{.Kind | lower}} expense {{.ExpenseID}} of {{printf "%.2f" .Amount}} has been validated and will be scheduled for payment.

{{.Sender}}`,
	},
	event.TypeExpenseRefused: {
		subject: "Expense {{.ExpenseID}} refused",
		body: `Hello {{.Name}},

Your {{.Kind | lower}} expense {{.ExpenseID}} of {{printf "%.2f" .Amount}} has been refused.
Reason: {{.Reason}}

A refused claim is closed. If the cost is still due, please file a new claim with the corrected details.

{{.Sender}}`,
	},
	event.TypePaymentConfirmed: {
		subject: "Payment of expense {{.ExpenseID}} confirmed",
		body: `Hello {{.Name}},

The payment of {{printf "%.2f" .Amount}} for your {{.Kind | lower}} expense {{.ExpenseID}} is confirmed.

{{.Sender}}`,
	},
	event.TypePendingReminder: {
		subject: "Expense {{.ExpenseID}} is waiting for review",
		body: `Hello,

Expense {{.ExpenseID}} ({{.Kind | lower}}, {{printf "%.2f" .Amount}}) has been waiting for a decision since {{.PendingSince.Format "2006-01-02"}}.

{{.Sender}}`,
	},
}

// NotificationService turns lifecycle events into messages for the people involved
type NotificationService struct {
	accounts  port.AccountRepository
	sender    port.MessageSender
	config    NotificationConfig
	templates map[event.Type]messageTemplate
	logger    Logger
}

// NewNotificationService parses the message templates
func NewNotificationService(
	accounts port.AccountRepository,
	sender port.MessageSender,
	config NotificationConfig,
	logger Logger,
) (*NotificationService, error) {
	funcs := template.FuncMap{"lower": strings.ToLower}

	templates := make(map[event.Type]messageTemplate, len(messageTemplates))
	for t, src := range messageTemplates {
		subject, err := template.New(string(t) + ".subject").Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", t, err)
		}
		body, err := template.New(string(t)).Funcs(funcs).Parse(src.body)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", t, err)
		}
		templates[t] = messageTemplate{subject: subject, body: body}
	}

	return &NotificationService{
		accounts:  accounts,
		sender:    sender,
		config:    config,
		templates: templates,
		logger:    orNop(logger),
	}, nil
}

// Subscribe registers a handler for every event that produces a message
func (s *NotificationService) Subscribe(d dispatcher.Dispatcher) {
	for t := range s.templates {
		d.SubscribeNamed(t, "notify-"+t.String(), s.Handle)
	}
}

// Handle renders and sends the message of evt
func (s *NotificationService) Handle(ctx context.Context, evt *event.Event) error {
	tmpl, ok := s.templates[evt.Type]
	if !ok {
		return nil
	}

	to, name, err := s.recipient(ctx, evt)
	if err != nil {
		s.logger.Error("Failed to resolve recipient", "error", err, "event_type", evt.Type, "expense_id", evt.ExpenseID)
		return err
	}
	if to == "" {
		s.logger.Warn("No recipient address, notification skipped", "event_type", evt.Type, "expense_id", evt.ExpenseID)
		return nil
	}

	data := messageData{
		Name:         name,
		Sender:       s.config.SenderName,
		ExpenseID:    evt.ExpenseID,
		Kind:         evt.GetPayloadString(event.KeyKind),
		Amount:       evt.GetPayloadFloat(event.KeyAmount),
		Reason:       evt.GetPayloadString(event.KeyReason),
		PendingSince: evt.GetPayloadTime(event.KeyPendingSince),
	}

	msg, err := s.render(tmpl, to, data)
	if err != nil {
		s.logger.Error("Failed to render notification", "error", err, "event_type", evt.Type)
		return err
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send notification", "error", err, "event_type", evt.Type, "to", to)
		return fmt.Errorf("send message: %w", err)
	}

	s.logger.Info("Notification sent", "event_type", evt.Type, "expense_id", evt.ExpenseID, "to", to)
	return nil
}

// recipient returns the address and display name a message goes to
func (s *NotificationService) recipient(ctx context.Context, evt *event.Event) (string, string, error) {
	var accountID string
	switch evt.Type {
	case event.TypePendingReminder:
		return s.config.AccountantEmail, "", nil
	case event.TypeAccountValidated:
		accountID = evt.GetPayloadString(event.KeyAccountID)
	default:
		accountID = evt.GetPayloadString(event.KeyOwnerID)
	}
	if accountID == "" {
		return "", "", nil
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", "", fmt.Errorf("get account %s: %w", accountID, err)
	}
	return account.Email, account.Name, nil
}

func (s *NotificationService) render(tmpl messageTemplate, to string, data messageData) (port.Message, error) {
	var subj, body bytes.Buffer
	if err := tmpl.subject.Execute(&subj, data); err != nil {
		return port.Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return port.Message{}, fmt.Errorf("render body: %w", err)
	}
	return port.Message{To: to, Subject: subj.String(), Body: body.String()}, nil
}

