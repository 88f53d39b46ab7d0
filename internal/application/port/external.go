package port

import (
	"context"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// DistanceResolver looks up road distances for travel expenses
type DistanceResolver = entity.DistanceResolver

// Message is a rendered notification ready for delivery
type Message struct {
	To      string
	Subject string
	Body    string
}

// MessageSender delivers notifications to people
type MessageSender interface {
	Send(ctx context.Context, msg Message) error
}

// ReportExporter renders expense snapshots into a spreadsheet
type ReportExporter interface {
	Export(ctx context.Context, views []entity.ExpenseView) ([]byte, error)
}

// StatementRenderer renders a single expense into a printable statement
type StatementRenderer interface {
	Render(ctx context.Context, view entity.ExpenseView, owner entity.Identity) ([]byte, error)
}
