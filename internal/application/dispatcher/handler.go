package dispatcher

import (
	"context"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
)

// Handler reacts to a lifecycle event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}
