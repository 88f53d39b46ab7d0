package notify

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
)

// LogSender delivers notifications to the structured log and, when an outbox
// is configured, keeps a plain-text copy of every message.
type LogSender struct {
	from   string
	outbox port.FileStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewLogSender creates a LogSender; outbox may be nil
func NewLogSender(from string, outbox port.FileStorage, logger *zap.Logger) *LogSender {
	return &LogSender{
		from:   from,
		outbox: outbox,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Send implements port.MessageSender
func (s *LogSender) Send(ctx context.Context, msg port.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("message %q has no recipient", msg.Subject)
	}

	s.logger.Info("Notification sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))

	if s.outbox == nil {
		return nil
	}

	sentAt := s.now()
	name := fmt.Sprintf("%s-%s.txt", sentAt.Format("20060102T150405"), uuid.NewString()[:8])
	if err := s.outbox.Save(ctx, path.Join("outbox", name), []byte(s.render(msg, sentAt))); err != nil {
		return fmt.Errorf("failed to store message copy: %w", err)
	}
	return nil
}

func (s *LogSender) render(msg port.Message, sentAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Date: %s\r\n", sentAt.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", msg.Subject)
	b.WriteString(msg.Body)
	return b.String()
}

// Verify interface compliance
var _ port.MessageSender = (*LogSender)(nil)
