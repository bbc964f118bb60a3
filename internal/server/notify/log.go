package notify

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogSender records that a message would have been sent. The body carries
// live verification and reset tokens and is never logged.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.logger.Info(ctx, "email", "template", m.Template, "to", m.To, "subject", m.Subject)
	return nil
}
