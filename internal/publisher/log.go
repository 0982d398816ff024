package publisher

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log. It stands in for RabbitMQ
// when no broker is configured.
type LogNotifier struct {
	logger     *slog.Logger
	recipients []string
}

func NewLogNotifier(logger *slog.Logger, recipients []string) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier"), recipients: recipients}
}

func (n *LogNotifier) Notify(_ context.Context, subject, body string) error {
	n.logger.Info(subject, "body", body, "recipients", n.recipients)
	return nil
}
