package notify

import (
	"context"
	"log/slog"
)

// ConsoleNotifier logs messages instead of sending them. Used in development
// and whenever no SendGrid key is configured.
type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) Send(ctx context.Context, recipient, subject, _, textBody string) bool {
	n.logger.InfoContext(ctx, "notification (console)",
		"recipient", recipient,
		"subject", subject,
		"body", textBody,
	)
	return true
}
