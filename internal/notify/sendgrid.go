package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridNotifier delivers messages through the SendGrid API.
type SendgridNotifier struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *slog.Logger
}

func NewSendgridNotifier(apiKey, fromName, fromEmail string, logger *slog.Logger) *SendgridNotifier {
	return &SendgridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (n *SendgridNotifier) Send(ctx context.Context, recipient, subject, htmlBody, textBody string) bool {
	to := sgmail.NewEmail("", recipient)
	message := sgmail.NewSingleEmail(n.from, subject, to, textBody, htmlBody)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		n.logger.WarnContext(ctx, "sendgrid send failed", "recipient", recipient, "error", err)
		return false
	}
	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.WarnContext(ctx, "sendgrid rejected message",
			"recipient", recipient,
			"status", resp.StatusCode,
			"body", resp.Body,
		)
		return false
	}
	return true
}
