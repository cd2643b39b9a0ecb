// Package notify is the fire-and-forget adapter to the notification
// collaborator. Sends are never retried; a false return means the message was
// not delivered and the caller decides whether that matters (for registration
// notices it does not — the failure is logged and ignored).
package notify

import "context"

// Notifier delivers one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, htmlBody, textBody string) bool
}
