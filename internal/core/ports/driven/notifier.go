package driven

import "context"

// Notification is one client-facing message ready for delivery.
type Notification struct {
	// EngagementID is the engagement concerned.
	EngagementID string

	// Subject is the message subject line.
	Subject string

	// Body is the message body. Templating is out of scope here;
	// whatever composes the notification owns its content.
	Body string
}

// Notifier delivers client-facing messages. Implementations may send
// email, post to a webhook, or log in development.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
