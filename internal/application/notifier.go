package application

import "context"

// Notifier delivers dispatch outcomes to a human, e.g. a push notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _, _ string) error {
	return nil
}
