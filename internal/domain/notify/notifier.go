package notify

import "context"

// Notifier delivers short plain-text reports to an operator.
// This keeps the application services independent of any messaging library.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
