// Package notify defines the notification interface and implementations
// for digest delivery.
package notify

import (
	"context"
)

// Notifier delivers a composed digest to the recipient.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
