package notification

import (
	"context"

	"droply/models"
)

// Notifier publishes marketplace events for out-of-band delivery (losing
// couriers, OTP dispatch to recipients, settlement confirmations). Publish
// failures are reported but must never roll back the business write that
// triggered them.
type Notifier interface {
	Publish(ctx context.Context, event models.Event) error
}
