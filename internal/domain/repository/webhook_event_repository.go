package repository

import (
	"context"

	"github.com/astrotarothub/backend/internal/domain/model"
)

// WebhookEventRepository records processed gateway deliveries.
type WebhookEventRepository interface {
	// Record inserts the event into the processed ledger. Returns
	// errors.ErrDuplicateEvent when the same delivery was seen before.
	Record(ctx context.Context, event *model.WebhookEvent) error
}
