package repository

import (
	"context"
	"fmt"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	domainRepo "github.com/astrotarothub/backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{db: db, logger: logger}
}

// Record inserts the delivery into the processed-event ledger. The
// ON CONFLICT DO NOTHING insert plus affected-row count turns a replay
// into ErrDuplicateEvent without racing a separate existence check.
func (r *webhookEventRepository) Record(ctx context.Context, event *model.WebhookEvent) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_key"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("failed to record webhook event",
			zap.String("event_key", event.EventKey),
			zap.Error(result.Error))
		return fmt.Errorf("failed to record webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrDuplicateEvent
	}
	return nil
}
