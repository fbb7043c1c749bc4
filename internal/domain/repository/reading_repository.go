package repository

import (
	"context"
	"time"

	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/google/uuid"
)

// ReadingRepository provides access to stored tarot readings
type ReadingRepository interface {
	Create(ctx context.Context, reading *model.TarotReading) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TarotReading, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]model.TarotReading, error)

	// SaveInterpretation stores the generated text and marks the reading
	// premium.
	SaveInterpretation(ctx context.Context, id uuid.UUID, interpretation string, unlockedAt time.Time) error
}
