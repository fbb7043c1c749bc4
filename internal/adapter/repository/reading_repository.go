package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	domainRepo "github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type readingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReadingRepository creates a new reading repository instance
func NewReadingRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ReadingRepository {
	return &readingRepository{db: db, logger: logger}
}

func (r *readingRepository) Create(ctx context.Context, reading *model.TarotReading) error {
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

func (r *readingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TarotReading, error) {
	var reading model.TarotReading
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return &reading, nil
}

func (r *readingRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]model.TarotReading, error) {
	if limit <= 0 {
		limit = 20
	}
	var readings []model.TarotReading
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

func (r *readingRepository) SaveInterpretation(ctx context.Context, id uuid.UUID, interpretation string, unlockedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.TarotReading{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"interpretation": interpretation,
			"is_premium":     true,
			"unlocked_at":    unlockedAt,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save interpretation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrReadingNotFound
	}
	return nil
}
