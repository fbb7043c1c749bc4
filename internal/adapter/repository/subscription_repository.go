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

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByPixupSubscriptionID(ctx context.Context, pixupSubID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("pixup_subscription_id = ?", pixupSubID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription by gateway id: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *model.Subscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) UpdateStatusByPixupSubscriptionID(ctx context.Context, pixupSubID string, status model.SubscriptionStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	// A cancelled subscription will not be billed again.
	if status == model.SubscriptionStatusCancelled {
		updates["auto_renew"] = false
	}
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("pixup_subscription_id = ?", pixupSubID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) ActivatePremium(ctx context.Context, userID uuid.UUID, endDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan":       model.PlanPremiumMonthly,
			"status":     model.SubscriptionStatusActive,
			"start_date": time.Now(),
			"end_date":   endDate,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to activate premium: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) ExtendPremium(ctx context.Context, subID uuid.UUID, endDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subID).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionStatusActive,
			"end_date":   endDate,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to extend premium: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) IncrementCredits(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"readings_left": gorm.Expr("readings_left + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment credits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

// ConsumeCredit spends one reading credit. The balance check and the
// decrement are one statement, so two racing requests cannot both spend
// the last credit.
func (r *subscriptionRepository) ConsumeCredit(ctx context.Context, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ? AND readings_left > 0", userID).
		Updates(map[string]interface{}{
			"readings_left": gorm.Expr("readings_left - 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume credit: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
