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

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByPixupID(ctx context.Context, pixupID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("pixup_id = ?", pixupID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by gateway id: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]model.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, pixupID string, paidAt time.Time) (bool, error) {
	return r.transition(ctx, pixupID, map[string]interface{}{
		"status":     model.PaymentStatusCompleted,
		"paid_at":    paidAt,
		"updated_at": time.Now(),
	})
}

func (r *paymentRepository) MarkFailed(ctx context.Context, pixupID string) (bool, error) {
	return r.transition(ctx, pixupID, map[string]interface{}{
		"status":     model.PaymentStatusFailed,
		"updated_at": time.Now(),
	})
}

func (r *paymentRepository) MarkCancelled(ctx context.Context, pixupID string) (bool, error) {
	return r.transition(ctx, pixupID, map[string]interface{}{
		"status":     model.PaymentStatusCancelled,
		"updated_at": time.Now(),
	})
}

// transition applies a status change guarded on the row still being
// PENDING. Zero rows affected means the payment is terminal (or the
// gateway id is unknown) and the caller must not apply side effects.
func (r *paymentRepository) transition(ctx context.Context, pixupID string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("pixup_id = ? AND status = ?", pixupID, model.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) ExpireIfOverdue(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			id, model.PaymentStatusPending, now).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusFailed,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to expire payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) GetCompletedForReading(ctx context.Context, userID, readingID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reading_id = ? AND status = ?",
			userID, readingID, model.PaymentStatusCompleted).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment for reading: %w", err)
	}
	return &payment, nil
}
