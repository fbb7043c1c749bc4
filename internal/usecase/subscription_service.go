package usecase

import (
	"context"
	"fmt"

	"github.com/astrotarothub/backend/internal/domain/gateway"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriptionService exposes account-facing subscription operations.
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	gateway          gateway.PixGateway
	logger           *zap.Logger
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	gw gateway.PixGateway,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		gateway:          gw,
		logger:           logger,
	}
}

// GetCurrent returns the account's subscription row.
func (s *SubscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	return s.subscriptionRepo.GetByUserID(ctx, userID)
}

// Cancel stops renewals at the gateway and marks the local row
// cancelled. Already-paid time remains usable until the end date.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.PixupSubscriptionID != nil {
		if err := s.gateway.CancelSubscription(ctx, *sub.PixupSubscriptionID); err != nil {
			return nil, fmt.Errorf("gateway cancel failed: %w", err)
		}
	}

	sub.Status = model.SubscriptionStatusCancelled
	sub.AutoRenew = false
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled",
		zap.String("user_id", userID.String()))

	return sub, nil
}
