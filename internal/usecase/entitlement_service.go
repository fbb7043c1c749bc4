package usecase

import (
	"context"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entitlement is the derived premium-access projection for an account.
type Entitlement struct {
	PremiumEntitled bool                     `json:"premium_entitled"`
	Unlimited       bool                     `json:"unlimited"`
	Plan            model.Plan               `json:"plan"`
	Status          model.SubscriptionStatus `json:"status"`
	EndDate         *time.Time               `json:"end_date,omitempty"`
	ReadingsLeft    int                      `json:"readings_left"`
}

// IsUnlimited reports whether the account holds an active monthly plan
// that has not lapsed.
func IsUnlimited(sub *model.Subscription, now time.Time) bool {
	return sub.Plan == model.PlanPremiumMonthly &&
		sub.Status == model.SubscriptionStatusActive &&
		sub.EndDate != nil && sub.EndDate.After(now)
}

// IsPremiumEntitled is the entitlement projection: a pure function of
// the subscription row and the clock.
func IsPremiumEntitled(sub *model.Subscription, now time.Time) bool {
	return IsUnlimited(sub, now) || sub.ReadingsLeft > 0
}

// EntitlementService computes entitlement and spends single-use credits.
type EntitlementService struct {
	subscriptionRepo repository.SubscriptionRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewEntitlementService creates a new entitlement service instance
func NewEntitlementService(subscriptionRepo repository.SubscriptionRepository, logger *zap.Logger) *EntitlementService {
	return &EntitlementService{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// GetEntitlement returns the projection for the account.
func (s *EntitlementService) GetEntitlement(ctx context.Context, userID uuid.UUID) (*Entitlement, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &Entitlement{
		PremiumEntitled: IsPremiumEntitled(sub, now),
		Unlimited:       IsUnlimited(sub, now),
		Plan:            sub.Plan,
		Status:          sub.Status,
		EndDate:         sub.EndDate,
		ReadingsLeft:    sub.ReadingsLeft,
	}, nil
}

// SpendForPremiumAction authorizes one premium action. Accounts on an
// active unlimited plan pass without any mutation; everyone else spends
// one credit through the conditional decrement.
func (s *EntitlementService) SpendForPremiumAction(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if IsUnlimited(sub, s.now()) {
		return nil
	}

	spent, err := s.subscriptionRepo.ConsumeCredit(ctx, userID)
	if err != nil {
		return err
	}
	if !spent {
		return domainErrors.NewInsufficientCreditsError(sub.ReadingsLeft)
	}

	s.logger.Info("reading credit consumed",
		zap.String("user_id", userID.String()))
	return nil
}
