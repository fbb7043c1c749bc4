package repository

import (
	"context"
	"time"

	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/google/uuid"
)

// SubscriptionRepository provides access to account subscription state.
//
// The credit mutations are single conditional statements; callers decide
// what a zero-row result means (usually: someone else got there first).
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
	GetByPixupSubscriptionID(ctx context.Context, pixupSubID string) (*model.Subscription, error)
	Update(ctx context.Context, sub *model.Subscription) error

	// UpdateStatusByPixupSubscriptionID sets the status for the account
	// owning the given gateway subscription id.
	UpdateStatusByPixupSubscriptionID(ctx context.Context, pixupSubID string, status model.SubscriptionStatus) error

	// ActivatePremium flips the account to an active PREMIUM_MONTHLY plan
	// running until endDate.
	ActivatePremium(ctx context.Context, userID uuid.UUID, endDate time.Time) error

	// ExtendPremium moves the end date forward and reactivates the plan
	// after a successful renewal.
	ExtendPremium(ctx context.Context, subID uuid.UUID, endDate time.Time) error

	// IncrementCredits grants one single-use reading credit.
	IncrementCredits(ctx context.Context, userID uuid.UUID) error

	// ConsumeCredit atomically decrements readings_left when positive.
	// Returns false when no credit was available to spend.
	ConsumeCredit(ctx context.Context, userID uuid.UUID) (bool, error)
}
