package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astrotarothub/backend/internal/domain/model"
)

// TestUser inserts a user with sensible defaults, applying opts before
// the insert.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$10$test.hash.not.a.real.one",
		Name:         "Test User",
	}
	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// TestSubscription inserts a subscription for the given user.
func TestSubscription(t *testing.T, db *gorm.DB, userID uuid.UUID, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Plan:      model.PlanFree,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
	}
	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return sub
}

// TestPayment inserts a payment for the given user, defaulting to a
// pending single-reading charge.
func TestPayment(t *testing.T, db *gorm.DB, userID uuid.UUID, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	pixupID := "pay_" + uuid.NewString()
	payment := &model.Payment{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      decimal.New(990, -2),
		AmountCents: 990,
		Currency:    "BRL",
		Status:      model.PaymentStatusPending,
		Type:        model.PaymentTypeSingleReading,
		PixupID:     &pixupID,
	}
	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

// TestReading inserts a tarot reading for the given user.
func TestReading(t *testing.T, db *gorm.DB, userID uuid.UUID, opts ...func(*model.TarotReading)) *model.TarotReading {
	t.Helper()

	reading := &model.TarotReading{
		ID:         uuid.New(),
		UserID:     userID,
		SpreadType: "three_card",
		Cards: model.JSONB{
			"cards": []interface{}{
				map[string]interface{}{
					"cardName":     "The Fool",
					"positionName": "Past",
					"upright":      true,
				},
			},
		},
	}
	for _, opt := range opts {
		opt(reading)
	}

	if err := db.Create(reading).Error; err != nil {
		t.Fatalf("Failed to create test reading: %v", err)
	}
	return reading
}
