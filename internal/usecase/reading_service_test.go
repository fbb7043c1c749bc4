package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterRepo "github.com/astrotarothub/backend/internal/adapter/repository"
	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/interpreter"
	"github.com/astrotarothub/backend/internal/domain/model"
	interpreterInfra "github.com/astrotarothub/backend/internal/infrastructure/interpreter"
	"github.com/astrotarothub/backend/internal/testutil"
)

func setupReadingService(t *testing.T) (*ReadingService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	logger := zap.NewNop()
	subscriptionRepo := adapterRepo.NewSubscriptionRepository(db, logger)
	entitlement := NewEntitlementService(subscriptionRepo, logger)
	service := NewReadingService(
		adapterRepo.NewReadingRepository(db, logger),
		adapterRepo.NewPaymentRepository(db, logger),
		entitlement,
		interpreterInfra.NewFixture(),
		logger,
	)
	return service, db
}

func TestReadingService_CreateAndList(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)

	reading, err := service.CreateReading(ctx, user.ID, "three_card", model.JSONB{
		"cards": []interface{}{
			map[string]interface{}{"cardName": "A Sacerdotisa", "positionName": "Presente", "upright": true},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, reading.ID)
	assert.False(t, reading.IsPremium)

	readings, err := service.ListReadings(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestReadingService_UnlockReading_SpendsCredit(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, func(s *model.Subscription) {
		s.ReadingsLeft = 1
	})
	reading := testutil.TestReading(t, db, user.ID)

	text, err := service.UnlockReading(ctx, user.ID, reading.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "The Fool")

	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, 0, sub.ReadingsLeft)

	var stored model.TarotReading
	require.NoError(t, db.Where("id = ?", reading.ID).First(&stored).Error)
	assert.True(t, stored.IsPremium)
	require.NotNil(t, stored.Interpretation)
	assert.Equal(t, text, *stored.Interpretation)
}

func TestReadingService_UnlockReading_NoCredits(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	reading := testutil.TestReading(t, db, user.ID)

	_, err := service.UnlockReading(ctx, user.ID, reading.ID)
	var insufficientErr *domainErrors.InsufficientCreditsError
	require.ErrorAs(t, err, &insufficientErr)

	// The reading stays locked.
	var stored model.TarotReading
	require.NoError(t, db.Where("id = ?", reading.ID).First(&stored).Error)
	assert.False(t, stored.IsPremium)
	assert.Nil(t, stored.Interpretation)
}

func TestReadingService_UnlockReading_AlreadyUnlocked(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	stored := "Interpretação já gerada."
	unlockedAt := time.Now()
	reading := testutil.TestReading(t, db, user.ID, func(r *model.TarotReading) {
		r.IsPremium = true
		r.Interpretation = &stored
		r.UnlockedAt = &unlockedAt
	})

	// No credits at all, but the text is already owned.
	text, err := service.UnlockReading(ctx, user.ID, reading.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, text)
}

func TestReadingService_UnlockReading_PaidForReading(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, func(s *model.Subscription) {
		s.ReadingsLeft = 2
	})
	reading := testutil.TestReading(t, db, user.ID)
	paidAt := time.Now()
	testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		p.ReadingID = &reading.ID
		p.Status = model.PaymentStatusCompleted
		p.PaidAt = &paidAt
	})

	_, err := service.UnlockReading(ctx, user.ID, reading.ID)
	require.NoError(t, err)

	// The purchase bound to this reading covers it; credits are intact.
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, 2, sub.ReadingsLeft)
}

func TestReadingService_UnlockReading_WrongOwner(t *testing.T) {
	service, db := setupReadingService(t)
	ctx := context.Background()

	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, stranger.ID, func(s *model.Subscription) {
		s.ReadingsLeft = 5
	})
	reading := testutil.TestReading(t, db, owner.ID)

	_, err := service.UnlockReading(ctx, stranger.ID, reading.ID)
	assert.ErrorIs(t, err, domainErrors.ErrReadingNotFound)
}

func TestParseCards(t *testing.T) {
	cards := parseCards(model.JSONB{
		"cards": []interface{}{
			map[string]interface{}{
				"cardName":     "O Mago",
				"positionName": "Futuro",
				"upright":      false,
				"keywords":     []interface{}{"vontade", "ação"},
			},
			"not a card",
		},
	})

	require.Len(t, cards, 1)
	assert.Equal(t, interpreter.Card{
		Name:     "O Mago",
		Position: "Futuro",
		Upright:  false,
		Keywords: []string{"vontade", "ação"},
	}, cards[0])
}

func TestParseCards_MissingList(t *testing.T) {
	assert.Nil(t, parseCards(model.JSONB{"spread": "celtic_cross"}))
}
