package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterRepo "github.com/astrotarothub/backend/internal/adapter/repository"
	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/gateway"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/infrastructure/gateway/fixture"
	"github.com/astrotarothub/backend/internal/testutil"
)

func setupOrderService(t *testing.T, gw gateway.PixGateway) (*OrderService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	logger := zap.NewNop()
	paymentRepo := adapterRepo.NewPaymentRepository(db, logger)
	subscriptionRepo := adapterRepo.NewSubscriptionRepository(db, logger)
	events := NewWebhookService(paymentRepo, subscriptionRepo,
		adapterRepo.NewWebhookEventRepository(db, logger), logger)
	service := NewOrderService(
		paymentRepo,
		subscriptionRepo,
		adapterRepo.NewUserRepository(db, logger),
		gw,
		events,
		"https://astrotarothub.example.com",
		logger,
	)
	return service, db
}

func TestOrderService_CreateOrder_SingleReading(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)

	result, err := service.CreateOrder(ctx, user.ID, &CreateOrderRequest{
		Type:         model.PaymentTypeSingleReading,
		CustomerName: "Maria Silva",
	})
	require.NoError(t, err)

	payment := result.Payment
	assert.Equal(t, SingleReadingPriceCents, payment.AmountCents)
	assert.Equal(t, "BRL", payment.Currency)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	assert.Equal(t, model.PaymentTypeSingleReading, payment.Type)
	require.NotNil(t, payment.PixupID)
	assert.NotEmpty(t, payment.QRCode)
	assert.NotEmpty(t, payment.QRString)
	require.NotNil(t, payment.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *payment.ExpiresAt, time.Minute)
	assert.Nil(t, result.NextBillingDate)

	// The ledger row exists and is queryable by gateway id.
	var stored model.Payment
	require.NoError(t, db.Where("pixup_id = ?", *payment.PixupID).First(&stored).Error)
	assert.Equal(t, payment.ID, stored.ID)
}

func TestOrderService_CreateOrder_SingleReading_WithReadingID(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	reading := testutil.TestReading(t, db, user.ID)

	result, err := service.CreateOrder(ctx, user.ID, &CreateOrderRequest{
		Type:      model.PaymentTypeSingleReading,
		ReadingID: &reading.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Payment.ReadingID)
	assert.Equal(t, reading.ID, *result.Payment.ReadingID)
}

func TestOrderService_CreateOrder_Subscription(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)

	result, err := service.CreateOrder(ctx, user.ID, &CreateOrderRequest{
		Type:         model.PaymentTypeSubscription,
		CustomerName: "João Santos",
	})
	require.NoError(t, err)

	payment := result.Payment
	assert.Equal(t, SubscriptionPriceCents, payment.AmountCents)
	assert.Equal(t, model.PaymentTypeSubscription, payment.Type)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	require.NotNil(t, result.NextBillingDate)

	// The local subscription mirrors the gateway one but stays pending
	// until the first payment confirms.
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.PlanPremiumMonthly, sub.Plan)
	assert.Equal(t, model.SubscriptionStatusPending, sub.Status)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.PixupSubscriptionID)
	require.NotNil(t, sub.PixupCustomerID)
}

func TestOrderService_CreateOrder_UnknownType(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)

	_, err := service.CreateOrder(context.Background(), user.ID, &CreateOrderRequest{
		Type: model.PaymentType("GIFT_CARD"),
	})
	assert.Error(t, err)
}

func TestOrderService_CreateOrder_UnknownUser(t *testing.T) {
	service, _ := setupOrderService(t, fixture.NewGateway(zap.NewNop()))

	_, err := service.CreateOrder(context.Background(), uuid.New(), &CreateOrderRequest{
		Type: model.PaymentTypeSingleReading,
	})
	assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)
}

func TestOrderService_CreateOrder_GatewayFailureWritesNothing(t *testing.T) {
	gw := new(mockPixGateway)
	gw.On("CreatePixPayment", mock.Anything, mock.Anything).
		Return(nil, &gateway.GatewayError{Code: "UNAVAILABLE", Message: "gateway down"})

	service, db := setupOrderService(t, gw)

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)

	_, err := service.CreateOrder(context.Background(), user.ID, &CreateOrderRequest{
		Type: model.PaymentTypeSingleReading,
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	gw.AssertExpectations(t)
}

func TestOrderService_CreateOrder_SubscriptionGatewayFailure(t *testing.T) {
	gw := new(mockPixGateway)
	gw.On("CreateSubscription", mock.Anything, mock.Anything).
		Return(nil, &gateway.GatewayError{Code: "UNAVAILABLE", Message: "gateway down"})

	service, db := setupOrderService(t, gw)

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)

	_, err := service.CreateOrder(context.Background(), user.ID, &CreateOrderRequest{
		Type: model.PaymentTypeSubscription,
	})
	require.Error(t, err)

	// The local subscription must still be the untouched FREE row.
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.PlanFree, sub.Plan)
	assert.Nil(t, sub.PixupSubscriptionID)
}

func TestOrderService_GetPayment_OwnershipEnforced(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, owner.ID)

	got, err := service.GetPayment(ctx, owner.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)

	_, err = service.GetPayment(ctx, stranger.ID, payment.ID)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestOrderService_GetPayment_ExpiresOnRead(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	overdue := time.Now().Add(-time.Hour)
	payment := testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		p.ExpiresAt = &overdue
	})

	got, err := service.GetPayment(ctx, user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, got.Status)

	// The expiry is persisted, not just reported.
	var stored model.Payment
	require.NoError(t, db.Where("id = ?", payment.ID).First(&stored).Error)
	assert.Equal(t, model.PaymentStatusFailed, stored.Status)
}

func TestOrderService_RefreshPayment_AppliesPaid(t *testing.T) {
	gw := new(mockPixGateway)
	service, db := setupOrderService(t, gw)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	payment := testutil.TestPayment(t, db, user.ID)

	gw.On("GetPaymentStatus", mock.Anything, *payment.PixupID).
		Return(&gateway.PixPayment{ID: *payment.PixupID, Status: "PAID"}, nil)

	got, err := service.RefreshPayment(ctx, user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)

	// The polled result flows through the webhook pipeline, so the
	// credit grant comes with it.
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, 1, sub.ReadingsLeft)

	// The recovered payment occupies the event ledger slot; a late
	// gateway delivery for the same payment becomes a no-op replay.
	var events int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).
		Where("event_key = ?", model.EventKey(EventPaymentPaid, *payment.PixupID)).
		Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestOrderService_RefreshPayment_GatewayErrorDegradesToRead(t *testing.T) {
	gw := new(mockPixGateway)
	service, db := setupOrderService(t, gw)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	payment := testutil.TestPayment(t, db, user.ID)

	gw.On("GetPaymentStatus", mock.Anything, *payment.PixupID).
		Return(nil, &gateway.GatewayError{Code: "HTTP_503", Message: "unavailable"})

	got, err := service.RefreshPayment(ctx, user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.Status)
}

func TestOrderService_RefreshPayment_StillPending(t *testing.T) {
	service, db := setupOrderService(t, fixture.NewGateway(zap.NewNop()))
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	payment := testutil.TestPayment(t, db, user.ID)

	// The fixture gateway reports pending: nothing changes, nothing is
	// recorded in the event ledger.
	got, err := service.RefreshPayment(ctx, user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.Status)

	var events int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&events).Error)
	assert.Equal(t, int64(0), events)
}

func TestOrderService_RefreshPayment_TerminalSkipsGateway(t *testing.T) {
	gw := new(mockPixGateway)
	service, db := setupOrderService(t, gw)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		p.Status = model.PaymentStatusCompleted
	})

	got, err := service.RefreshPayment(ctx, user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)
	gw.AssertNotCalled(t, "GetPaymentStatus", mock.Anything, mock.Anything)
}

func TestBillingDay_Clamped(t *testing.T) {
	assert.Equal(t, 15, billingDay(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, billingDay(time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, billingDay(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
}
