package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/testutil"
)

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	ctx := context.Background()

	pixupID := "pay_abc123"
	payment := &model.Payment{
		UserID:      user.ID,
		AmountCents: 990,
		Currency:    "BRL",
		Status:      model.PaymentStatusPending,
		Type:        model.PaymentTypeSingleReading,
		PixupID:     &pixupID,
	}
	require.NoError(t, repo.Create(ctx, payment))
	assert.NotEqual(t, uuid.Nil, payment.ID)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 990, got.AmountCents)
	assert.Equal(t, model.PaymentStatusPending, got.Status)

	got, err = repo.GetByPixupID(ctx, pixupID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestPaymentRepository_MarkCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	ctx := context.Background()

	paidAt := time.Now()
	applied, err := repo.MarkCompleted(ctx, *payment.PixupID, paidAt)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)
	require.NotNil(t, got.PaidAt)
}

func TestPaymentRepository_MarkCompleted_AlreadyTerminal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	ctx := context.Background()

	applied, err := repo.MarkCompleted(ctx, *payment.PixupID, time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	// A second transition on the same gateway id must be a no-op.
	applied, err = repo.MarkCompleted(ctx, *payment.PixupID, time.Now())
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.MarkFailed(ctx, *payment.PixupID)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)
}

func TestPaymentRepository_MarkFailed_UnknownGatewayID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())

	applied, err := repo.MarkFailed(context.Background(), "pay_never_seen")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPaymentRepository_ExpireIfOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	ctx := context.Background()
	now := time.Now()

	overdue := now.Add(-time.Minute)
	expired := testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		p.ExpiresAt = &overdue
	})
	future := now.Add(time.Hour)
	alive := testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		pixupID := "pay_" + uuid.NewString()
		p.PixupID = &pixupID
		p.ExpiresAt = &future
	})

	applied, err := repo.ExpireIfOverdue(ctx, expired.ID, now)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, got.Status)

	applied, err = repo.ExpireIfOverdue(ctx, alive.ID, now)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err = repo.GetByID(ctx, alive.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.Status)
}

func TestPaymentRepository_ExpireIfOverdue_NoDeadline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	applied, err := repo.ExpireIfOverdue(context.Background(), payment.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPaymentRepository_ListByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
			pixupID := "pay_" + uuid.NewString()
			p.PixupID = &pixupID
		})
	}
	testutil.TestPayment(t, db, other.ID, func(p *model.Payment) {
		pixupID := "pay_" + uuid.NewString()
		p.PixupID = &pixupID
	})

	payments, err := repo.ListByUserID(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, payments, 3)

	payments, err = repo.ListByUserID(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestPaymentRepository_GetCompletedForReading(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db, zap.NewNop())
	user := testutil.TestUser(t, db)
	reading := testutil.TestReading(t, db, user.ID)
	ctx := context.Background()

	testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		p.ReadingID = &reading.ID
	})

	// Still pending, so it must not count as a purchase.
	_, err := repo.GetCompletedForReading(ctx, user.ID, reading.ID)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)

	paid := time.Now()
	completed := testutil.TestPayment(t, db, user.ID, func(p *model.Payment) {
		pixupID := "pay_" + uuid.NewString()
		p.PixupID = &pixupID
		p.ReadingID = &reading.ID
		p.Status = model.PaymentStatusCompleted
		p.PaidAt = &paid
	})

	got, err := repo.GetCompletedForReading(ctx, user.ID, reading.ID)
	require.NoError(t, err)
	assert.Equal(t, completed.ID, got.ID)
}
