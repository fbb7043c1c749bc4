package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/astrotarothub/backend/internal/domain/gateway"
)

// mockPixGateway stands in for the gateway when a test needs to force
// failures or inspect call arguments.
type mockPixGateway struct {
	mock.Mock
}

func (m *mockPixGateway) CreatePixPayment(ctx context.Context, req *gateway.CreatePixPaymentRequest) (*gateway.PixPayment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PixPayment), args.Error(1)
}

func (m *mockPixGateway) CreateSubscription(ctx context.Context, req *gateway.CreateSubscriptionRequest) (*gateway.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Subscription), args.Error(1)
}

func (m *mockPixGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *mockPixGateway) GetPaymentStatus(ctx context.Context, paymentID string) (*gateway.PixPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PixPayment), args.Error(1)
}

func (m *mockPixGateway) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockPixGateway) Name() string { return "mock" }
