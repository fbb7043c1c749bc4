package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/gateway"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Prices are fixed server-side; the client only names the product kind.
const (
	SingleReadingPriceCents = 990
	SubscriptionPriceCents  = 2990

	singleReadingExpiryMinutes = 30
	subscriptionExpiryMinutes  = 60
)

// CreateOrderRequest is the validated intake payload.
type CreateOrderRequest struct {
	Type             model.PaymentType
	CustomerName     string
	CustomerDocument string
	ReadingID        *uuid.UUID
}

// OrderResult carries the PENDING ledger row plus, for subscriptions,
// the gateway's first billing date.
type OrderResult struct {
	Payment         *model.Payment
	NextBillingDate *time.Time
}

// OrderService performs order intake: it asks the gateway to mint a
// payment and persists the matching ledger row.
type OrderService struct {
	paymentRepo      repository.PaymentRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	gateway          gateway.PixGateway
	events           *WebhookService
	publicURL        string
	logger           *zap.Logger
	now              func() time.Time
}

// NewOrderService creates a new order service instance
func NewOrderService(
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	gw gateway.PixGateway,
	events *WebhookService,
	publicURL string,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		gateway:          gw,
		events:           events,
		publicURL:        publicURL,
		logger:           logger,
		now:              time.Now,
	}
}

// CreateOrder validates the product kind, mints the gateway payment and
// records the PENDING ledger row. A gateway failure aborts the whole
// operation before anything is written locally.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*OrderResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customer := gateway.Customer{
		Name:     req.CustomerName,
		Email:    user.Email,
		Document: req.CustomerDocument,
	}
	if customer.Name == "" {
		customer.Name = user.Name
	}
	if customer.Name == "" {
		customer.Name = user.Email
	}

	webhookURL := s.publicURL + "/webhook/pixup"

	switch req.Type {
	case model.PaymentTypeSingleReading:
		return s.createSingleReadingOrder(ctx, user, customer, webhookURL, req.ReadingID)
	case model.PaymentTypeSubscription:
		return s.createSubscriptionOrder(ctx, user, customer, webhookURL)
	default:
		return nil, fmt.Errorf("unknown product type: %s", req.Type)
	}
}

func (s *OrderService) createSingleReadingOrder(ctx context.Context, user *model.User, customer gateway.Customer, webhookURL string, readingID *uuid.UUID) (*OrderResult, error) {
	metadata := map[string]interface{}{
		"userId": user.ID.String(),
		"type":   string(model.PaymentTypeSingleReading),
	}
	if readingID != nil {
		metadata["readingId"] = readingID.String()
	}

	pixPayment, err := s.gateway.CreatePixPayment(ctx, &gateway.CreatePixPaymentRequest{
		AmountCents:      SingleReadingPriceCents,
		Description:      "AstroTarot Hub - Tiragem Única do Tarot Egípcio",
		Customer:         customer,
		ExpiresInMinutes: singleReadingExpiryMinutes,
		WebhookURL:       webhookURL,
		Metadata:         metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway payment failed: %w", err)
	}

	payment, err := s.recordPendingPayment(ctx, user.ID, model.PaymentTypeSingleReading, SingleReadingPriceCents, pixPayment, readingID)
	if err != nil {
		return nil, err
	}

	return &OrderResult{Payment: payment}, nil
}

func (s *OrderService) createSubscriptionOrder(ctx context.Context, user *model.User, customer gateway.Customer, webhookURL string) (*OrderResult, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	gwSub, err := s.gateway.CreateSubscription(ctx, &gateway.CreateSubscriptionRequest{
		AmountCents: SubscriptionPriceCents,
		Description: "AstroTarot Hub - Assinatura Premium Mensal",
		Customer:    customer,
		BillingDay:  billingDay(s.now()),
		WebhookURL:  webhookURL,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway subscription failed: %w", err)
	}

	// The plan stays pending until the first payment.paid webhook.
	sub.Plan = model.PlanPremiumMonthly
	sub.Status = model.SubscriptionStatusPending
	sub.PixupCustomerID = &gwSub.CustomerID
	sub.PixupSubscriptionID = &gwSub.ID
	sub.AutoRenew = true
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	firstPayment, err := s.gateway.CreatePixPayment(ctx, &gateway.CreatePixPaymentRequest{
		AmountCents:      SubscriptionPriceCents,
		Description:      "AstroTarot Hub - Primeiro pagamento Premium",
		Customer:         customer,
		ExpiresInMinutes: subscriptionExpiryMinutes,
		WebhookURL:       webhookURL,
		Metadata: map[string]interface{}{
			"userId":         user.ID.String(),
			"type":           string(model.PaymentTypeSubscription),
			"subscriptionId": gwSub.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gateway payment failed: %w", err)
	}

	payment, err := s.recordPendingPayment(ctx, user.ID, model.PaymentTypeSubscription, SubscriptionPriceCents, firstPayment, nil)
	if err != nil {
		return nil, err
	}

	return &OrderResult{Payment: payment, NextBillingDate: &gwSub.NextBillingDate}, nil
}

func (s *OrderService) recordPendingPayment(ctx context.Context, userID uuid.UUID, paymentType model.PaymentType, amountCents int, pixPayment *gateway.PixPayment, readingID *uuid.UUID) (*model.Payment, error) {
	expiresAt := pixPayment.ExpiresAt
	payment := &model.Payment{
		UserID:      userID,
		Amount:      decimal.NewFromInt(int64(amountCents)).Div(decimal.NewFromInt(100)),
		AmountCents: amountCents,
		Currency:    "BRL",
		Status:      model.PaymentStatusPending,
		Type:        paymentType,
		PixupID:     &pixPayment.ID,
		QRCode:      pixPayment.QRCode,
		QRString:    pixPayment.QRCodeString,
		ReadingID:   readingID,
		ExpiresAt:   &expiresAt,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// Known inconsistency window: the gateway payment exists but the
		// ledger insert failed. The expiry webhook will never match a row
		// and the charge dies with the QR code.
		s.logger.Error("ledger insert failed after gateway call",
			zap.String("pixup_id", pixPayment.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("pixup_id", pixPayment.ID),
		zap.String("type", string(paymentType)),
		zap.Int("amount_cents", amountCents))

	return payment, nil
}

// GetPayment returns a payment owned by the account, first applying
// check-on-read expiry so an overdue PENDING row reads back as FAILED
// even when the gateway's expiry webhook was lost.
func (s *OrderService) GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domainErrors.ErrPaymentNotFound
	}

	if payment.Status == model.PaymentStatusPending {
		expired, err := s.paymentRepo.ExpireIfOverdue(ctx, payment.ID, s.now())
		if err != nil {
			return nil, err
		}
		if expired {
			s.logger.Info("payment expired on read",
				zap.String("payment_id", payment.ID.String()))
			payment.Status = model.PaymentStatusFailed
		}
	}

	return payment, nil
}

// RefreshPayment polls the gateway for the current state of a PENDING
// payment and applies the answer through the same pipeline the webhook
// uses, so a lost delivery can be recovered on demand. The event ledger
// keeps the poll and a late-arriving webhook from double-applying.
func (s *OrderService) RefreshPayment(ctx context.Context, userID, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.GetPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentStatusPending || payment.PixupID == nil {
		return payment, nil
	}

	remote, err := s.gateway.GetPaymentStatus(ctx, *payment.PixupID)
	if err != nil {
		// Best effort: the refresh degrades to a plain read.
		s.logger.Warn("gateway status lookup failed",
			zap.String("pixup_id", *payment.PixupID),
			zap.Error(err))
		return payment, nil
	}

	event := eventForGatewayStatus(remote.Status)
	if event == "" {
		return payment, nil
	}
	if err := s.events.ProcessEvent(ctx, &WebhookPayload{
		Event: event,
		Data:  WebhookData{ID: *payment.PixupID},
	}); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByID(ctx, payment.ID)
}

// eventForGatewayStatus maps a polled gateway status onto the webhook
// event carrying the same meaning. Unrecognized statuses map to no event.
func eventForGatewayStatus(status string) string {
	switch strings.ToLower(status) {
	case "paid", "completed", "approved":
		return EventPaymentPaid
	case "expired":
		return EventPaymentExpired
	case "cancelled", "canceled":
		return EventPaymentCancelled
	default:
		return ""
	}
}

// ListPayments returns the account's payment history, newest first.
func (s *OrderService) ListPayments(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	return s.paymentRepo.ListByUserID(ctx, userID, 50)
}

// billingDay clamps today's day-of-month into the gateway's 1-28 window.
func billingDay(now time.Time) int {
	day := now.Day()
	if day > 28 {
		return 28
	}
	return day
}
