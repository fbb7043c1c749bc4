package usecase

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway event kinds.
const (
	EventPaymentPaid           = "payment.paid"
	EventPaymentExpired        = "payment.expired"
	EventPaymentCancelled      = "payment.cancelled"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionFailed    = "subscription.failed"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// WebhookPayload is the parsed body of a gateway callback.
type WebhookPayload struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
	Raw   model.JSONB `json:"-"`
}

// WebhookData carries the identifiers the six event kinds use.
type WebhookData struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscriptionId"`
	PaymentID      string `json:"paymentId"`
}

// WebhookService applies gateway events to the ledger and the account.
//
// Every effect is at-most-once: deliveries carrying a per-delivery
// identifier are recorded in a unique processed-event ledger first, and
// status transitions are conditional updates whose affected-row count
// gates the account mutation. Events without such an identifier are
// idempotent by value and applied directly. Missing records are logged
// and swallowed so the gateway is always acknowledged.
type WebhookService struct {
	paymentRepo      repository.PaymentRepository
	subscriptionRepo repository.SubscriptionRepository
	eventRepo        repository.WebhookEventRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewWebhookService creates a new webhook service instance
func NewWebhookService(
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	eventRepo repository.WebhookEventRepository,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// ProcessEvent dispatches one gateway delivery. It returns an error only
// for infrastructure failures; unknown events, unknown gateway ids and
// replayed deliveries resolve to nil so the HTTP layer acknowledges them.
func (s *WebhookService) ProcessEvent(ctx context.Context, payload *WebhookPayload) error {
	switch payload.Event {
	case EventPaymentPaid, EventPaymentExpired, EventPaymentCancelled,
		EventSubscriptionRenewed:
		fresh, err := s.recordDelivery(ctx, payload)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
	case EventSubscriptionFailed, EventSubscriptionCancelled:
		// These carry no per-delivery identifier, and a subscription can
		// legitimately fail, recover and fail again. The status write is
		// idempotent by value, so they bypass the processed-event ledger.
	default:
		s.logger.Info("ignoring unhandled webhook event",
			zap.String("event", payload.Event))
		return nil
	}

	switch payload.Event {
	case EventPaymentPaid:
		return s.handlePaymentPaid(ctx, payload.Data.ID)
	case EventPaymentExpired:
		return s.handlePaymentTerminal(ctx, payload.Data.ID, model.PaymentStatusFailed)
	case EventPaymentCancelled:
		return s.handlePaymentTerminal(ctx, payload.Data.ID, model.PaymentStatusCancelled)
	case EventSubscriptionRenewed:
		return s.handleSubscriptionRenewed(ctx, payload.Data.SubscriptionID, payload.Data.PaymentID)
	case EventSubscriptionFailed:
		return s.handleSubscriptionStatus(ctx, payload.Data.SubscriptionID, model.SubscriptionStatusSuspended)
	case EventSubscriptionCancelled:
		return s.handleSubscriptionStatus(ctx, payload.Data.SubscriptionID, model.SubscriptionStatusCancelled)
	}
	return nil
}

// dedupeID returns the delivery-unique identifier for the ledger key.
// Renewals arrive with a fresh gateway payment id each billing cycle, so
// keying them on the subscription id would make month two read as a
// replay of month one.
func (p *WebhookPayload) dedupeID() string {
	if p.Event == EventSubscriptionRenewed && p.Data.PaymentID != "" {
		return p.Data.PaymentID
	}
	if p.Data.ID != "" {
		return p.Data.ID
	}
	return p.Data.SubscriptionID
}

// recordDelivery inserts the delivery into the processed-event ledger.
// It reports false for a replay, which resolves to an acknowledged no-op.
func (s *WebhookService) recordDelivery(ctx context.Context, payload *WebhookPayload) (bool, error) {
	gatewayID := payload.dedupeID()
	err := s.eventRepo.Record(ctx, &model.WebhookEvent{
		EventKey:  model.EventKey(payload.Event, gatewayID),
		EventType: payload.Event,
		GatewayID: gatewayID,
		Payload:   payload.Raw,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrDuplicateEvent) {
			s.logger.Info("webhook event already processed, skipping",
				zap.String("event", payload.Event),
				zap.String("gateway_id", gatewayID))
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *WebhookService) handlePaymentPaid(ctx context.Context, pixupID string) error {
	payment, err := s.paymentRepo.GetByPixupID(ctx, pixupID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			s.logger.Warn("payment.paid for unknown payment",
				zap.String("pixup_id", pixupID))
			return nil
		}
		return err
	}

	moved, err := s.paymentRepo.MarkCompleted(ctx, pixupID, s.now())
	if err != nil {
		return err
	}
	if !moved {
		// Already terminal; the account effect was applied by whichever
		// call won the transition.
		s.logger.Info("payment already resolved, no effect",
			zap.String("pixup_id", pixupID),
			zap.String("status", string(payment.Status)))
		return nil
	}

	switch payment.Type {
	case model.PaymentTypeSingleReading:
		if err := s.subscriptionRepo.IncrementCredits(ctx, payment.UserID); err != nil {
			return err
		}
		s.logger.Info("reading credit granted",
			zap.String("user_id", payment.UserID.String()),
			zap.String("pixup_id", pixupID))
	case model.PaymentTypeSubscription:
		endDate := s.now().AddDate(0, 1, 0)
		if err := s.subscriptionRepo.ActivatePremium(ctx, payment.UserID, endDate); err != nil {
			return err
		}
		s.logger.Info("premium subscription activated",
			zap.String("user_id", payment.UserID.String()),
			zap.Time("end_date", endDate))
	}

	return nil
}

func (s *WebhookService) handlePaymentTerminal(ctx context.Context, pixupID string, status model.PaymentStatus) error {
	var moved bool
	var err error
	if status == model.PaymentStatusCancelled {
		moved, err = s.paymentRepo.MarkCancelled(ctx, pixupID)
	} else {
		moved, err = s.paymentRepo.MarkFailed(ctx, pixupID)
	}
	if err != nil {
		return err
	}
	if !moved {
		s.logger.Info("payment not transitioned",
			zap.String("pixup_id", pixupID),
			zap.String("target_status", string(status)))
	}
	return nil
}

func (s *WebhookService) handleSubscriptionRenewed(ctx context.Context, pixupSubID, renewalPaymentID string) error {
	sub, err := s.subscriptionRepo.GetByPixupSubscriptionID(ctx, pixupSubID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			s.logger.Warn("subscription.renewed for unknown subscription",
				zap.String("pixup_subscription_id", pixupSubID))
			return nil
		}
		return err
	}

	now := s.now()
	paidAt := now
	renewal := &model.Payment{
		UserID:      sub.UserID,
		Amount:      decimal.NewFromInt(SubscriptionPriceCents).Div(decimal.NewFromInt(100)),
		AmountCents: SubscriptionPriceCents,
		Currency:    "BRL",
		Status:      model.PaymentStatusCompleted,
		Type:        model.PaymentTypeSubscription,
		PixupID:     &renewalPaymentID,
		PaidAt:      &paidAt,
	}
	if err := s.paymentRepo.Create(ctx, renewal); err != nil {
		// The unique gateway payment id makes a replayed renewal fail
		// here; the event ledger should have caught it already.
		s.logger.Warn("renewal payment insert failed",
			zap.String("pixup_id", renewalPaymentID),
			zap.Error(err))
		return nil
	}

	// Extend from the current paid-through date when it is still in the
	// future, so an early renewal does not shorten the period.
	base := now
	if sub.EndDate != nil && sub.EndDate.After(now) {
		base = *sub.EndDate
	}
	endDate := base.AddDate(0, 1, 0)

	if err := s.subscriptionRepo.ExtendPremium(ctx, sub.ID, endDate); err != nil {
		return err
	}

	s.logger.Info("subscription renewed",
		zap.String("user_id", sub.UserID.String()),
		zap.Time("end_date", endDate))
	return nil
}

func (s *WebhookService) handleSubscriptionStatus(ctx context.Context, pixupSubID string, status model.SubscriptionStatus) error {
	err := s.subscriptionRepo.UpdateStatusByPixupSubscriptionID(ctx, pixupSubID, status)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			s.logger.Warn("subscription event for unknown subscription",
				zap.String("pixup_subscription_id", pixupSubID),
				zap.String("status", string(status)))
			return nil
		}
		return err
	}

	s.logger.Info("subscription status updated",
		zap.String("pixup_subscription_id", pixupSubID),
		zap.String("status", string(status)))
	return nil
}
