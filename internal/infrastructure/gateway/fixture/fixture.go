package fixture

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/astrotarothub/backend/internal/domain/gateway"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Gateway is the canned-data PixGateway used in development and tests
// when no PixUp credentials are configured. It never performs network
// I/O; QR payloads are generated locally so the client UI still renders
// a scannable code.
type Gateway struct {
	logger  *zap.Logger
	counter atomic.Int64
	now     func() time.Time
}

func NewGateway(logger *zap.Logger) *Gateway {
	return &Gateway{logger: logger, now: time.Now}
}

func (g *Gateway) Name() string { return "fixture" }

func (g *Gateway) CreatePixPayment(ctx context.Context, req *gateway.CreatePixPaymentRequest) (*gateway.PixPayment, error) {
	id := fmt.Sprintf("fix_pay_%06d", g.counter.Add(1))

	expires := req.ExpiresInMinutes
	if expires <= 0 {
		expires = 30
	}

	qrString := pixPayload(id, req.AmountCents)
	png, err := qrcode.Encode(qrString, qrcode.Medium, 256)
	if err != nil {
		return nil, &gateway.GatewayError{
			Code:    "QR_ERROR",
			Message: "failed to render QR code",
			Details: err.Error(),
		}
	}

	now := g.now()
	g.logger.Info("fixture gateway minted pix payment",
		zap.String("payment_id", id),
		zap.Int("amount_cents", req.AmountCents))

	return &gateway.PixPayment{
		ID:           id,
		Status:       "pending",
		AmountCents:  req.AmountCents,
		QRCode:       base64.StdEncoding.EncodeToString(png),
		QRCodeString: qrString,
		ExpiresAt:    now.Add(time.Duration(expires) * time.Minute),
		CreatedAt:    now,
	}, nil
}

func (g *Gateway) CreateSubscription(ctx context.Context, req *gateway.CreateSubscriptionRequest) (*gateway.Subscription, error) {
	n := g.counter.Add(1)
	now := g.now()

	g.logger.Info("fixture gateway created subscription",
		zap.String("customer_email", req.Customer.Email),
		zap.Int("billing_day", req.BillingDay))

	return &gateway.Subscription{
		ID:              fmt.Sprintf("fix_sub_%06d", n),
		CustomerID:      fmt.Sprintf("fix_cus_%06d", n),
		Status:          "active",
		AmountCents:     req.AmountCents,
		NextBillingDate: now.AddDate(0, 1, 0),
		CreatedAt:       now,
	}, nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.logger.Info("fixture gateway cancelled subscription",
		zap.String("subscription_id", subscriptionID))
	return nil
}

func (g *Gateway) GetPaymentStatus(ctx context.Context, paymentID string) (*gateway.PixPayment, error) {
	now := g.now()
	return &gateway.PixPayment{
		ID:          paymentID,
		Status:      "pending",
		QRCode:      "",
		ExpiresAt:   now.Add(30 * time.Minute),
		CreatedAt:   now,
		AmountCents: 0,
	}, nil
}

func (g *Gateway) Ping(ctx context.Context) error { return nil }

// pixPayload builds a stand-in for the PIX copy-and-paste string. Real
// payloads are EMV-formatted; the fixture only needs something stable
// and scannable.
func pixPayload(id string, amountCents int) string {
	return fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s52040000530398654%02d.%02d5802BR6304",
		id, amountCents/100, amountCents%100)
}
