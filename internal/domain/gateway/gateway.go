package gateway

import (
	"context"
	"fmt"
	"time"
)

// PixGateway defines the contract with the PIX payment processor.
// Two implementations exist: the real PixUp HTTP client and a fixture
// client returning canned data, selected once at startup.
type PixGateway interface {
	// CreatePixPayment mints a one-off PIX charge and returns the QR
	// payload the customer pays out-of-band.
	CreatePixPayment(ctx context.Context, req *CreatePixPaymentRequest) (*PixPayment, error)

	// CreateSubscription registers a monthly recurring charge.
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error)

	// CancelSubscription stops future renewals for a gateway subscription.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// GetPaymentStatus fetches the gateway-side state of a payment.
	GetPaymentStatus(ctx context.Context, paymentID string) (*PixPayment, error)

	// Ping checks the gateway is reachable and the credentials are valid.
	Ping(ctx context.Context) error

	// Name returns the implementation name for logging.
	Name() string
}

// Customer identifies the payer to the gateway.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"` // CPF/CNPJ
}

// CreatePixPaymentRequest describes a one-off PIX charge.
type CreatePixPaymentRequest struct {
	AmountCents      int                    `json:"amount"`
	Description      string                 `json:"description"`
	Customer         Customer               `json:"customer"`
	ExpiresInMinutes int                    `json:"expiresIn"`
	WebhookURL       string                 `json:"webhookUrl,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// PixPayment is the gateway's view of a payment.
type PixPayment struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	AmountCents  int       `json:"amount"`
	QRCode       string    `json:"qrCode"`       // base64 PNG
	QRCodeString string    `json:"qrCodeString"` // PIX copy-and-paste payload
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateSubscriptionRequest describes a monthly recurring charge.
type CreateSubscriptionRequest struct {
	AmountCents int      `json:"amount"`
	Description string   `json:"description"`
	Customer    Customer `json:"customer"`
	BillingDay  int      `json:"billingDay"` // 1-28
	WebhookURL  string   `json:"webhookUrl,omitempty"`
}

// Subscription is the gateway's view of a recurring charge.
type Subscription struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	Status          string    `json:"status"`
	AmountCents     int       `json:"amount"`
	NextBillingDate time.Time `json:"nextBillingDate"`
	CreatedAt       time.Time `json:"createdAt"`
}

// GatewayError carries the gateway's error code and message.
type GatewayError struct {
	Code    string
	Message string
	Details string
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("gateway error %s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}
