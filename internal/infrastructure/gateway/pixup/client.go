package pixup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/astrotarothub/backend/internal/domain/gateway"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.pixupbr.com/v1"

// Client is the real PixUp gateway client. PixUp publishes no Go SDK;
// this talks to its JSON API directly.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a PixUp client. baseURL may be empty to use the
// production API.
func NewClient(apiKey, apiSecret, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

func (c *Client) Name() string { return "pixup" }

// CreatePixPayment mints a one-off PIX charge.
// POST /payments/pix
func (c *Client) CreatePixPayment(ctx context.Context, req *gateway.CreatePixPaymentRequest) (*gateway.PixPayment, error) {
	if req.ExpiresInMinutes <= 0 {
		req.ExpiresInMinutes = 30
	}

	var result gateway.PixPayment
	if err := c.post(ctx, "/payments/pix", req, &result); err != nil {
		return nil, err
	}

	c.logger.Info("pix payment created",
		zap.String("payment_id", result.ID),
		zap.Int("amount_cents", result.AmountCents),
		zap.Time("expires_at", result.ExpiresAt))

	return &result, nil
}

// CreateSubscription registers a monthly recurring charge.
// POST /subscriptions
func (c *Client) CreateSubscription(ctx context.Context, req *gateway.CreateSubscriptionRequest) (*gateway.Subscription, error) {
	if req.BillingDay < 1 || req.BillingDay > 28 {
		req.BillingDay = 1
	}

	payload := struct {
		*gateway.CreateSubscriptionRequest
		Interval string `json:"interval"`
	}{req, "monthly"}

	var result gateway.Subscription
	if err := c.post(ctx, "/subscriptions", payload, &result); err != nil {
		return nil, err
	}

	c.logger.Info("subscription created",
		zap.String("subscription_id", result.ID),
		zap.String("customer_id", result.CustomerID),
		zap.Time("next_billing_date", result.NextBillingDate))

	return &result, nil
}

// CancelSubscription stops future renewals.
// POST /subscriptions/{id}/cancel
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return c.post(ctx, fmt.Sprintf("/subscriptions/%s/cancel", subscriptionID), nil, nil)
}

// GetPaymentStatus fetches the gateway-side state of a payment.
// GET /payments/{id}
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*gateway.PixPayment, error) {
	var result gateway.PixPayment
	if err := c.get(ctx, fmt.Sprintf("/payments/%s", paymentID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks reachability and credentials.
// GET /health
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &gateway.GatewayError{
				Code:    "MARSHAL_ERROR",
				Message: "failed to prepare request",
				Details: err.Error(),
			}
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	return c.do(ctx, http.MethodPost, endpoint, reader, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	url := c.baseURL + endpoint
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &gateway.GatewayError{
			Code:    "REQUEST_ERROR",
			Message: "failed to create request",
			Details: err.Error(),
		}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("X-API-Secret", c.apiSecret)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("pixup request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return &gateway.GatewayError{
			Code:    "API_ERROR",
			Message: "PixUp API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &gateway.GatewayError{
			Code:    "RESPONSE_ERROR",
			Message: "failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		json.Unmarshal(respBody, &errResp)

		c.logger.Error("pixup returned error",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", errResp.Code))

		code := errResp.Code
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		return &gateway.GatewayError{
			Code:    code,
			Message: errResp.Message,
			Details: string(respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &gateway.GatewayError{
				Code:    "PARSE_ERROR",
				Message: "failed to parse response",
				Details: err.Error(),
			}
		}
	}

	return nil
}
