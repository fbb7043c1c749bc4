package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/astrotarothub/backend/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's HMAC-SHA256 hex digest of the
// raw request body.
const SignatureHeader = "X-Pixup-Signature"

// WebhookHandler receives the gateway's asynchronous callbacks.
type WebhookHandler struct {
	service          *usecase.WebhookService
	secret           []byte
	enforceSignature bool
	logger           *zap.Logger
}

// NewWebhookHandler creates a webhook handler. Whether signatures are
// enforced is decided here, once, from configuration; it is not inferred
// per-request from the presence of a secret.
func NewWebhookHandler(service *usecase.WebhookService, secret string, enforceSignature bool, logger *zap.Logger) *WebhookHandler {
	if enforceSignature && secret == "" {
		logger.Warn("signature enforcement enabled with empty webhook secret")
	}
	return &WebhookHandler{
		service:          service,
		secret:           []byte(secret),
		enforceSignature: enforceSignature,
		logger:           logger,
	}
}

// HandleWebhook verifies the delivery and applies it. The gateway is
// acknowledged with 200 for everything except a failed signature check
// (401) and an unreadable body (500): deliveries this system does not
// recognize must not keep the gateway retrying.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error reading request body",
		})
	}

	if h.enforceSignature {
		signature := c.Request().Header.Get(SignatureHeader)
		if !h.verifySignature(body, signature) {
			h.logger.Error("Webhook signature verification failed",
				zap.String("signature", signature))
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "Invalid signature",
			})
		}
	}

	var payload usecase.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("Error parsing webhook body", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error processing webhook",
		})
	}
	json.Unmarshal(body, &payload.Raw)

	h.logger.Info("Webhook event received",
		zap.String("event", payload.Event),
		zap.String("gateway_id", payload.Data.ID),
		zap.String("subscription_id", payload.Data.SubscriptionID))

	if err := h.service.ProcessEvent(c.Request().Context(), &payload); err != nil {
		h.logger.Error("Failed to process webhook event",
			zap.String("event", payload.Event),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error processing webhook",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
