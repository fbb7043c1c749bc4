package http

import (
	"errors"
	"net/http"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/middleware/auth"
	"github.com/astrotarothub/backend/internal/usecase"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	orders *usecase.OrderService
	logger *zap.Logger
}

func NewPaymentHandler(orders *usecase.OrderService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{orders: orders, logger: logger}
}

type createPaymentRequest struct {
	Type             string `json:"type" validate:"required,oneof=SINGLE_READING SUBSCRIPTION"`
	CustomerName     string `json:"customerName" validate:"omitempty,max=255"`
	CustomerDocument string `json:"customerDocument" validate:"omitempty,max=20"`
	ReadingID        string `json:"readingId" validate:"omitempty,uuid"`
}

// CreatePayment is the order intake endpoint. The amount is never
// client-supplied; it is derived from the product type server-side.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid payment type",
			"code":  "INVALID_PRODUCT_TYPE",
		})
	}

	orderReq := &usecase.CreateOrderRequest{
		Type:             model.PaymentType(req.Type),
		CustomerName:     req.CustomerName,
		CustomerDocument: req.CustomerDocument,
	}
	if req.ReadingID != "" {
		readingID, err := uuid.Parse(req.ReadingID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid reading id",
				"code":  "INVALID_READING_ID",
			})
		}
		orderReq.ReadingID = &readingID
	}

	result, err := h.orders.CreateOrder(c.Request().Context(), user.UserID, orderReq)
	if err != nil {
		h.logger.Error("Failed to create order",
			zap.String("user_id", user.UserID.String()),
			zap.String("type", req.Type),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to process payment",
			"code":  "PAYMENT_FAILED",
		})
	}

	resp := echo.Map{
		"payment": paymentResponse(result.Payment),
		"message": "Pagamento criado. Escaneie o QR Code para pagar.",
	}
	if result.NextBillingDate != nil {
		resp["subscription"] = echo.Map{
			"plan":            model.PlanPremiumMonthly,
			"nextBillingDate": result.NextBillingDate,
		}
		resp["message"] = "Assinatura criada! Escaneie o QR Code para ativar seu plano Premium."
	}

	return c.JSON(http.StatusCreated, resp)
}

// GetPayment returns one payment owned by the caller.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid payment id",
			"code":  "INVALID_PAYMENT_ID",
		})
	}

	payment, err := h.orders.GetPayment(c.Request().Context(), user.UserID, paymentID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Payment not found",
				"code":  "PAYMENT_NOT_FOUND",
			})
		}
		h.logger.Error("Failed to get payment",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get payment",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"payment": paymentResponse(payment)})
}

// RefreshPayment re-checks a pending payment against the gateway,
// recovering from a webhook delivery that never arrived.
func (h *PaymentHandler) RefreshPayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid payment id",
			"code":  "INVALID_PAYMENT_ID",
		})
	}

	payment, err := h.orders.RefreshPayment(c.Request().Context(), user.UserID, paymentID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Payment not found",
				"code":  "PAYMENT_NOT_FOUND",
			})
		}
		h.logger.Error("Failed to refresh payment",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to refresh payment",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"payment": paymentResponse(payment)})
}

// GetUserPayments lists the caller's payment history.
func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	payments, err := h.orders.ListPayments(c.Request().Context(), user.UserID)
	if err != nil {
		h.logger.Error("Failed to list payments",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get payments",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

func paymentResponse(p *model.Payment) echo.Map {
	return echo.Map{
		"id":           p.ID,
		"amount":       p.Amount,
		"amount_cents": p.AmountCents,
		"currency":     p.Currency,
		"status":       p.Status,
		"type":         p.Type,
		"qrCode":       p.QRCode,
		"qrCodeString": p.QRString,
		"expiresAt":    p.ExpiresAt,
	}
}
