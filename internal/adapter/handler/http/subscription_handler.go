package http

import (
	"errors"
	"net/http"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/middleware/auth"
	"github.com/astrotarothub/backend/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptions *usecase.SubscriptionService
	entitlement   *usecase.EntitlementService
	logger        *zap.Logger
}

func NewSubscriptionHandler(subscriptions *usecase.SubscriptionService, entitlement *usecase.EntitlementService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		entitlement:   entitlement,
		logger:        logger,
	}
}

// GetCurrentSubscription returns the caller's subscription row.
func (h *SubscriptionHandler) GetCurrentSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.GetCurrent(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Subscription not found",
				"code":  "SUBSCRIPTION_NOT_FOUND",
			})
		}
		h.logger.Error("Failed to get subscription",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get subscription",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"subscription": sub})
}

// CancelSubscription stops renewals for the caller.
func (h *SubscriptionHandler) CancelSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.Cancel(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Subscription not found",
				"code":  "SUBSCRIPTION_NOT_FOUND",
			})
		}
		h.logger.Error("Failed to cancel subscription",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to cancel subscription",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"subscription": sub})
}

// GetEntitlement returns the premium-access projection for the caller.
func (h *SubscriptionHandler) GetEntitlement(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	entitlement, err := h.entitlement.GetEntitlement(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Subscription not found",
				"code":  "SUBSCRIPTION_NOT_FOUND",
			})
		}
		h.logger.Error("Failed to compute entitlement",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get entitlement",
		})
	}

	return c.JSON(http.StatusOK, entitlement)
}
