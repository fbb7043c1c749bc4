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

type ReadingHandler struct {
	readings *usecase.ReadingService
	logger   *zap.Logger
}

func NewReadingHandler(readings *usecase.ReadingService, logger *zap.Logger) *ReadingHandler {
	return &ReadingHandler{readings: readings, logger: logger}
}

type createReadingRequest struct {
	SpreadType string                   `json:"spreadType" validate:"required,max=50"`
	Cards      []map[string]interface{} `json:"cards" validate:"required,min=1"`
}

// CreateReading stores a free card draw.
func (h *ReadingHandler) CreateReading(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req createReadingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Spread type and cards are required",
			"code":  "VALIDATION_FAILED",
		})
	}

	cards := make([]interface{}, len(req.Cards))
	for i, card := range req.Cards {
		cards[i] = card
	}

	reading, err := h.readings.CreateReading(c.Request().Context(), user.UserID, req.SpreadType, model.JSONB{"cards": cards})
	if err != nil {
		h.logger.Error("Failed to create reading",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create reading",
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"reading": reading})
}

// GetUserReadings lists the caller's readings.
func (h *ReadingHandler) GetUserReadings(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	readings, err := h.readings.ListReadings(c.Request().Context(), user.UserID)
	if err != nil {
		h.logger.Error("Failed to list readings",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get readings",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"readings": readings})
}

// UnlockReading generates the premium interpretation, spending one
// credit unless the account is on an active unlimited plan or already
// paid for this exact reading. Payment Required (402) signals the
// client to start an order.
func (h *ReadingHandler) UnlockReading(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	readingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid reading id",
			"code":  "INVALID_READING_ID",
		})
	}

	interpretation, err := h.readings.UnlockReading(c.Request().Context(), user.UserID, readingID)
	if err != nil {
		var insufficient *domainErrors.InsufficientCreditsError
		switch {
		case errors.Is(err, domainErrors.ErrReadingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Reading not found",
				"code":  "READING_NOT_FOUND",
			})
		case errors.As(err, &insufficient):
			return c.JSON(http.StatusPaymentRequired, echo.Map{
				"error": "Pagamento necessário para desbloquear interpretação completa",
				"code":  "PAYMENT_REQUIRED",
			})
		default:
			h.logger.Error("Failed to unlock reading",
				zap.String("reading_id", readingID.String()),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Failed to unlock reading",
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"interpretation": interpretation})
}
