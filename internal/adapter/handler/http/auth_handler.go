package http

import (
	"errors"
	"net/http"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth   *usecase.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Name          string `json:"name" validate:"omitempty,max=255"`
	BirthDate     string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	BirthTime     string `json:"birthTime" validate:"omitempty,max=10"`
	BirthLocation string `json:"birthLocation" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid registration data",
			"code":  "VALIDATION_FAILED",
		})
	}

	regReq := &usecase.RegisterRequest{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		BirthTime:     req.BirthTime,
		BirthLocation: req.BirthLocation,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err == nil {
			regReq.BirthDate = &birthDate
		}
	}

	user, token, err := h.auth.Register(c.Request().Context(), regReq)
	if err != nil {
		if errors.Is(err, domainErrors.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Email already registered",
				"code":  "EMAIL_TAKEN",
			})
		}
		h.logger.Error("Registration failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to register",
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Email and password are required",
			"code":  "VALIDATION_FAILED",
		})
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "Invalid email or password",
				"code":  "INVALID_CREDENTIALS",
			})
		}
		h.logger.Error("Login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to login",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"token": token,
	})
}
