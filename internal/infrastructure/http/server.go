package http

import (
	"context"
	"fmt"
	"net/http"

	handlers "github.com/astrotarothub/backend/internal/adapter/handler/http"
	"github.com/astrotarothub/backend/internal/config"
	"github.com/astrotarothub/backend/internal/domain/gateway"
	"github.com/astrotarothub/backend/internal/domain/interpreter"
	"github.com/astrotarothub/backend/internal/infrastructure/database"
	"github.com/astrotarothub/backend/internal/middleware/auth"
	"github.com/astrotarothub/backend/internal/usecase"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	config      *config.Config
	logger      *zap.Logger
	echo        *echo.Echo
	repos       *database.Repositories
	gateway     gateway.PixGateway
	interpreter interpreter.Interpreter
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, gw gateway.PixGateway, interp interpreter.Interpreter) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:      cfg,
		logger:      logger,
		echo:        e,
		repos:       repos,
		gateway:     gw,
		interpreter: interp,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server",
		zap.String("address", addr),
		zap.String("gateway", s.gateway.Name()),
		zap.String("interpreter", s.interpreter.Name()))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Initialize usecases
	authService := usecase.NewAuthService(s.repos.User, s.repos.Subscription, s.config.JWT.Secret, s.logger)
	webhookService := usecase.NewWebhookService(s.repos.Payment, s.repos.Subscription, s.repos.WebhookEvent, s.logger)
	orderService := usecase.NewOrderService(s.repos.Payment, s.repos.Subscription, s.repos.User, s.gateway, webhookService, s.config.Service.PublicURL, s.logger)
	entitlementService := usecase.NewEntitlementService(s.repos.Subscription, s.logger)
	subscriptionService := usecase.NewSubscriptionService(s.repos.Subscription, s.gateway, s.logger)
	readingService := usecase.NewReadingService(s.repos.Reading, s.repos.Payment, entitlementService, s.interpreter, s.logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, s.logger)
	paymentHandler := handlers.NewPaymentHandler(orderService, s.logger)
	webhookHandler := handlers.NewWebhookHandler(webhookService, s.config.Service.Pixup.WebhookSecret, s.config.Service.Pixup.EnforceSignature, s.logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, entitlementService, s.logger)
	readingHandler := handlers.NewReadingHandler(readingService, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/webhook",
			"/api/v1/auth",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	protected.POST("/payments", paymentHandler.CreatePayment)
	protected.GET("/payments", paymentHandler.GetUserPayments)
	protected.GET("/payments/:id", paymentHandler.GetPayment)
	protected.POST("/payments/:id/refresh", paymentHandler.RefreshPayment)

	protected.GET("/subscriptions/current", subscriptionHandler.GetCurrentSubscription)
	protected.DELETE("/subscriptions/current", subscriptionHandler.CancelSubscription)
	protected.GET("/entitlement", subscriptionHandler.GetEntitlement)

	protected.POST("/readings", readingHandler.CreateReading)
	protected.GET("/readings", readingHandler.GetUserReadings)
	protected.POST("/readings/:id/unlock", readingHandler.UnlockReading)

	// Webhook route (outside API versioning, no auth middleware)
	s.echo.POST("/webhook/pixup", webhookHandler.HandleWebhook)
}
