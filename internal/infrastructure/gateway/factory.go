package gateway

import (
	"fmt"

	"github.com/astrotarothub/backend/internal/config"
	domain "github.com/astrotarothub/backend/internal/domain/gateway"
	"github.com/astrotarothub/backend/internal/infrastructure/gateway/fixture"
	"github.com/astrotarothub/backend/internal/infrastructure/gateway/pixup"
	"go.uber.org/zap"
)

// New selects the gateway client implementation. The choice is made once
// at startup: "pixup" requires credentials and fails fast without them,
// "fixture" never touches the network, and an empty mode picks the real
// client only when credentials are present.
func New(cfg *config.PixupConfig, logger *zap.Logger) (domain.PixGateway, error) {
	switch cfg.Mode {
	case "pixup":
		if cfg.APIKey == "" || cfg.APISecret == "" {
			return nil, fmt.Errorf("pixup gateway selected but credentials are not configured")
		}
		return pixup.NewClient(cfg.APIKey, cfg.APISecret, cfg.BaseURL, logger), nil
	case "fixture":
		return fixture.NewGateway(logger), nil
	case "":
		if cfg.APIKey != "" && cfg.APISecret != "" {
			return pixup.NewClient(cfg.APIKey, cfg.APISecret, cfg.BaseURL, logger), nil
		}
		logger.Warn("pixup credentials missing, falling back to fixture gateway")
		return fixture.NewGateway(logger), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode: %s", cfg.Mode)
	}
}
