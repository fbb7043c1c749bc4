package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/astrotarothub/backend/internal/config"
	domain "github.com/astrotarothub/backend/internal/domain/interpreter"
	"go.uber.org/zap"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient generates interpretations through Groq's chat-completions
// API.
type GroqClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGroqClient(apiKey, model string, logger *zap.Logger) *GroqClient {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return &GroqClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: groqBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

func (c *GroqClient) Name() string { return "groq" }

func (c *GroqClient) InterpretReading(ctx context.Context, spreadType string, cards []domain.Card) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Interpret this %s tarot spread for the querent.\n", spreadType)
	for _, card := range cards {
		orientation := "upright"
		if !card.Upright {
			orientation = "reversed"
		}
		fmt.Fprintf(&sb, "- %s (%s) in position %q", card.Name, orientation, card.Position)
		if len(card.Keywords) > 0 {
			fmt.Fprintf(&sb, ", keywords: %s", strings.Join(card.Keywords, ", "))
		}
		sb.WriteString("\n")
	}

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are an experienced tarot reader. Write a warm, grounded interpretation in Portuguese."},
			{"role": "user", "content": sb.String()},
		},
		"temperature": 0.8,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to prepare interpretation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create interpretation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("interpretation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read interpretation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("groq returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", respBody))
		return "", fmt.Errorf("interpretation provider returned status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse interpretation response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("interpretation provider returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// NewInterpreter selects the interpretation client: "groq" requires an
// API key, "fixture" returns canned text, empty mode picks groq only
// when a key is configured.
func NewInterpreter(cfg *config.GroqConfig, logger *zap.Logger) (domain.Interpreter, error) {
	switch cfg.Mode {
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("groq interpreter selected but no API key configured")
		}
		return NewGroqClient(cfg.APIKey, cfg.Model, logger), nil
	case "fixture":
		return NewFixture(), nil
	case "":
		if cfg.APIKey != "" {
			return NewGroqClient(cfg.APIKey, cfg.Model, logger), nil
		}
		logger.Warn("groq API key missing, falling back to fixture interpreter")
		return NewFixture(), nil
	default:
		return nil, fmt.Errorf("unknown interpreter mode: %s", cfg.Mode)
	}
}
