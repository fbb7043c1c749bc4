package config

type ServiceConfig struct {
	Name        string      `yaml:"name"`
	Environment string      `yaml:"environment"`
	Version     string      `yaml:"version"`
	ClientURL   string      `yaml:"client_url"`
	PublicURL   string      `yaml:"public_url"`
	Pixup       PixupConfig `yaml:"pixup"`
	Groq        GroqConfig  `yaml:"groq"`
}

// PixupConfig configures the PIX payment gateway client.
// Mode selects the client implementation: "pixup" (real API),
// "fixture" (canned responses), or empty to pick fixture when
// credentials are missing.
type PixupConfig struct {
	Mode             string `yaml:"mode"`
	APIKey           string `yaml:"api_key"`
	APISecret        string `yaml:"api_secret"`
	BaseURL          string `yaml:"base_url"`
	WebhookSecret    string `yaml:"webhook_secret"`
	EnforceSignature bool   `yaml:"enforce_signature"`
}

type GroqConfig struct {
	Mode   string `yaml:"mode"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}
