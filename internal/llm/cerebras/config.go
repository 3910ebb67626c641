package cerebras

import (
	"errors"
	"os"
	"strings"
)

const (
	defaultBaseURL = "https://api.cerebras.ai/v1"
	defaultModel   = "gpt-oss-120b"
)

// holds Cerebras-specific configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

func NewConfig() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("CEREBRAS_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("CEREBRAS_API_KEY environment variable is required")
	}

	model := os.Getenv("CEREBRAS_MODEL")
	if model == "" {
		model = defaultModel
	}

	baseURL := strings.TrimRight(os.Getenv("CEREBRAS_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Config{APIKey: apiKey, Model: model, BaseURL: baseURL, Temperature: 0.7}, nil
}
