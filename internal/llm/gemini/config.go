package gemini

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second
)

// Config carries the Gemini settings used for question generation and answer scoring.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewConfig reads GEMINI_API_KEY (GOOGLE_API_KEY also accepted), GEMINI_MODEL and GEMINI_TIMEOUT.
func NewConfig() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	cfg := &Config{APIKey: apiKey, Model: defaultModel, Timeout: defaultTimeout}
	if model := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); model != "" {
		cfg.Model = model
	}
	if raw := os.Getenv("GEMINI_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid GEMINI_TIMEOUT %q", raw)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
