package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"intervuai/backend/internal/llm"
)

// Client wraps the Gemini API behind llm.Provider.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{client: client, config: config}, nil
}

// Gemini takes the system instruction inline; the token budget is left to the model default.
func (c *Client) GenerateContent(ctx context.Context, prompt llm.Prompt, requestID string) (*llm.GenerationResponse, error) {
	startTime := time.Now()
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(flatten(prompt)), nil)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     classifyError(err),
			Message:  "Failed to generate content",
			Err:      err,
		}
	}
	if result == nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return &llm.GenerationResponse{
		Content:   text,
		RequestID: requestID,
		Metadata: llm.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func flatten(p llm.Prompt) string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return llm.ErrCodeTimeout
	case strings.Contains(err.Error(), "429"), strings.Contains(strings.ToLower(err.Error()), "resource_exhausted"):
		return llm.ErrCodeRateLimit
	case strings.Contains(err.Error(), "401"), strings.Contains(err.Error(), "403"):
		return llm.ErrCodeAPIKey
	default:
		return llm.ErrCodeServiceDown
	}
}
