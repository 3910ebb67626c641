package cerebras

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intervuai/backend/internal/llm"
)

// Client talks to the OpenAI-compatible chat completions endpoint.
type Client struct {
	http   *http.Client
	config *Config
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient uses httpClient when given, otherwise a client with a 60s timeout.
func NewClient(config *Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{http: httpClient, config: config}
}

func (c *Client) GenerateContent(ctx context.Context, prompt llm.Prompt, requestID string) (*llm.GenerationResponse, error) {
	startTime := time.Now()

	messages := make([]chatMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt.User})

	payload, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return nil, c.fail(llm.ErrCodeInvalidInput, "Failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, c.fail(llm.ErrCodeInvalidInput, "Failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, c.fail(llm.ErrCodeTimeout, "Request timed out", err)
		}
		return nil, c.fail(llm.ErrCodeServiceDown, "Request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, c.fail(llm.ErrCodeServiceDown, "Failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(statusCode(resp.StatusCode), fmt.Sprintf("HTTP %d", resp.StatusCode), errors.New(truncate(string(body), 300)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, c.fail(llm.ErrCodeInvalidInput, "Failed to parse response", err)
	}
	if parsed.Error != nil {
		return nil, c.fail(llm.ErrCodeServiceDown, parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return nil, c.fail(llm.ErrCodeInvalidInput, "No response generated", nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, c.fail(llm.ErrCodeInvalidInput, "Empty response generated", nil)
	}

	model := parsed.Model
	if model == "" {
		model = c.config.Model
	}

	return &llm.GenerationResponse{
		Content:   content,
		RequestID: requestID,
		Metadata: llm.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       "cerebras",
			Model:          model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return "cerebras"
}

func (c *Client) fail(code, message string, err error) error {
	return &llm.ProviderError{Provider: "cerebras", Code: code, Message: message, Err: err}
}

func statusCode(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return llm.ErrCodeAPIKey
	case status == http.StatusTooManyRequests:
		return llm.ErrCodeRateLimit
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return llm.ErrCodeInvalidInput
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return llm.ErrCodeTimeout
	default:
		return llm.ErrCodeServiceDown
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
