// internal/vision/client.go
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"outfit-advisor/internal/common/config"
	"outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/httpclient"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/metrics"
)

const (
	defaultTemperature = 0.5
	defaultMaxTokens   = 1024
)

// Client implements Provider over the OpenAI-compatible chat-completions
// wire format, which both Groq and OpenRouter speak.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *httpclient.Client
	logger  logger.Logger
}

// NewGroq creates the primary provider client.
func NewGroq(cfg config.ModelProviderConfig, log logger.Logger) *Client {
	return newClient("groq", cfg, log)
}

// NewOpenRouter creates the fallback provider client.
func NewOpenRouter(cfg config.ModelProviderConfig, log logger.Logger) *Client {
	return newClient("openrouter", cfg, log)
}

func newClient(name string, cfg config.ModelProviderConfig, log logger.Logger) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  httpclient.New(config.GetDuration(cfg.Timeout)),
		logger:  log.WithFields(map[string]interface{}{"provider": name}),
	}
}

func (c *Client) Name() string {
	return c.name
}

// Request/response shapes for the chat-completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePayload `json:"image_url,omitempty"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DescribeOutfit sends the image and prompt in a single round trip and
// returns the raw reply text. All failure modes come back as PROVIDER_ERROR
// so the orchestrator can decide whether to try the next provider.
func (c *Client) DescribeOutfit(ctx context.Context, imageDataURL, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imagePayload{URL: imageDataURL}},
				},
			},
		},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", errors.NewProviderError(c.name, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ModelProviderCalls.WithLabelValues(c.name, "error").Inc()
		return "", errors.NewProviderError(c.name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.ModelProviderCalls.WithLabelValues(c.name, "error").Inc()
		c.logger.Warn("model call failed", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(snippet),
		})
		return "", errors.NewProviderError(c.name, resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, snippet))
	}

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.ModelProviderCalls.WithLabelValues(c.name, "error").Inc()
		return "", errors.NewProviderError(c.name, resp.StatusCode, fmt.Errorf("decode error: %w", err))
	}

	if len(apiResponse.Choices) == 0 || strings.TrimSpace(apiResponse.Choices[0].Message.Content) == "" {
		metrics.ModelProviderCalls.WithLabelValues(c.name, "error").Inc()
		return "", errors.NewProviderError(c.name, resp.StatusCode, fmt.Errorf("empty completion"))
	}

	metrics.ModelProviderCalls.WithLabelValues(c.name, "ok").Inc()
	return apiResponse.Choices[0].Message.Content, nil
}
