package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecomai/internal/logger"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// CompletionService is the boundary the edit pipeline talks to: one request
// in, the generated text out. Implementations do not retry.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	ResponseFormat   json.RawMessage `json:"response_format,omitempty"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey       string
	defaultModel string
	endpoint     string
	httpClient   *http.Client
	logger       *logger.Logger
}

func NewClient(apiKey, defaultModel string, logger *logger.Logger) *Client {
	return &Client{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		endpoint:     defaultEndpoint,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
	}
}

// NewClientWithEndpoint points the client at a non-default completions URL.
// Used by tests and by proxy deployments.
func NewClientWithEndpoint(apiKey, defaultModel, endpoint string, logger *logger.Logger) *Client {
	c := NewClient(apiKey, defaultModel, logger)
	c.endpoint = endpoint
	return c
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	if req.Model == "" {
		req.Model = c.defaultModel
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error: %d - %s", resp.StatusCode, string(body))
	}

	var completion completionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}

	c.logger.Debug("Completion used %d tokens (model %s)", completion.Usage.TotalTokens, req.Model)
	return completion.Choices[0].Message.Content, nil
}

// UserMessage builds a single-part text message, the common case for
// hand-assembled prompts.
func UserMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentPart{{Type: "text", Text: text}},
	}
}
