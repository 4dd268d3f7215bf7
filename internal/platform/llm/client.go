// Package llm implements generation.Generator over OpenAI-compatible
// chat-completions APIs. OpenAI and OpenRouter speak the same wire format
// and differ only in endpoint, authentication headers and model catalogue,
// so both variants share one transport client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkowalczyk/cardgen-api/internal/generation"
)

// chatMessage is one entry of the messages array in a chat-completions call.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body of a chat-completions call.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse is the subset of the response body the application reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client posts chat-completion requests to one configured endpoint. It does
// not retry; a request either completes within the timeout or fails.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	headers    map[string]string
}

// NewClient creates a chat-completions client for the given endpoint.
// extraHeaders are sent verbatim on every request (OpenRouter attribution
// headers, for example) and may be nil.
func NewClient(endpoint, apiKey string, timeout time.Duration, extraHeaders map[string]string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint cannot be empty", generation.ErrInvalidConfig)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		headers:    extraHeaders,
	}, nil
}

// Complete sends one system+user message pair to the configured endpoint
// and returns the first choice's message content. Transport failures,
// non-success statuses and undecodable bodies all wrap ErrProviderFailure;
// unusable-but-decodable content is the parser's concern, not an error here.
func (c *Client) Complete(ctx context.Context, model, systemMsg, userMsg string) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: userMsg},
		},
		Temperature: generation.Temperature,
		MaxTokens:   generation.MaxOutputTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", generation.ErrProviderFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", generation.ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrProviderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the error message; never the whole
		// thing, provider errors can be large.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: unexpected status %d: %s",
			generation.ErrProviderFailure, resp.StatusCode, string(snippet))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", generation.ErrProviderFailure, err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", generation.ErrProviderFailure)
	}

	return decoded.Choices[0].Message.Content, nil
}
