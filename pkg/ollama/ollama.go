// Package ollama is a small client for the Ollama HTTP API covering the two
// calls the recorder needs: image description through /api/generate and chat
// completion through /api/chat.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the address of a local Ollama server.
const DefaultURL = "http://localhost:11434"

// Client talks to one Ollama server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	backoff    time.Duration
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string // internal: Retry-After header value for 429s
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. By default only the request
// context bounds a call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the base delay between retries (doubled per attempt).
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a Client for the server at baseURL. An empty URL uses
// DefaultURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const maxRetries = 3

// postJSON sends body as JSON and unmarshals the response into dest.
// Returns *APIError for non-2xx responses. Retries on 429 (with Retry-After)
// and 5xx with exponential backoff.
func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ollama: marshal request: %w", err)
	}

	var lastErr *APIError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(c.backoffDelay(attempt, lastErr))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("ollama: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("ollama: %s: %w", path, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("ollama: read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err := json.Unmarshal(data, dest); err != nil {
				return fmt.Errorf("ollama: decode response: %w", err)
			}
			return nil
		}

		bodyStr := string(data)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr}

		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}
		return apiErr
	}
	return lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func (c *Client) backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return c.backoff << (attempt - 1)
}

// --- /api/generate ---

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images [][]byte `json:"images,omitempty"` // base64 on the wire
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate runs a single non-streaming completion, optionally with images.
func (c *Client) Generate(ctx context.Context, model, prompt string, images ...[]byte) (string, error) {
	var resp generateResponse
	req := generateRequest{Model: model, Prompt: prompt, Images: images, Stream: false}
	if err := c.postJSON(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.New("ollama: " + resp.Error)
	}
	return strings.TrimSpace(resp.Response), nil
}

// --- /api/chat ---

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// Chat runs a non-streaming chat completion and returns the reply content.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	var resp chatResponse
	if err := c.postJSON(ctx, "/api/chat", chatRequest{Model: model, Messages: messages}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.New("ollama: " + resp.Error)
	}
	return resp.Message.Content, nil
}

// --- Capability adapters ---

// Vision describes screenshots with a vision model.
type Vision struct {
	Client *Client
	Model  string
}

// Describe implements harvest.Vision.
func (v *Vision) Describe(ctx context.Context, prompt string, image []byte) (string, error) {
	var images [][]byte
	if len(image) > 0 {
		images = append(images, image)
	}
	return v.Client.Generate(ctx, v.Model, prompt, images...)
}

// Text generates prose with a chat model.
type Text struct {
	Client *Client
	Model  string
}

// Generate implements summary.Generator.
func (t *Text) Generate(ctx context.Context, system, user string) (string, error) {
	return t.Client.Chat(ctx, t.Model, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
}
