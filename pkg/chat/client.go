package chat

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

	"github.com/papercomputeco/chatrelay/pkg/llm"
	"github.com/papercomputeco/chatrelay/pkg/normalize"
)

// DefaultEndpoint is where a locally running relay listens.
const DefaultEndpoint = "http://localhost:8080/api/chat"

// Client sends prompts to a relay and returns normalized replies.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the relay at endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			// The relay bounds the upstream call itself; leave headroom
			Timeout: 3 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts prompt to the relay and returns the reply text.
// JSON replies are normalized; other content types are returned verbatim.
// A non-2xx status is an error carrying the relay's error message.
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(llm.PromptRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	isJSON := strings.Contains(httpResp.Header.Get("Content-Type"), "application/json")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", statusError(httpResp.StatusCode, body, isJSON)
	}

	if isJSON {
		return normalize.Text(body), nil
	}
	return string(body), nil
}

func statusError(status int, body []byte, isJSON bool) error {
	if isJSON {
		var errResp llm.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return errors.New(errResp.Error)
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !isJSON {
		return fmt.Errorf("relay returned status %d: %s", status, text)
	}
	return fmt.Errorf("relay returned status %d", status)
}
