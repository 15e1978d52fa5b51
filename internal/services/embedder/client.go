package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings required to reach the service.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the similarity service HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a similarity service client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type similarityRequest struct {
	A []string `json:"a"`
	B []string `json:"b"`
}

type similarityResponse struct {
	Matrix [][]float64 `json:"matrix"`
	Error  string      `json:"error"`
}

// Similarity returns the |a|×|b| cosine-similarity matrix for the two
// text lists. Values are in [-1,1]; clipping into [0,1] is the caller's
// concern. The call is aborted by context cancellation or the configured
// timeout; failures are returned as-is without retry.
func (c *Client) Similarity(ctx context.Context, a, b []string) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, errors.New("similarity: both text lists must be non-empty")
	}
	if c.cfg.BaseURL == "" {
		return nil, errors.New("similarity: base url not configured")
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "similarity")
	if err != nil {
		return nil, fmt.Errorf("similarity: build url: %w", err)
	}
	encoded, err := json.Marshal(similarityRequest{A: a, B: b})
	if err != nil {
		return nil, fmt.Errorf("similarity: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("similarity: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("similarity: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("similarity: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("similarity: http %d: %s", resp.StatusCode, summarizeBody(body))
	}

	var parsed similarityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("similarity: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("similarity: service error: %s", parsed.Error)
	}
	if err := validateMatrix(parsed.Matrix, len(a), len(b)); err != nil {
		return nil, err
	}
	return parsed.Matrix, nil
}

// Health verifies the service is reachable and its model is loaded.
func (c *Client) Health(ctx context.Context) error {
	if c.cfg.BaseURL == "" {
		return errors.New("similarity health: base url not configured")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "health")
	if err != nil {
		return fmt.Errorf("similarity health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("similarity health: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("similarity health: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("similarity health: http %d: %s", resp.StatusCode, summarizeBody(body))
	}
	var parsed struct {
		OK          bool `json:"ok"`
		ModelLoaded bool `json:"model_loaded"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("similarity health: decode response: %w", err)
	}
	if !parsed.OK || !parsed.ModelLoaded {
		return errors.New("similarity health: service not ready")
	}
	return nil
}

func validateMatrix(matrix [][]float64, rows, cols int) error {
	if len(matrix) != rows {
		return fmt.Errorf("similarity: matrix has %d rows, expected %d", len(matrix), rows)
	}
	for i, row := range matrix {
		if len(row) != cols {
			return fmt.Errorf("similarity: matrix row %d has %d columns, expected %d", i, len(row), cols)
		}
	}
	return nil
}

func summarizeBody(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const limit = 160
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	if text == "" {
		return "<empty>"
	}
	return text
}
