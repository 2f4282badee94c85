package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyreel/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings required to talk to MiniMax.
type Config struct {
	APIKey         string
	BaseURL        string
	VideoModel     string
	SpeechModel    string
	TimeoutSeconds int
}

// Client wraps the MiniMax generation API.
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

// NewClient constructs a MiniMax client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			VideoModel:     strings.TrimSpace(cfg.VideoModel),
			SpeechModel:    strings.TrimSpace(cfg.SpeechModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.minimax.io/v1"
	}
	if client.cfg.VideoModel == "" {
		client.cfg.VideoModel = "MiniMax-Hailuo-02"
	}
	if client.cfg.SpeechModel == "" {
		client.cfg.SpeechModel = "speech-02-hd"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// baseResp is the envelope MiniMax attaches to every JSON response. A
// status_code of zero means the request itself was accepted.
type baseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

func (b baseResp) ok() bool { return b.StatusCode == 0 }

func (c *Client) postJSON(ctx context.Context, operation, path string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, "minimax", operation, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, operation, out)
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return c.do(req, operation, out)
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "http request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "minimax", operation,
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body)), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrTransient, "minimax", operation, "decode response", err)
	}
	return nil
}

func summarizeBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	const limit = 200
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
