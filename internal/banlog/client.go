package banlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/rs/zerolog"
)

// Source is the ban log backend seam.
type Source interface {
	// Fetch returns the current batch of raw ban records.
	Fetch(ctx context.Context) ([]Record, error)
}

// ClientConfig holds parameters for constructing a backend HTTP client.
type ClientConfig struct {
	BaseURL string
	APIKey  string // sent as x-api-key when non-empty
	Timeout time.Duration
	Debug   bool
}

// Client fetches ban records from the backend's /api/bans endpoint.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  zerolog.Logger
}

// NewClient constructs a backend client with a tuned transport.
func NewClient(cfg ClientConfig, log zerolog.Logger) *Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
}

// bansResponse is the success wire shape.
type bansResponse struct {
	Logs []Record `json:"logs"`
}

// errorResponse is the failure wire shape.
type errorResponse struct {
	Error string `json:"error"`
}

// Fetch retrieves the current ban log batch. On a non-2xx response carrying
// an error field, the backend's message is surfaced verbatim.
func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/bans"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.BackendCalls.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch ban log: %w", err)
	}
	defer resp.Body.Close()

	statusLabel := fmt.Sprintf("%dxx", resp.StatusCode/100)
	metrics.BackendCalls.WithLabelValues(statusLabel).Inc()
	metrics.BackendDuration.Observe(elapsed.Seconds())

	if c.cfg.Debug {
		c.log.Debug().Str("url", url).Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).Msg("ban log response")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ban log body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s", errResp.Error)
		}
		return nil, fmt.Errorf("ban log backend returned HTTP %d", resp.StatusCode)
	}

	var parsed bansResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode ban log response: %w", err)
	}
	return parsed.Logs, nil
}
