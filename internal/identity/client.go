package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/rs/zerolog"
)

// ClientConfig holds parameters for constructing the directory client.
type ClientConfig struct {
	IdentityBaseURL string
	AvatarBaseURL   string
	Timeout         time.Duration
	Debug           bool
}

// httpDirectory implements Directory over HTTP against the two services.
type httpDirectory struct {
	cfg  ClientConfig
	http *http.Client
	log  zerolog.Logger
}

// NewClient constructs a Directory backed by a tuned http.Transport.
func NewClient(cfg ClientConfig, log zerolog.Logger) Directory {
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
	return &httpDirectory{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
}

// --- Wire types --------------------------------------------------------------

type apiUser struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type apiThumbnail struct {
	Data []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// LookupUser fetches {name, displayName} from the identity service.
func (d *httpDirectory) LookupUser(ctx context.Context, userID string) (UserInfo, error) {
	u := strings.TrimRight(d.cfg.IdentityBaseURL, "/") + "/v1/users/" + url.PathEscape(userID)

	var parsed apiUser
	if err := d.getJSON(ctx, u, "identity", &parsed); err != nil {
		return UserInfo{}, err
	}
	return UserInfo{Name: parsed.Name, DisplayName: parsed.DisplayName}, nil
}

// AvatarURL fetches a headshot URL from the avatar service. The endpoint
// accepts a batch of ids; only the first element of the response is consulted.
func (d *httpDirectory) AvatarURL(ctx context.Context, userID string) (string, error) {
	q := url.Values{}
	q.Set("userIds", userID)
	q.Set("size", "150x150")
	q.Set("format", "Png")
	q.Set("isCircular", "true")
	u := strings.TrimRight(d.cfg.AvatarBaseURL, "/") + "/v1/users/avatar-headshot?" + q.Encode()

	var parsed apiThumbnail
	if err := d.getJSON(ctx, u, "avatar", &parsed); err != nil {
		return "", err
	}
	if len(parsed.Data) == 0 || parsed.Data[0].ImageURL == "" {
		return "", fmt.Errorf("avatar response carried no image URL")
	}
	return parsed.Data[0].ImageURL, nil
}

// getJSON executes an instrumented GET and decodes the JSON body into out.
func (d *httpDirectory) getJSON(ctx context.Context, url, service string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := d.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ProfileLookups.WithLabelValues(service, "error").Inc()
		return fmt.Errorf("%s lookup: %w", service, err)
	}
	defer resp.Body.Close()

	statusLabel := fmt.Sprintf("%dxx", resp.StatusCode/100)
	metrics.ProfileLookups.WithLabelValues(service, statusLabel).Inc()
	metrics.LookupDuration.WithLabelValues(service).Observe(elapsed.Seconds())

	if d.cfg.Debug {
		d.log.Debug().Str("url", url).Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).Msg("directory response")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s lookup returned HTTP %d", service, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}
