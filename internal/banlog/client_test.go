package banlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
	return c, srv
}

func TestFetchParsesLogs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bans" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logs":[
			{"userId":"111","active":true,"shortReason":"Exploiting","createTime":"2024-01-01T00:00:00Z"},
			{"userId":222,"active":false,"shortReason":"Other"}
		]}`))
	})

	recs, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].UserID != "111" || !recs[0].Active {
		t.Errorf("first record: %+v", recs[0])
	}
	if recs[1].UserID != "222" {
		t.Errorf("numeric userId should normalise to string, got %q", recs[1].UserID)
	}
}

func TestFetchEmptyLogs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"logs":[]}`))
	})
	recs, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty batch, got %d records", len(recs))
	}
}

func TestFetchSurfacesBackendErrorVerbatim(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"Failed to reach Roblox API"}`))
	})
	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Failed to reach Roblox API" {
		t.Errorf("backend message should be surfaced verbatim, got %q", err.Error())
	}
}

func TestFetchGenericMessageWithoutErrorField(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected generic HTTP message, got %q", err.Error())
	}
}

func TestFetchMalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"logs": not-json`))
	})
	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected decode error for malformed body")
	}
}

func TestFetchSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"logs":[]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "sekret", Timeout: 5 * time.Second}, zerolog.Nop())
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotKey != "sekret" {
		t.Errorf("x-api-key header: got %q", gotKey)
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected network error")
	}
}
