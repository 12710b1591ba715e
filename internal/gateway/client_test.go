package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/henrybloomingdale/litscrape/internal/observability"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	if c.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, c.BaseURL)
	}
	if c.UserAgent != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, c.UserAgent)
	}
	if c.MaxBytes != DefaultMaxResponseBytes {
		t.Errorf("expected max bytes %d, got %d", DefaultMaxResponseBytes, c.MaxBytes)
	}
	if c.HTTPClient.Timeout != 0 {
		t.Errorf("expected no default timeout, got %v", c.HTTPClient.Timeout)
	}
	if c.Limiter == nil {
		t.Error("expected non-nil limiter")
	}
}

func TestNewClient_WithOptions(t *testing.T) {
	c := NewClient(
		WithBaseURL("http://localhost:9999/"),
		WithUserAgent("tester"),
		WithTimeout(3*time.Second),
		WithMaxResponseBytes(1024),
		WithRateLimit(2, 0),
	)
	if c.BaseURL != "http://localhost:9999" {
		t.Errorf("expected trimmed base URL, got %q", c.BaseURL)
	}
	if c.UserAgent != "tester" {
		t.Errorf("expected user agent %q, got %q", "tester", c.UserAgent)
	}
	if c.HTTPClient.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", c.HTTPClient.Timeout)
	}
	if c.MaxBytes != 1024 {
		t.Errorf("expected max bytes 1024, got %d", c.MaxBytes)
	}
	if c.Limiter.Burst() != 1 {
		t.Errorf("expected burst clamped to 1, got %d", c.Limiter.Burst())
	}
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	c := NewClient(WithHTTPClient(shared), WithTimeout(5*time.Second))
	if shared.Timeout != 0 {
		t.Errorf("expected shared client timeout untouched, got %v", shared.Timeout)
	}
	if c.HTTPClient == shared {
		t.Error("expected a copy of the shared client")
	}
	if c.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.HTTPClient.Timeout)
	}
}

func TestSend_PostFormBody(t *testing.T) {
	var gotMethod, gotPath, gotType, gotKeyword, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		_ = r.ParseForm()
		gotKeyword = r.PostForm.Get("keyword")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithUserAgent("litscrape-test"))
	body, err := c.Send(context.Background(), "/scrap", http.MethodPost, url.Values{"keyword": {"heart failure"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", body)
	}
	if gotMethod != http.MethodPost || gotPath != "/scrap" {
		t.Errorf("expected POST /scrap, got %s %s", gotMethod, gotPath)
	}
	if !strings.HasPrefix(gotType, "application/x-www-form-urlencoded") {
		t.Errorf("expected form content type, got %q", gotType)
	}
	if gotKeyword != "heart failure" {
		t.Errorf("expected keyword %q, got %q", "heart failure", gotKeyword)
	}
	if gotUA != "litscrape-test" {
		t.Errorf("expected user agent %q, got %q", "litscrape-test", gotUA)
	}
}

func TestSend_GetQueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.Send(context.Background(), "suggestions?x=1", http.MethodGet, url.Values{"term": {"asth"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("term") != "asth" || gotQuery.Get("x") != "1" {
		t.Errorf("unexpected query %v", gotQuery)
	}
}

func TestSend_RejectsUnsupportedMethod(t *testing.T) {
	c := NewClient()
	if _, err := c.Send(context.Background(), "/scrap", http.MethodDelete, nil); err == nil {
		t.Error("expected error for DELETE, got nil")
	}
}

func TestSend_HTTPErrorIsTransport(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(WithBaseURL(srv.URL))
		_, err := c.Send(context.Background(), "/scrap", http.MethodPost, nil)
		srv.Close()

		if !errors.Is(err, ErrTransport) {
			t.Errorf("status %d: expected ErrTransport, got %v", status, err)
		}
	}
}

func TestSend_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("X", 2048)))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMaxResponseBytes(1024))
	_, err := c.Send(context.Background(), "/scrap", http.MethodPost, nil)
	if err == nil {
		t.Fatal("expected error for oversized response, got nil")
	}
	if !strings.Contains(err.Error(), "exceeds maximum size") {
		t.Errorf("expected 'exceeds maximum size' error, got: %v", err)
	}
}

func TestSend_ContextCancellation(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Send(ctx, "/scrap", http.MethodPost, nil); err == nil {
		t.Error("expected error from cancelled context, got nil")
	}
}

func TestSend_ConnectionRefusedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(addr))
	_, err := c.Send(context.Background(), "/scrap", http.MethodPost, nil)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestSend_ConcurrentRequestsAreIndependent(t *testing.T) {
	var mu sync.Mutex
	count := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Send(context.Background(), "/scrap", http.MethodPost, url.Values{"keyword": {"x"}})
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("expected 10 requests to reach the server, got %d", count)
	}
}

func TestSend_RateLimitSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rate limit test in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(5, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Send(context.Background(), "/scrap", http.MethodPost, nil); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	// 3 requests at 5/sec need at least 2 intervals of 200ms.
	if elapsed := time.Since(start); elapsed < 350*time.Millisecond {
		t.Errorf("rate limiting too fast: 3 requests completed in %v", elapsed)
	}
}

func TestSend_RecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	m := observability.NewMetrics("gateway_test")
	c := NewClient(WithBaseURL(srv.URL), WithMetrics(m))

	_, _ = c.Send(context.Background(), "/scrap", http.MethodPost, nil)
	_, _ = c.Send(context.Background(), "/fail", http.MethodPost, nil)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/scrap", http.MethodPost)); got != 1 {
		t.Errorf("expected 1 /scrap request, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsFailed.WithLabelValues("/fail", http.MethodPost)); got != 1 {
		t.Errorf("expected 1 failed /fail request, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsFailed.WithLabelValues("/scrap", http.MethodPost)); got != 0 {
		t.Errorf("expected no failed /scrap requests, got %v", got)
	}
}

func TestResolveURL(t *testing.T) {
	c := NewClient(WithBaseURL("http://server:5000/"))
	tests := []struct {
		in, want string
	}{
		{"static/downloads/x.xlsx", "http://server:5000/static/downloads/x.xlsx"},
		{"/static/downloads/x.xlsx", "http://server:5000/static/downloads/x.xlsx"},
		{"https://cdn.example.org/a.xlsx", "https://cdn.example.org/a.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := c.ResolveURL(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
