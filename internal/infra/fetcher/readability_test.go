package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"localfeed/internal/infra/fetcher"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Library expands hours</title></head>
<body>
	<nav>Home | News | Sports</nav>
	<article>
		<h1>Library expands hours</h1>
		<p>The central library will stay open until nine on weekdays starting next month, the board announced on Tuesday.</p>
		<p>Officials said the change follows a survey in which most residents asked for evening access to study rooms.</p>
		<p>The extended schedule will be funded by a state grant and reviewed again at the end of the year.</p>
	</article>
	<footer>Copyright</footer>
</body>
</html>`

func testConfig() fetcher.ContentFetchConfig {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestFetchContent_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != fetcher.UserAgent {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	content, err := fetcher.NewReadabilityFetcher(testConfig()).FetchContent(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if !strings.Contains(content, "stay open until nine") {
		t.Errorf("expected article text, got %q", content)
	}
}

func TestFetchContent_InvalidURL(t *testing.T) {
	f := fetcher.NewReadabilityFetcher(testConfig())

	for _, u := range []string{"not-a-valid-url", "ftp://example.com/file", "https://"} {
		_, err := f.FetchContent(context.Background(), u)
		if !errors.Is(err, fetcher.ErrInvalidURL) {
			t.Errorf("FetchContent(%q) error = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestFetchContent_PrivateIPDenied(t *testing.T) {
	cfg := testConfig()
	cfg.DenyPrivateIPs = true

	_, err := fetcher.NewReadabilityFetcher(cfg).FetchContent(context.Background(), "http://127.0.0.1:8080/page")
	if !errors.Is(err, fetcher.ErrPrivateIP) {
		t.Errorf("expected ErrPrivateIP, got %v", err)
	}
}

func TestFetchContent_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fetcher.NewReadabilityFetcher(testConfig()).FetchContent(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestFetchContent_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", 4096) + "</p></body></html>"))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024

	_, err := fetcher.NewReadabilityFetcher(cfg).FetchContent(context.Background(), server.URL)
	if !errors.Is(err, fetcher.ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestFetchContent_TooManyRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/loop", http.StatusFound)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2

	_, err := fetcher.NewReadabilityFetcher(cfg).FetchContent(context.Background(), server.URL)
	if !errors.Is(err, fetcher.ErrTooManyRedirects) {
		t.Errorf("expected ErrTooManyRedirects, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := cfg
	bad.Timeout = 0
	if bad.Validate() == nil {
		t.Error("expected error for zero timeout")
	}

	bad = cfg
	bad.MaxRedirects = 11
	if bad.Validate() == nil {
		t.Error("expected error for too many redirects")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONTENT_FETCH_ENABLED", "true")
	t.Setenv("CONTENT_FETCH_THRESHOLD", "250")
	t.Setenv("CONTENT_FETCH_TIMEOUT", "forever")

	cfg, warnings := fetcher.LoadConfigFromEnv(nil)
	if !cfg.Enabled || cfg.Threshold != 250 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != fetcher.DefaultConfig().Timeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", warnings)
	}
}
