// Package fetcher downloads article pages and extracts their readable text
// to enrich articles whose feed content is too short.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"localfeed/internal/observability/metrics"
	"localfeed/internal/resilience/circuitbreaker"
	"localfeed/internal/resilience/retry"
)

// UserAgent identifies the pipeline to origin servers.
const UserAgent = "LocalFeedBot/1.0 (+https://localfeed.app/bot)"

// ReadabilityFetcher extracts article text with go-readability.
type ReadabilityFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	policy  retry.Policy
	config  ContentFetchConfig
}

// NewReadabilityFetcher builds a fetcher with an SSRF-guarded client.
func NewReadabilityFetcher(cfg ContentFetchConfig) *ReadabilityFetcher {
	return &ReadabilityFetcher{
		client: NewGuardedClient(ClientOptions{
			Timeout:        cfg.Timeout + 5*time.Second,
			MaxRedirects:   cfg.MaxRedirects,
			DenyPrivateIPs: cfg.DenyPrivateIPs,
		}),
		breaker: circuitbreaker.New(circuitbreaker.Content()),
		policy:  retry.Content(),
		config:  cfg,
	}
}

// FetchContent downloads urlStr and returns its readable text.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	start := time.Now()
	if err := ValidateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		metrics.RecordContentFetch("failure", time.Since(start))
		return "", err
	}

	var text string
	err := retry.Do(ctx, f.policy, "content-fetch", func() error {
		var err error
		text, err = circuitbreaker.Do(f.breaker, func() (string, error) {
			return f.doFetch(ctx, urlStr)
		})
		return err
	})
	if err != nil {
		metrics.RecordContentFetch("failure", time.Since(start))
		return "", err
	}
	metrics.RecordContentFetch("success", time.Since(start))
	return text, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", retry.FromResponse(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	pageURL := resp.Request.URL
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentTooShort, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", ErrContentTooShort
	}
	return text, nil
}
