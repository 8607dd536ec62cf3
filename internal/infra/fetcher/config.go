package fetcher

import (
	"fmt"
	"time"

	"localfeed/internal/pkg/config"
)

// ContentFetchConfig controls full-article content enhancement.
type ContentFetchConfig struct {
	// Enabled turns enhancement on. When false the pipeline keeps feed content as is.
	Enabled bool

	// Threshold is the content length (runes) below which a page fetch is attempted.
	Threshold int

	// Timeout bounds one page download.
	Timeout time.Duration

	// MaxBodySize caps the downloaded page in bytes.
	MaxBodySize int64

	// MaxRedirects caps redirects per request.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to private networks.
	DenyPrivateIPs bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        false,
		Threshold:      400,
		Timeout:        10 * time.Second,
		MaxBodySize:    5 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the configuration for values the fetcher cannot honor.
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads CONTENT_FETCH_* variables, falling back to
// defaults for invalid values. The returned warnings describe each fallback.
func LoadConfigFromEnv(metrics *config.ConfigMetrics) (ContentFetchConfig, []string) {
	d := DefaultConfig()
	l := config.NewLoader(metrics)

	cfg := ContentFetchConfig{
		Enabled:        l.Bool("enabled", "CONTENT_FETCH_ENABLED", d.Enabled),
		Threshold:      l.Int("threshold", "CONTENT_FETCH_THRESHOLD", d.Threshold, config.IntRange(0, 100000)),
		Timeout:        l.Duration("timeout", "CONTENT_FETCH_TIMEOUT", d.Timeout, config.DurationRange(time.Second, 2*time.Minute)),
		MaxBodySize:    int64(l.Int("max_body_size", "CONTENT_FETCH_MAX_BODY_SIZE", int(d.MaxBodySize), config.IntRange(1024, 100*1024*1024))),
		MaxRedirects:   l.Int("max_redirects", "CONTENT_FETCH_MAX_REDIRECTS", d.MaxRedirects, config.IntRange(0, 10)),
		DenyPrivateIPs: l.Bool("deny_private_ips", "CONTENT_FETCH_DENY_PRIVATE_IPS", d.DenyPrivateIPs),
	}
	return cfg, l.Finish()
}
