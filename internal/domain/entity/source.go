package entity

import (
	"net/url"
	"strings"
	"time"
)

// InternalEndpoint is the endpoint sentinel used by sources backed by
// first-party community content rather than a network origin.
const InternalEndpoint = "internal"

// SourceKind determines which adapter family may serve a source.
type SourceKind string

const (
	SourceKindExternal SourceKind = "external"
	SourceKindLocal    SourceKind = "local"
	SourceKindRSS      SourceKind = "rss"
)

// Valid reports whether k is one of the known kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindExternal, SourceKindLocal, SourceKindRSS:
		return true
	}
	return false
}

// Provider is the concrete backend behind a source. It is resolved once
// when the source is registered and stored alongside it.
type Provider string

const (
	ProviderNewsAPI     Provider = "newsapi"
	ProviderGenericJSON Provider = "generic_json"
	ProviderPlaceholder Provider = "placeholder"
	ProviderCommunity   Provider = "community"
	ProviderRSS         Provider = "rss"
)

// RequiresCredential reports whether the provider cannot be queried without an API key.
func (p Provider) RequiresCredential() bool {
	return p == ProviderNewsAPI
}

// ProviderHosts lists endpoint hostnames that identify specific external providers.
type ProviderHosts struct {
	Keyed       []string `yaml:"keyed"`
	Placeholder []string `yaml:"placeholder"`
}

// ResolveProvider maps a source kind and endpoint to a Provider.
// External endpoints on a known keyed host map to ProviderNewsAPI, known
// zero-config hosts map to ProviderPlaceholder, anything else is generic JSON.
func ResolveProvider(kind SourceKind, endpoint string, hosts ProviderHosts) Provider {
	switch kind {
	case SourceKindLocal:
		return ProviderCommunity
	case SourceKindRSS:
		return ProviderRSS
	}

	host := endpointHost(endpoint)
	if matchesHost(host, hosts.Keyed) {
		return ProviderNewsAPI
	}
	if matchesHost(host, hosts.Placeholder) {
		return ProviderPlaceholder
	}
	return ProviderGenericJSON
}

func endpointHost(endpoint string) string {
	raw := strings.TrimSpace(endpoint)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func matchesHost(host string, candidates []string) bool {
	if host == "" {
		return false
	}
	for _, c := range candidates {
		c = strings.ToLower(c)
		if host == c || strings.HasSuffix(host, "."+c) {
			return true
		}
	}
	return false
}

// Source is the configuration for one ingestion origin.
type Source struct {
	ID              int64
	Name            string
	Kind            SourceKind
	Provider        Provider
	Endpoint        string
	APIKey          string
	Categories      []string
	LocationBias    string
	RequestsPerHour int
	LastFetchedAt   *time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MinFetchInterval is the minimum time between two fetches of the source:
// 24 / RequestsPerHour hours. Values below one are treated as one.
func (s *Source) MinFetchInterval() time.Duration {
	rph := s.RequestsPerHour
	if rph < 1 {
		rph = 1
	}
	return time.Duration(24 * float64(time.Hour) / float64(rph))
}

// DueForFetch reports whether enough time has elapsed since the last
// successful fetch. When it has not, the remaining wait is returned.
func (s *Source) DueForFetch(now time.Time) (bool, time.Duration) {
	if s.LastFetchedAt == nil {
		return true, 0
	}
	elapsed := now.Sub(*s.LastFetchedAt)
	interval := s.MinFetchInterval()
	if elapsed >= interval {
		return true, 0
	}
	return false, interval - elapsed
}
