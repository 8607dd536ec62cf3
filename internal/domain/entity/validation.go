package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs.
const maxURLLength = 2048

// ValidateURL checks that rawURL is a well-formed absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "URL is malformed"}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}

// ValidCoordinates reports whether lat is within [-90,90] and lng within [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Severity classifies a configuration issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ConfigIssue is a single finding of source configuration validation.
type ConfigIssue struct {
	Field    string
	Message  string
	Severity Severity
}

// ConfigReport is the result of validating a source's configuration.
type ConfigReport struct {
	Errors   []ConfigIssue
	Warnings []ConfigIssue
}

// Valid reports whether the report contains no errors. Warnings are allowed.
func (r ConfigReport) Valid() bool {
	return len(r.Errors) == 0
}

// Err converts the first error of the report into a ValidationError, or nil.
func (r ConfigReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	first := r.Errors[0]
	return &ValidationError{Field: first.Field, Message: first.Message}
}

func (r *ConfigReport) addError(field, msg string) {
	r.Errors = append(r.Errors, ConfigIssue{Field: field, Message: msg, Severity: SeverityError})
}

func (r *ConfigReport) addWarning(field, msg string) {
	r.Warnings = append(r.Warnings, ConfigIssue{Field: field, Message: msg, Severity: SeverityWarning})
}

// ValidateConfig inspects the source for configuration defects. It is used
// by administrative surfaces and never during an ingestion run.
func (s *Source) ValidateConfig() ConfigReport {
	var r ConfigReport

	if strings.TrimSpace(s.Name) == "" {
		r.addError("name", "name is required")
	}
	if !s.Kind.Valid() {
		r.addError("kind", fmt.Sprintf("unknown source kind %q", s.Kind))
	}

	endpoint := strings.TrimSpace(s.Endpoint)
	switch {
	case endpoint == "":
		r.addError("endpoint", "endpoint is required")
	case endpoint == InternalEndpoint:
	default:
		if err := ValidateURL(endpoint); err != nil {
			r.addError("endpoint", fmt.Sprintf("endpoint %q is not a valid URL", endpoint))
		}
	}

	if s.Provider.RequiresCredential() && strings.TrimSpace(s.APIKey) == "" {
		r.addError("api_key", fmt.Sprintf("provider %s requires an API key", s.Provider))
	}
	if s.RequestsPerHour < 1 {
		r.addWarning("requests_per_hour", "requests per hour below 1 is treated as 1")
	}
	if len(s.Categories) == 0 {
		r.addWarning("categories", "no categories declared; a single top-headlines request will be used")
	}
	return r
}
