package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client for registry requests.
// A non-positive timeout selects the default of 10 seconds.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores and dots with hyphens,
// following PEP 503 normalization.
func NormalizePkgName(name string) string {
	return pkgNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

var pkgNameReplacer = strings.NewReplacer("_", "-", ".", "-")

// URLEncode percent-encodes a string for use as a URL path segment.
func URLEncode(s string) string { return url.PathEscape(s) }
