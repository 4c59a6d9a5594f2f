package pypi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations"
)

// DefaultBaseURL is the PyPI JSON API root. Package metadata lives at
// <DefaultBaseURL>/<name>/json.
const DefaultBaseURL = "https://pypi.org/pypi"

// PackageMetadata is the registry record for one Python package.
//
// RequiresDist holds the raw dependency declarations exactly as PyPI lists
// them, in declaration order, environment markers included
// (e.g. `certifi>=2020.1; python_version<"3.8"`). It is empty, never nil, for
// packages that declare no dependencies.
//
// A PackageMetadata is never modified after FetchPackage returns it.
type PackageMetadata struct {
	Name         string   // Project name as reported by the registry (never empty)
	Version      string   // Latest release version (never empty)
	RequiresDist []string // Raw dependency declarations in order
	Summary      string   // Short package description (may be empty)
	License      string   // License name or expression (may be empty)
	HomePage     string   // Homepage URL (may be empty)
}

// Options configures a Client. The zero value talks to pypi.org with the
// default timeout.
type Options struct {
	BaseURL   string        // Registry root; defaults to DefaultBaseURL
	Timeout   time.Duration // Per-request timeout; zero selects the default
	UserAgent string        // Sent as User-Agent when non-empty
}

// Client provides access to the PyPI JSON API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client.
func NewClient(opts Options) *Client {
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(opts.Timeout, headers),
		baseURL: base,
	}
}

// BaseURL returns the registry root this client queries.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPackage retrieves metadata for a Python package with a single GET.
//
// The name is normalized (case-insensitive, underscores and dots become
// hyphens) before the request. Returns:
//   - INVALID_PACKAGE if name is empty or unsafe to put in a URL
//   - REGISTRY_UNAVAILABLE for transport failures and non-200 statuses
//     ([integrations.ErrNotFound] is in the chain for 404)
//   - MALFORMED_RESPONSE if the body is not JSON or lacks info.name,
//     info.version or info.requires_dist
//
// The returned pointer is never nil if err is nil.
func (c *Client) FetchPackage(ctx context.Context, name string) (*PackageMetadata, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	pkg := integrations.NormalizePkgName(name)

	var data apiResponse
	url := fmt.Sprintf("%s/%s/json", c.baseURL, integrations.URLEncode(pkg))
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	return data.metadata(pkg)
}

type apiResponse struct {
	Info *apiInfo `json:"info"`
}

type apiInfo struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Summary      string          `json:"summary"`
	License      string          `json:"license"`
	Classifiers  []string        `json:"classifiers"`
	RequiresDist json.RawMessage `json:"requires_dist"`
	HomePage     string          `json:"home_page"`
}

var jsonNull = []byte("null")

func (r apiResponse) metadata(pkg string) (*PackageMetadata, error) {
	if r.Info == nil {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "pypi response for %s has no info object", pkg)
	}
	info := r.Info
	if info.Name == "" {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "pypi response for %s has no info.name", pkg)
	}
	if info.Version == "" {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "pypi response for %s has no info.version", pkg)
	}
	if info.RequiresDist == nil {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "pypi response for %s has no info.requires_dist", pkg)
	}

	requires := []string{}
	if !bytes.Equal(bytes.TrimSpace(info.RequiresDist), jsonNull) {
		if err := json.Unmarshal(info.RequiresDist, &requires); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "pypi info.requires_dist for %s is not a list of strings", pkg)
		}
	}

	return &PackageMetadata{
		Name:         info.Name,
		Version:      info.Version,
		RequiresDist: requires,
		Summary:      info.Summary,
		License:      extractLicenseType(info.License, info.Classifiers),
		HomePage:     info.HomePage,
	}, nil
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
