// Package artifacthub looks up Helm packages on Artifact Hub.
package artifacthub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the public Artifact Hub API.
const DefaultBaseURL = "https://artifacthub.io/api/v1"

// maxResponseSize bounds the package document read from the API.
const maxResponseSize = 4 << 20

// ErrNotFound is returned when Artifact Hub has no such package.
var ErrNotFound = errors.New("package not found on Artifact Hub")

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Package is the subset of an Artifact Hub package used to add a chart.
type Package struct {
	Name       string     `json:"name"`
	Version    string     `json:"version"`
	Repository Repository `json:"repository"`
}

// Repository is the chart repository a package is published in.
type Repository struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Client queries the Artifact Hub API.
type Client struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// HTTP defaults to http.DefaultClient.
	HTTP HTTPClient

	// Timeout bounds each request. Zero means only ctx applies.
	Timeout time.Duration
}

// Package fetches the latest details of repo/name.
func (c *Client) Package(ctx context.Context, repo, name string) (*Package, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/packages/helm/%s/%s", strings.TrimSuffix(base, "/"), url.PathEscape(repo), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "vesshelm")
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying Artifact Hub: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, repo, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("Artifact Hub API error: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing Artifact Hub response: %w", err)
	}
	if pkg.Version == "" || pkg.Repository.URL == "" {
		return nil, fmt.Errorf("incomplete package details for %s/%s", repo, name)
	}
	return &pkg, nil
}

var packageURL = regexp.MustCompile(`artifacthub\.io/packages/helm/([^/]+)/([^/?#]+)`)

// ParseRef extracts the repository and package names from an Artifact Hub
// URL such as https://artifacthub.io/packages/helm/bitnami/redis, or from
// the short form "bitnami/redis".
func ParseRef(ref string) (repo, name string, err error) {
	if m := packageURL.FindStringSubmatch(ref); m != nil {
		return m[1], m[2], nil
	}
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" && !strings.Contains(ref, ":") {
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("invalid Artifact Hub reference '%s' (expected https://artifacthub.io/packages/helm/<repo>/<chart> or <repo>/<chart>)", ref)
}
