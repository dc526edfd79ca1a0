package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"laravel-api-forge/internal/logger"
)

const (
	defaultAPIURL = "https://api.github.com"

	// releasesPerPage is enough to find the newest release of a small project.
	releasesPerPage = 50

	maxReleaseFeedBytes = 10 << 20
)

// Release is a GitHub release with its downloadable assets.
type Release struct {
	TagName    string  `json:"tag_name"`   // The release tag (e.g., v1.0.0)
	Name       string  `json:"name"`       // Human-readable title
	Draft      bool    `json:"draft"`      // Unpublished
	Prerelease bool    `json:"prerelease"` // Alpha, beta or RC
	HTMLURL    string  `json:"html_url"`   // Release notes page
	Assets     []Asset `json:"assets"`
}

// Asset is a file attached to a release.
type Asset struct {
	Name               string `json:"name"`                 // Asset filename
	BrowserDownloadURL string `json:"browser_download_url"` // Direct download URL for the asset
	Size               int64  `json:"size"`
}

// Client reads the release feed of one repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise or a test server.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken authenticates requests sent to the API host.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient returns a Client for owner/repo.
func NewClient(owner, repo string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    defaultAPIURL,
		owner:      owner,
		repo:       repo,
		userAgent:  "laravel-api-forge",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository returns "owner/repo".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// Releases fetches the most recent releases, drafts and pre-releases included.
func (c *Client) Releases(ctx context.Context) ([]Release, error) {
	feedURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, c.owner, c.repo, releasesPerPage)
	logger.Debug("[DEBUG] Fetching GitHub releases from URL: %s\n", feedURL)

	resp, err := c.do(ctx, feedURL, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching releases of %s: %w", c.Repository(), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub release fetch failed for %s: HTTP status %d", c.Repository(), resp.StatusCode)
	}

	var releases []Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReleaseFeedBytes)).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub releases JSON for %s: %w", c.Repository(), err)
	}
	logger.Debug("[DEBUG] Found %d releases\n", len(releases))
	return releases, nil
}

// Download saves the content at assetURL to destPath.
func (c *Client) Download(ctx context.Context, assetURL, destPath string) error {
	resp, err := c.do(ctx, assetURL, "application/octet-stream")
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", redact(assetURL), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", redact(assetURL), resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", destPath, err)
	}

	logger.Debug("[DEBUG] Downloaded %s to: %s\n", redact(assetURL), destPath)
	return nil
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && c.trusts(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

// trusts reports whether the token may be sent to u: the API host itself, or
// github.com when talking to the public API.
func (c *Client) trusts(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(u.Host, "github.com")
}

// redact drops the query string, which may carry signed tokens.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
