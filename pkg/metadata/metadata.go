// Package metadata reads provisioning parameters from the compute
// platform's instance attribute service. Absence of an attribute is the
// expected common case, never an error: every lookup carries a default.
package metadata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
)

// Accessor resolves a named attribute, substituting the given default
// when the attribute is absent or the service is unreachable.
type Accessor interface {
	Get(ctx context.Context, name, def string) string
}

// Client reads instance attributes over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the attribute service root, primarily for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithTimeout overrides the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// NewClient creates an attribute client against the platform default
// endpoint.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: defaults.MetadataEndpoint,
		client:   &http.Client{Timeout: defaults.MetadataTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Accessor. Any failure (service unreachable, attribute
// missing, unreadable body) yields the default value.
func (c *Client) Get(ctx context.Context, name, def string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+name, nil)
	if err != nil {
		return def
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("metadata lookup failed, using default", "name", name, "error", err)
		return def
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("metadata attribute absent, using default", "name", name, "status", resp.Status)
		return def
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return def
	}

	return strings.TrimSpace(string(body))
}

// Static is a map-backed Accessor for tests and offline runs.
type Static map[string]string

// Get implements Accessor.
func (s Static) Get(_ context.Context, name, def string) string {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}
