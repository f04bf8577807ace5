// Package fetch downloads remote artifacts to local paths. It carries
// its own bounded retry profile, independent of the command retry
// executor: connection errors and server-side failures are retried,
// client errors are not.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
)

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for downloads.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithMaxAttempts bounds the total number of download attempts.
func WithMaxAttempts(n uint64) Option {
	return func(f *Fetcher) {
		f.maxAttempts = n
	}
}

// WithRetryInterval sets the constant pause between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		f.interval = d
	}
}

// Fetcher downloads URLs to local files.
type Fetcher struct {
	client      *http.Client
	maxAttempts uint64
	interval    time.Duration
}

// New creates a Fetcher with the default download profile.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: defaults.FetchTimeout},
		maxAttempts: defaults.FetchMaxAttempts,
		interval:    defaults.FetchRetryInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Download retrieves url into dest, creating parent directories as
// needed. The file is written atomically: a partial download never
// replaces an existing file.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", dest, err)
	}

	op := func() error {
		return f.downloadOnce(ctx, url, dest)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.interval), f.maxAttempts-1),
		ctx,
	)

	notify := func(err error, next time.Duration) {
		slog.Warn("download failed, retrying", "url", url, "next", next, "error", err)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("failed to download %q: %w", url, err)
	}

	slog.Info("downloaded artifact", "url", url, "dest", dest)
	return nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all retryable.
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("server error for %q: %s", url, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return backoff.Permanent(fmt.Errorf("unexpected status for %q: %s", url, resp.Status))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %q: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to move download into place: %w", err))
	}
	return nil
}
