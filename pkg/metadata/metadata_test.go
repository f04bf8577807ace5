package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Google", r.Header.Get("Metadata-Flavor"))

		switch r.URL.Path {
		case "/gpu-driver-provider":
			_, _ = w.Write([]byte("NVIDIA\n"))
		case "/install-gpu-agent":
			_, _ = w.Write([]byte("true"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL))
	ctx := context.Background()

	assert.Equal(t, "NVIDIA", c.Get(ctx, "gpu-driver-provider", "OS"))
	assert.Equal(t, "true", c.Get(ctx, "install-gpu-agent", "false"))
}

func TestClientGetAbsentYieldsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL))
	assert.Equal(t, "10.0", c.Get(context.Background(), "cuda-version", "10.0"))
}

func TestClientGetUnreachableYieldsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(WithEndpoint(url))
	assert.Equal(t, "OS", c.Get(context.Background(), "gpu-driver-provider", "OS"))
}

func TestStatic(t *testing.T) {
	s := Static{"cuda-version": "10.1"}
	ctx := context.Background()

	assert.Equal(t, "10.1", s.Get(ctx, "cuda-version", "10.0"))
	assert.Equal(t, "false", s.Get(ctx, "install-gpu-agent", "false"))
}
