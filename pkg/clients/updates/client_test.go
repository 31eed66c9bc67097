package updates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/pkg/clients/updates"
)

func TestNewer(t *testing.T) {
	assert.True(t, updates.Newer("1.1.4", "1.1.3"))
	assert.True(t, updates.Newer("2.0.0", "1.9.9"))
	assert.False(t, updates.Newer("1.1.3", "1.1.3"))
	assert.False(t, updates.Newer("1.1.2", "1.1.3"))
	assert.False(t, updates.Newer("", "1.1.3"))

	// Lexicographic ordering: "1.10.0" sorts below "1.9.0". Pinned here so a
	// change to real semver comparison is a conscious one.
	assert.False(t, updates.Newer("1.10.0", "1.9.0"))
	assert.True(t, updates.Newer("1.9.0", "1.10.0"))
}

func TestCheck(t *testing.T) {
	var gotCacheBuster string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheBuster = r.URL.Query().Get("t")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version": "9.9.9", "url": "https://example.com/installer.exe"}`))
	}))
	defer srv.Close()

	client := updates.NewClient(srv.URL, zap.NewNop())
	info, err := client.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "9.9.9", info.Version)
	assert.Equal(t, "https://example.com/installer.exe", info.URL)
	assert.NotEmpty(t, gotCacheBuster, "cache-buster query parameter missing")
}

func TestCheckNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := updates.NewClient(srv.URL, zap.NewNop())
	_, err := client.Check(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadReportsProgress(t *testing.T) {
	payload := strings.Repeat("x", 200*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := updates.NewClient(srv.URL, zap.NewNop())

	var percents []int
	path, err := client.Download(context.Background(), srv.URL, func(pct int) {
		percents = append(percents, pct)
	})
	require.NoError(t, err)
	defer os.Remove(path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, len(payload))

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestDownloadNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := updates.NewClient(srv.URL, zap.NewNop())
	_, err := client.Download(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
