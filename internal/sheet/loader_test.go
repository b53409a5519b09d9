package sheet

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lxing/wheel/internal/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	saved map[string]*wheel.Catalogue
}

func newMemCache() *memCache {
	return &memCache{saved: map[string]*wheel.Catalogue{}}
}

func (c *memCache) SaveCatalogue(_ context.Context, source string, cat *wheel.Catalogue) error {
	c.saved[source] = cat
	return nil
}

func (c *memCache) LoadCatalogue(_ context.Context, source string) (*wheel.Catalogue, time.Time, error) {
	cat, ok := c.saved[source]
	if !ok {
		return nil, time.Time{}, errors.New("not cached")
	}
	return cat, time.Unix(0, 0), nil
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestLoaderPrefersDownloadAndRefreshesGameFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("title\n1,1\nPlayer Limit,Game,Ann\n2,Chess,y\n"))
	}))
	defer srv.Close()

	gameFile := filepath.Join(t.TempDir(), "data", "wheel_file.txt")
	cache := newMemCache()
	l := &Loader{URL: srv.URL, GameFile: gameFile, Fetcher: NewFetcher(time.Second), Cache: cache, Logger: quietLogger()}

	cat, err := l.Load(context.Background())
	require.NoError(t, err, "Load")
	require.Len(t, cat.Items, 1)
	assert.Equal(t, "Chess", cat.Items[0].Name)

	written, err := os.ReadFile(gameFile)
	require.NoError(t, err, "game file should be refreshed")
	assert.Equal(t, "1 1\nAnn\n2 Chess y\n", string(written))
	assert.Same(t, cat, cache.saved[srv.URL])
}

func TestLoaderFallsBackToGameFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gameFile := filepath.Join(t.TempDir(), "wheel_file.txt")
	require.NoError(t, os.WriteFile(gameFile, []byte("2 1\nAnn Bo\n0 Golf yd\n"), 0o644))

	l := &Loader{URL: srv.URL, GameFile: gameFile, Fetcher: NewFetcher(time.Second), Logger: quietLogger()}
	cat, err := l.Load(context.Background())
	require.NoError(t, err, "Load")
	assert.Equal(t, "Golf", cat.Items[0].Name)
	assert.Equal(t, wheel.StatusDownload, cat.Items[0].StatusFor(cat.Members[1]))
}

func TestLoaderFallsBackToCache(t *testing.T) {
	cached, err := wheel.NewCatalogue([]string{"Ann"}, []wheel.ItemRecord{{Name: "Chess", Codes: "y"}})
	require.NoError(t, err)

	gameFile := filepath.Join(t.TempDir(), "missing.txt")
	cache := newMemCache()
	cache.saved["file:"+gameFile] = cached

	l := &Loader{GameFile: gameFile, Cache: cache, Logger: quietLogger()}
	cat, err := l.Load(context.Background())
	require.NoError(t, err, "Load")
	assert.Same(t, cached, cat)
}

func TestLoaderReportsNoSource(t *testing.T) {
	_, err := (&Loader{Logger: quietLogger()}).Load(context.Background())
	require.ErrorIs(t, err, ErrNoSource)

	l := &Loader{GameFile: filepath.Join(t.TempDir(), "missing.txt"), Cache: newMemCache(), Logger: quietLogger()}
	_, err = l.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSource)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
