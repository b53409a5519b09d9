package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	userAgent    = "Wheel-Program/1.0"
	maxSheetSize = 4 << 20
)

// Fetcher downloads the published spreadsheet export.
type Fetcher struct {
	Client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch GETs url, following redirects, and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := http.DefaultClient
	if f != nil && f.Client != nil {
		client = f.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download sheet: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read sheet body: %w", err)
	}
	if len(body) > maxSheetSize {
		return nil, fmt.Errorf("download sheet: body exceeds %d bytes", maxSheetSize)
	}
	return body, nil
}
