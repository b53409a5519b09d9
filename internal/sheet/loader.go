package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lxing/wheel/internal/wheel"
)

// ErrNoSource is returned when every configured source failed or none is set.
var ErrNoSource = errors.New("no catalogue source available")

// Cache keeps the last catalogue that loaded cleanly for a source key.
type Cache interface {
	SaveCatalogue(ctx context.Context, source string, cat *wheel.Catalogue) error
	LoadCatalogue(ctx context.Context, source string) (*wheel.Catalogue, time.Time, error)
}

// Loader tries the published sheet, then the local game file, then the
// cache. A fresh download also rewrites the local game file.
type Loader struct {
	URL      string
	GameFile string
	Fetcher  *Fetcher
	Cache    Cache
	Logger   *log.Logger
}

func (l *Loader) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

func (l *Loader) cacheKey() string {
	if l.URL != "" {
		return l.URL
	}
	return "file:" + l.GameFile
}

// Load satisfies wheel.Source.
func (l *Loader) Load(ctx context.Context) (*wheel.Catalogue, error) {
	var errs []error

	if l.URL != "" {
		cat, err := l.loadRemote(ctx)
		if err == nil {
			l.remember(ctx, cat)
			return cat, nil
		}
		l.logf("sheet download failed, trying local file: %v", err)
		errs = append(errs, err)
	}

	if l.GameFile != "" {
		cat, err := l.loadFile()
		if err == nil {
			l.remember(ctx, cat)
			return cat, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			l.logf("game file %s unreadable, trying cache: %v", l.GameFile, err)
		}
		errs = append(errs, err)
	}

	if l.Cache != nil {
		cat, savedAt, err := l.Cache.LoadCatalogue(ctx, l.cacheKey())
		if err == nil {
			l.logf("using cached catalogue from %s", savedAt.Format(time.RFC3339))
			return cat, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, ErrNoSource
	}
	return nil, fmt.Errorf("%w: %w", ErrNoSource, errors.Join(errs...))
}

func (l *Loader) loadRemote(ctx context.Context) (*wheel.Catalogue, error) {
	raw, err := l.Fetcher.Fetch(ctx, l.URL)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse downloaded sheet: %w", err)
	}
	if l.GameFile != "" {
		if err := writeGameFileAtomic(l.GameFile, cat); err != nil {
			l.logf("could not refresh game file %s: %v", l.GameFile, err)
		}
	}
	return cat, nil
}

func (l *Loader) loadFile() (*wheel.Catalogue, error) {
	f, err := os.Open(l.GameFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cat, err := ParseGameFile(f)
	if err != nil {
		return nil, fmt.Errorf("parse game file %s: %w", l.GameFile, err)
	}
	return cat, nil
}

func (l *Loader) remember(ctx context.Context, cat *wheel.Catalogue) {
	if l.Cache == nil {
		return
	}
	if err := l.Cache.SaveCatalogue(ctx, l.cacheKey(), cat); err != nil {
		l.logf("cache catalogue: %v", err)
	}
}

func writeGameFileAtomic(path string, cat *wheel.Catalogue) error {
	var buf bytes.Buffer
	if err := WriteGameFile(&buf, cat); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
