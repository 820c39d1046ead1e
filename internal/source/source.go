// Package source fetches raw catalog sources (JSONL feed, CSV exports, image
// index) either over HTTP or from a static asset directory.
package source

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/crypto/blake2b"
)

const fetchTimeout = 30 * time.Second

// Fetcher loads the raw bytes at a location relative to the source root.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// StatusError is returned when a source responds with a non-2xx status.
type StatusError struct {
	Location   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to load %s: %d", e.Location, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from a source.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// New returns an HTTP fetcher for http(s) roots and a file fetcher otherwise.
func New(root string) Fetcher {
	lower := strings.ToLower(root)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPFetcher(root)
	}
	return &FileFetcher{Root: root}
}

// HTTPFetcher fetches sources from a static asset host.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(fetchTimeout).
			SetHeader("Cache-Control", "no-store"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get("/" + strings.TrimPrefix(location, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	if res.IsError() {
		return nil, &StatusError{Location: location, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}

// FileFetcher reads sources from a directory. Locations cannot escape Root.
type FileFetcher struct {
	Root string
}

func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+location)))
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &StatusError{Location: location, StatusCode: http.StatusNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

// Fingerprint identifies a source payload by content.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
