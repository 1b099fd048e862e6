package selfie

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"echoo/internal/domain"
)

type httpFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFetcher returns a SelfieFetcher that downloads a stored selfie URL
// to a transient local file. The timeout bounds the whole download.
func NewHTTPFetcher(client *http.Client, timeout time.Duration) domain.SelfieFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client, timeout: timeout}
}

// Fetch downloads rawURL into a temp file and returns its path together with
// a cleanup that removes the file. Callers must invoke cleanup on every exit
// path; on error Fetch has already removed any partial file.
func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (string, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download selfie: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download selfie: unexpected status %d", resp.StatusCode)
	}

	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}

	tmp, err := os.CreateTemp("", "selfie-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write selfie to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
