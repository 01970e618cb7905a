// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxManifestBytes bounds the version manifest read (1 MB). A manifest is
	// a few hundred bytes; anything larger is not ours.
	maxManifestBytes = 1 << 20

	defaultHTTPTimeout = 30 * time.Second
)

// ErrManifestInvalid indicates the fetched manifest is not usable.
var ErrManifestInvalid = errors.New("invalid version manifest")

type (
	// VersionInfo is the published release manifest. DownloadURL points at
	// either a raw binary or a .tar.gz archive containing one.
	VersionInfo struct {
		Version     string `json:"version"`
		DownloadURL string `json:"download_url"`
		Changelog   string `json:"changelog,omitempty"`
		SHA256      string `json:"sha256,omitempty"`
	}

	// ManifestClient fetches version manifests and release downloads.
	ManifestClient struct {
		httpClient *http.Client
	}

	// ManifestClientOption configures a ManifestClient during construction.
	ManifestClientOption func(*ManifestClient)
)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ManifestClientOption {
	return func(m *ManifestClient) {
		m.httpClient = c
	}
}

// NewManifestClient creates a ManifestClient with a bounded-timeout default
// HTTP client.
func NewManifestClient(opts ...ManifestClientOption) *ManifestClient {
	m := &ManifestClient{}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return m
}

// FetchManifest downloads and decodes the version manifest at url.
func (m *ManifestClient) FetchManifest(ctx context.Context, url string) (*VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest: unexpected status %s", resp.Status)
	}

	var info VersionInfo
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes))
	if err := dec.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}

	if info.Version == "" {
		return nil, fmt.Errorf("%w: missing version field", ErrManifestInvalid)
	}
	if info.DownloadURL == "" {
		return nil, fmt.Errorf("%w: missing download_url field", ErrManifestInvalid)
	}
	return &info, nil
}

// Download opens a streaming body for url. The caller must close it.
func (m *ManifestClient) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
