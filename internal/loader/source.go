package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by a source when an export file does not exist
var ErrNotFound = errors.New("export file not found")

// Source reads named files of a dashboard export
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// NewSource returns an HTTP source for http(s) URLs and a directory source otherwise
func NewSource(location string, timeout time.Duration) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("no export source configured")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parsing source URL: %w", err)
		}
		return &HTTPSource{
			base:   u,
			client: &http.Client{Timeout: timeout},
		}, nil
	}
	return DirSource(location), nil
}

// DirSource reads export files from a local directory
type DirSource string

// Fetch reads name from the directory
func (d DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(string(d), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (d DirSource) String() string {
	return string(d)
}

// HTTPSource fetches export files relative to a base URL
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// Fetch GETs name relative to the base URL
func (h *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	reqURL := h.base.JoinPath(name).String()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching %s: status %d: %s", name, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (h *HTTPSource) String() string {
	return h.base.String()
}
