// Package source retrieves the CSV resource the table is rendered from.
package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/trendboard/internal/csvtable"
)

// Source produces the raw CSV text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// StatusError is returned when the server answers with a non-2xx status.
// Its message is shown to users verbatim.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// HTTPSource fetches the CSV over HTTP(S) with a single GET.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	MaxBytes int64
}

// NewHTTP creates an HTTPSource. A zero timeout leaves the request bounded
// only by the caller's context.
func NewHTTP(rawURL string, timeout time.Duration, maxBytes int64) *HTTPSource {
	return &HTTPSource{
		URL:      rawURL,
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// Fetch performs the GET. There are no retries.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	return csvtable.ReadAll(resp.Body, s.MaxBytes)
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads the CSV from the local filesystem.
type FileSource struct {
	Path     string
	MaxBytes int64
}

// Fetch reads the file.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return csvtable.ReadAll(f, s.MaxBytes)
}

func (s *FileSource) String() string { return s.Path }

// New picks an HTTPSource for http(s) locations and a FileSource otherwise.
func New(location string, timeout time.Duration, maxBytes int64) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTP(location, timeout, maxBytes)
	}
	return &FileSource{Path: location, MaxBytes: maxBytes}
}

// Resolve turns a root-relative location such as "/results/result.csv" into
// a URL on origin (host:port), the way a browser would resolve it against
// the page. Anything else is returned unchanged.
func Resolve(location, origin string) string {
	if strings.HasPrefix(location, "/") && !strings.HasPrefix(location, "//") {
		return "http://" + origin + location
	}
	return location
}
