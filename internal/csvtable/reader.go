package csvtable

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxBytes bounds how much CSV text ReadAll accepts (32MB).
const DefaultMaxBytes int64 = 32 * 1024 * 1024

// NewBodyReader wraps r so that a leading byte order mark is removed and
// invalid UTF-8 sequences come out as U+FFFD. A UTF-16 BOM switches decoding
// to UTF-16, which is what spreadsheet exports on Windows occasionally emit.
func NewBodyReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadAll decodes r through NewBodyReader and returns the text. It fails if
// the decoded text is longer than maxBytes; maxBytes <= 0 uses DefaultMaxBytes.
func ReadAll(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(NewBodyReader(r), maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("csv too large: exceeds %d bytes", maxBytes)
	}
	return string(data), nil
}

// RepoURL returns https://github.com/<name>, escaping each path segment.
func RepoURL(name string) string {
	parts := strings.Split(strings.TrimSpace(name), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "https://github.com/" + strings.Join(parts, "/")
}
