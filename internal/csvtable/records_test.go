package csvtable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords(t *testing.T) {
	rows := Parse("name,stars,createdAt,currentStars,summary\nfoo/bar,42,2024-01-01,100,Some summary\n")

	got := Records(rows)
	require.Len(t, got, 1)
	assert.Equal(t, Record{
		Name:         "foo/bar",
		Stars:        "42",
		CreatedAt:    "2024-01-01",
		CurrentStars: "100",
		Summary:      "Some summary",
	}, got[0])
}

func TestRecords_SkipsEmptyName(t *testing.T) {
	rows := Parse("name,stars\n,5,2024-01-01\nok/repo,7\n")

	got := Records(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "ok/repo", got[0].Name)
	assert.Equal(t, "7", got[0].Stars)
	assert.Empty(t, got[0].CreatedAt)
	assert.False(t, got[0].HasSummary())
}

func TestRecords_KeepsWhitespaceName(t *testing.T) {
	rows := Parse("name,stars\n   ,5\n,6\n")

	got := Records(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "   ", got[0].Name)
	assert.Equal(t, "5", got[0].Stars)
}

func TestRecords_HeaderOnly(t *testing.T) {
	assert.Empty(t, Records(Parse("name,stars\n")))
	assert.Empty(t, Records(nil))
	assert.Nil(t, Header(nil))
	assert.Equal(t, []string{"name", "stars"}, Header(Parse("name,stars")))
}

func TestRepoURL(t *testing.T) {
	assert.Equal(t, "https://github.com/foo/bar", RepoURL("foo/bar"))
	assert.Equal(t, "https://github.com/foo/bar%20baz", RepoURL(" foo/bar baz "))
	assert.Equal(t, "https://github.com/a/b", Record{Name: "a/b"}.RepoURL())
}

func TestReadAll(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "plain",
			input: []byte("a,b\n"),
			want:  "a,b\n",
		},
		{
			name:  "utf-8 bom stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b")...),
			want:  "a,b",
		},
		{
			name:  "invalid byte replaced",
			input: []byte{'h', 'e', 0x80, 'l', 'o'},
			want:  "he\uFFFDlo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAll(bytes.NewReader(tt.input), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadAll_TooLarge(t *testing.T) {
	_, err := ReadAll(strings.NewReader(strings.Repeat("x", 11)), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv too large")
}
