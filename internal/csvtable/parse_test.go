package csvtable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "simple rows",
			input: "a,b\n1,2",
			want:  []Row{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "quoted comma",
			input: "a,\"b,c\"\n",
			want:  []Row{{"a", "b,c"}},
		},
		{
			name:  "doubled quote",
			input: "\"he said \"\"hi\"\"\"",
			want:  []Row{{`he said "hi"`}},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\n1,2\r\n",
			want:  []Row{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "newline inside quotes",
			input: "name,summary\nfoo/bar,\"line one\nline two\"\n",
			want:  []Row{{"name", "summary"}, {"foo/bar", "line one\nline two"}},
		},
		{
			name:  "blank lines produce no rows",
			input: "a,b\n\n\n1,2\n\n",
			want:  []Row{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "comma-only line dropped",
			input: "a,b\n , ,\t\n1,2\n",
			want:  []Row{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "trailing empty field kept",
			input: "a,b,\n",
			want:  []Row{{"a", "b", ""}},
		},
		{
			name:  "lone carriage return is content",
			input: "a\rb,c\n",
			want:  []Row{{"a\rb", "c"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseWithReport(t *testing.T) {
	t.Run("counts dropped rows", func(t *testing.T) {
		rows, rep := ParseWithReport("h\n,,\n x \n ,\n")
		assert.Len(t, rows, 2)
		assert.Equal(t, 2, rep.Rows)
		assert.Equal(t, 2, rep.Dropped)
		assert.False(t, rep.UnterminatedQuote)
	})

	t.Run("unterminated quote degrades silently", func(t *testing.T) {
		rows, rep := ParseWithReport("a,\"b\nc,d\n")
		assert.True(t, rep.UnterminatedQuote)
		// Everything after the open quote lands in one field.
		assert.Equal(t, []Row{{"a", "b\nc,d\n"}}, rows)
	})
}

func TestRowField(t *testing.T) {
	r := Row{"x", "y"}
	assert.Equal(t, "x", r.Field(0))
	assert.Equal(t, "y", r.Field(1))
	assert.Equal(t, "", r.Field(2))
	assert.Equal(t, "", r.Field(-1))
}
