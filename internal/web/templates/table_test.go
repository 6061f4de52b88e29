package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/trendboard/internal/csvtable"
	"github.com/JonMunkholm/trendboard/internal/format"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleState() view.State {
	rows := csvtable.Parse("name,stars,createdAt,currentStars,summary\n" +
		"foo/bar,1234,2024-01-15,99999,\"Uses <b>bold</b> claims\"\n" +
		"baz/qux,5,garbage,7,\n")
	st := view.State{
		Phase:    view.PhaseSuccess,
		Header:   csvtable.Header(rows),
		Rows:     rows,
		Expanded: make(view.ExpandedSet),
	}
	for i, rec := range csvtable.Records(rows) {
		st.Entries = append(st.Entries, view.Entry{Rank: i + 1, Key: view.RowKey(i, rec.Name), Record: rec})
	}
	return st
}

func TestRepoTable_Collapsed(t *testing.T) {
	out := render(t, RepoTable(TableParams{ViewID: "v1", State: sampleState(), Locale: format.Default}))

	for _, col := range RepoColumns {
		assert.Contains(t, out, "<th>"+templ.EscapeString(col)+"</th>")
	}
	assert.Contains(t, out, `href="https://github.com/foo/bar"`)
	assert.Contains(t, out, "+1,234")
	assert.Contains(t, out, "99,999")
	assert.Contains(t, out, "1/15/2024")
	assert.Contains(t, out, format.InvalidDate)
	assert.Contains(t, out, `hx-post="/views/v1/toggle?key=0%3Afoo%2Fbar"`)
	assert.NotContains(t, out, `class="detail"`)
	assert.NotContains(t, out, "<b>bold</b>")
}

func TestRepoRecord_Expanded(t *testing.T) {
	st := sampleState()
	p := TableParams{ViewID: "v1", State: st, Locale: format.Default}

	out := render(t, RepoRecord(p, st.Entries[0], true))
	assert.True(t, strings.HasPrefix(out, `<tbody id="rec-1">`))
	assert.Contains(t, out, `<tr class="detail"><td colspan="6">`)
	assert.Contains(t, out, "Uses &lt;b&gt;bold&lt;/b&gt; claims")
	assert.Contains(t, out, `aria-expanded="true"`)
	assert.Contains(t, out, ">Hide<")

	out = render(t, RepoRecord(p, st.Entries[1], true))
	assert.Contains(t, out, "No summary available.")
}

func TestRawTable(t *testing.T) {
	out := render(t, RawTable(TableParams{State: sampleState()}))
	assert.Contains(t, out, "<th>createdAt</th>")
	assert.Contains(t, out, "<td>garbage</td>")
	assert.Equal(t, 2, strings.Count(out, `<tr class="row">`))
}

func TestDocument_Static(t *testing.T) {
	out := render(t, Document(VariantRepo, TableParams{State: sampleState(), Locale: format.Default}, "body{}"))
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<style>body{}</style>")
	assert.Contains(t, out, "<details><summary>Show</summary>")
	assert.NotContains(t, out, "hx-post")
	assert.NotContains(t, out, HTMXSrc)

	errState := view.State{Phase: view.PhaseError, Err: "HTTP error! status: 404"}
	out = render(t, Document(VariantRepo, TableParams{State: errState}, ""))
	assert.Contains(t, out, "Error: HTTP error! status: 404")
}

func TestViewPage(t *testing.T) {
	out := render(t, ViewPage("abc", VariantRaw))
	assert.Contains(t, out, `hx-get="/views/abc/table?variant=raw"`)
	assert.Contains(t, out, "Loading data...")
	assert.Contains(t, out, `"/views/abc/unmount"`)
}

func TestRepoTable_Empty(t *testing.T) {
	st := view.State{Phase: view.PhaseSuccess, Expanded: make(view.ExpandedSet)}
	out := render(t, RepoTable(TableParams{ViewID: "v1", State: st}))
	assert.Contains(t, out, `<td class="empty" colspan="6">No repositories found.</td>`)
	assert.NotContains(t, out, `<tr class="row">`)
}

func TestRepoRecord_StaticWithoutSummary(t *testing.T) {
	st := sampleState()
	p := TableParams{State: st, Locale: format.Default, Static: true}

	out := render(t, RepoRecord(p, st.Entries[1], false))
	assert.Contains(t, out, `<span class="muted">-</span>`)
	assert.NotContains(t, out, "<button")
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert("Too many requests", "Wait a minute.", "RATE001"))
	assert.Equal(t, `<div class="alert" role="alert"><strong>Too many requests</strong> `+
		`<span>Wait a minute.</span> <code>RATE001</code></div>`, out)

	out = render(t, ErrorAlert("<boom>", "", ""))
	assert.Contains(t, out, "<strong>&lt;boom&gt;</strong>")
	assert.NotContains(t, out, "<span>")
	assert.NotContains(t, out, "<code>")
}

func TestErrorMessage(t *testing.T) {
	out := render(t, ErrorMessage("HTTP error! status: 500"))
	assert.Equal(t, `<div id="table" class="error">Error: HTTP error! status: 500</div>`, out)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "/views/a%2Fb/unmount", UnmountURL("a/b"))
	assert.Equal(t, "/views/v1/table?variant=raw", TableURL("v1", VariantRaw))
	assert.Equal(t, "/views/v1/toggle?key=1%3Aa%2Fb", ToggleURL("v1", "1:a/b"))
}
