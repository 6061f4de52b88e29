package csvtable

import "strings"

// Row is one parsed CSV line.
type Row []string

// Report describes what the parser ran into while scanning.
type Report struct {
	// Rows is the number of rows returned after blank rows were dropped.
	Rows int
	// Dropped counts rows discarded because every field was blank.
	Dropped int
	// UnterminatedQuote is set when input ended inside a quoted field.
	UnterminatedQuote bool
}

// Parse splits CSV text into rows. See ParseWithReport.
func Parse(text string) []Row {
	rows, _ := ParseWithReport(text)
	return rows
}

// ParseWithReport splits CSV text into rows and reports parse diagnostics.
//
// Separators (',' between fields, "\n" or "\r\n" between rows) only count
// outside double quotes. Inside quotes a doubled quote is a literal '"'.
// A row is only closed when there is a pending field or a non-empty row, so
// blank lines never produce rows. Content after the last terminator still
// forms a final row. Rows whose fields are all whitespace are dropped.
func ParseWithReport(text string) ([]Row, Report) {
	var (
		rows     []Row
		row      Row
		field    strings.Builder
		inQuotes bool
		report   Report
	)

	closeRow := func() {
		if field.Len() == 0 && len(row) == 0 {
			return
		}
		row = append(row, field.String())
		field.Reset()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = false
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, field.String())
			field.Reset()
		case '\n':
			closeRow()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
				closeRow()
				continue
			}
			field.WriteByte(c)
		default:
			field.WriteByte(c)
		}
	}

	report.UnterminatedQuote = inQuotes
	closeRow()

	kept := rows[:0]
	for _, r := range rows {
		if r.Blank() {
			report.Dropped++
			continue
		}
		kept = append(kept, r)
	}
	report.Rows = len(kept)

	return kept, report
}

// Blank reports whether every field of the row is empty after trimming.
func (r Row) Blank() bool {
	for _, f := range r {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Field returns the i-th field, or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}
