package csvtable

import "strings"

// Record is one trending repository, mapped positionally from a data row.
type Record struct {
	Name         string `json:"name"`
	Stars        string `json:"stars"`
	CreatedAt    string `json:"createdAt"`
	CurrentStars string `json:"currentStars"`
	Summary      string `json:"summary,omitempty"`
}

// Column positions within a data row.
const (
	ColName = iota
	ColStars
	ColCreatedAt
	ColCurrentStars
	ColSummary
)

// Header returns the header row, or nil when there are no rows.
func Header(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// Body returns the rows after the header.
func Body(rows []Row) []Row {
	if len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

// Records maps every data row to a Record. The header row is skipped and
// rows with an empty name are discarded.
func Records(rows []Row) []Record {
	body := Body(rows)
	records := make([]Record, 0, len(body))
	for _, row := range body {
		rec := FromRow(row)
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// FromRow maps a single row without any filtering.
func FromRow(row Row) Record {
	return Record{
		Name:         row.Field(ColName),
		Stars:        row.Field(ColStars),
		CreatedAt:    row.Field(ColCreatedAt),
		CurrentStars: row.Field(ColCurrentStars),
		Summary:      row.Field(ColSummary),
	}
}

// HasSummary reports whether the record carries a non-blank summary.
func (r Record) HasSummary() bool {
	return strings.TrimSpace(r.Summary) != ""
}

// RepoURL is the GitHub page for the record.
func (r Record) RepoURL() string {
	return RepoURL(r.Name)
}
