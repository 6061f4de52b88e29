package view

import (
	"fmt"
	"maps"
	"slices"

	"github.com/JonMunkholm/trendboard/internal/csvtable"
)

// Phase is where a view is in its load sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal reports whether no further phase transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseError
}

// Entry is a record together with its position and expansion key.
type Entry struct {
	Rank int    `json:"rank"`
	Key  string `json:"key"`
	csvtable.Record
}

// RowKey identifies a record for expansion. The index keeps records that
// share a name apart.
func RowKey(index int, name string) string {
	return fmt.Sprintf("%d:%s", index, name)
}

// ExpandedSet holds the keys whose detail row is open.
type ExpandedSet map[string]struct{}

// Toggle flips membership of key and returns the new membership.
func (s ExpandedSet) Toggle(key string) bool {
	if _, ok := s[key]; ok {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

// Has reports whether key is expanded.
func (s ExpandedSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Len is the number of expanded keys.
func (s ExpandedSet) Len() int { return len(s) }

// Keys returns the expanded keys in sorted order.
func (s ExpandedSet) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// State is everything a view renders from. Rows, Header and Entries are
// never modified once the view reaches PhaseSuccess.
type State struct {
	Phase    Phase          `json:"phase"`
	Header   []string       `json:"header,omitempty"`
	Rows     []csvtable.Row `json:"-"`
	Entries  []Entry        `json:"records,omitempty"`
	Err      string         `json:"error,omitempty"`
	Expanded ExpandedSet    `json:"-"`
}

// ExpandedKeys is the sorted list of open detail rows, for JSON output.
func (s State) ExpandedKeys() []string {
	return s.Expanded.Keys()
}

// Entry looks up an entry by key.
func (s State) Entry(key string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// begin moves Idle to Loading.
func (s *State) begin() bool {
	if s.Phase != PhaseIdle {
		return false
	}
	s.Phase = PhaseLoading
	return true
}

// succeed moves Loading to Success with the parsed CSV.
func (s *State) succeed(rows []csvtable.Row) bool {
	if s.Phase != PhaseLoading {
		return false
	}
	records := csvtable.Records(rows)
	entries := make([]Entry, len(records))
	for i, rec := range records {
		entries[i] = Entry{Rank: i + 1, Key: RowKey(i, rec.Name), Record: rec}
	}

	s.Phase = PhaseSuccess
	s.Header = csvtable.Header(rows)
	s.Rows = rows
	s.Entries = entries
	s.Expanded = make(ExpandedSet)
	return true
}

// fail moves Loading to Error with the message shown to users.
func (s *State) fail(msg string) bool {
	if s.Phase != PhaseLoading {
		return false
	}
	s.Phase = PhaseError
	s.Err = msg
	return true
}

// clone copies the state so the caller can read it without the view lock.
func (s State) clone() State {
	out := s
	if s.Expanded != nil {
		out.Expanded = maps.Clone(s.Expanded)
	}
	return out
}
