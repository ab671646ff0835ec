package activity

import (
	"github.com/traintrack/backend/internal/calendar"
)

// Index maps date keys to the entries scheduled on that day. It is rebuilt
// from a flat store snapshot, never patched in place.
type Index struct {
	byDate map[string][]Entry
}

// NewIndex groups entries by their scheduled date key in a single pass,
// preserving insertion order within a day.
func NewIndex(entries []Entry) *Index {
	byDate := make(map[string][]Entry, len(entries))
	for _, e := range entries {
		key := e.DateKey()
		byDate[key] = append(byDate[key], e)
	}
	return &Index{byDate: byDate}
}

// EntriesOn returns the entries scheduled on the given date. The result is
// never nil, so callers range over it without an existence check.
func (idx *Index) EntriesOn(date calendar.Date) []Entry {
	entries, ok := idx.byDate[calendar.Key(date)]
	if !ok {
		return []Entry{}
	}
	return entries
}

// Len returns the number of distinct days carrying at least one entry.
func (idx *Index) Len() int {
	return len(idx.byDate)
}
