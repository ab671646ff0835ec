package activity

import (
	"github.com/traintrack/backend/internal/calendar"
)

// MonthGroups buckets entries by "Month Year" labels. Order holds the bucket
// labels in first-seen order: the store returns entries pre-sorted by date,
// so first-seen is already chronological and no re-sort happens here.
type MonthGroups struct {
	Buckets map[string][]Entry `json:"buckets"`
	Order   []string           `json:"order"`
}

// GroupByMonth partitions entries into month-year buckets. Every entry lands
// in exactly one bucket and len(Order) == len(Buckets).
func GroupByMonth(entries []Entry) MonthGroups {
	groups := MonthGroups{
		Buckets: make(map[string][]Entry),
	}
	for _, e := range entries {
		label := e.DateScheduled.MonthYear()
		if _, seen := groups.Buckets[label]; !seen {
			groups.Order = append(groups.Order, label)
		}
		groups.Buckets[label] = append(groups.Buckets[label], e)
	}
	return groups
}

// CompletionStats is the "X/Y completed" pair for a set of entries.
type CompletionStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func GetCompletionStats(entries []Entry) CompletionStats {
	stats := CompletionStats{Total: len(entries)}
	for _, e := range entries {
		if e.Completed {
			stats.Completed++
		}
	}
	return stats
}

// RecentCount counts entries scheduled within [anchor - windowDays, anchor],
// both ends inclusive, comparing dates only.
func RecentCount(entries []Entry, windowDays int, anchor calendar.Date) int {
	windowStart := anchor.AddDays(-windowDays)
	count := 0
	for _, e := range entries {
		d := e.DateScheduled
		if d.Before(windowStart) || anchor.Before(d) {
			continue
		}
		count++
	}
	return count
}

// TodayEntry returns the entry scheduled exactly on anchor, or nil. When the
// store holds duplicate schedules for one day, the first one wins.
func TodayEntry(entries []Entry, anchor calendar.Date) *Entry {
	for i := range entries {
		if entries[i].DateScheduled.Equal(anchor) {
			return &entries[i]
		}
	}
	return nil
}

// CurrentStreak counts the consecutive days with a completed entry, walking
// backwards from anchor. A day with only uncompleted entries breaks the
// streak; the anchor day itself may still be pending without breaking it.
func CurrentStreak(entries []Entry, anchor calendar.Date) int {
	completedDays := make(map[string]bool)
	for _, e := range entries {
		if e.Completed {
			completedDays[e.DateKey()] = true
		}
	}

	streak := 0
	day := anchor
	if !completedDays[calendar.Key(day)] {
		// anchor not done yet, streak may still be alive from yesterday
		day = day.AddDays(-1)
	}
	for completedDays[calendar.Key(day)] {
		streak++
		day = day.AddDays(-1)
	}
	return streak
}
