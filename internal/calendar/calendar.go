package calendar

import (
	"errors"
	"fmt"
	"time"
)

// GridSize is the number of day cells in one generated grid: 6 full weeks.
const GridSize = 42

var ErrInvalidDateKey = errors.New("invalid date key")

// Date is a plain year-month-day triple, with no time of day and no
// timezone attached. All conversions from time.Time go through UTC fields,
// so a date entered in one timezone resolves identically everywhere.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Day is a single cell of the 42-day grid.
type Day struct {
	Date           Date       `json:"date"`
	Month          time.Month `json:"month"`
	DayOfMonth     int        `json:"dayOfMonth"`
	Year           int        `json:"year"`
	IsCurrentMonth bool       `json:"isCurrentMonth"`
}

// DateOf extracts the date triple from t using its UTC calendar fields.
func DateOf(t time.Time) Date {
	utc := t.UTC()
	return Date{
		Year:  utc.Year(),
		Month: utc.Month(),
		Day:   utc.Day(),
	}
}

// Today is DateOf(now), named for call sites anchoring grids and locks.
func Today(now time.Time) Date {
	return DateOf(now)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(days int) Date {
	return DateOf(d.Time().AddDate(0, 0, days))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) Equal(other Date) bool {
	return d == other
}

// DaysUntil returns the number of calendar days from d to other,
// negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Date) String() string {
	return Key(d)
}

// MonthYear is the bucket label used by activity grouping, e.g. "April 2025".
func (d Date) MonthYear() string {
	return fmt.Sprintf("%s %d", d.Month.String(), d.Year)
}

// Key formats d as the canonical zero-padded YYYY-MM-DD date key. The key is
// the sole date representation crossing the store boundary.
func Key(d Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseKey is the exact inverse of Key: ParseKey(Key(d)) == d for every
// valid calendar date, regardless of the host timezone.
func ParseKey(key string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", key, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w [%s]: %s", ErrInvalidDateKey, key, err)
	}
	d := DateOf(t)
	// reject keys that time.Parse normalizes, like 2025-02-30
	if Key(d) != key {
		return Date{}, fmt.Errorf("%w [%s]: day out of range", ErrInvalidDateKey, key)
	}
	return d, nil
}

// GenerateWeeks produces the 42-day (6 week) grid containing the reference
// date: it starts at the Sunday on/before the week of ref and walks forward
// one day at a time. IsCurrentMonth marks the days sharing ref's month; it
// weighs display only and never filters which days exist - a grid always
// spills into up to two adjacent months.
func GenerateWeeks(ref Date) []Day {
	start := ref.AddDays(-int(ref.Weekday()))

	days := make([]Day, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		d := start.AddDays(i)
		days = append(days, Day{
			Date:           d,
			Month:          d.Month,
			DayOfMonth:     d.Day,
			Year:           d.Year,
			IsCurrentMonth: d.Month == ref.Month && d.Year == ref.Year,
		})
	}
	return days
}

// WeekSlice returns week weekIndex (0..5) of a generated grid. Out-of-range
// indices return an empty slice; clamping is the navigation caller's job.
func WeekSlice(days []Day, weekIndex int) []Day {
	if weekIndex < 0 || weekIndex > 5 {
		return []Day{}
	}
	from := weekIndex * 7
	to := from + 7
	if to > len(days) {
		return []Day{}
	}
	return days[from:to]
}
