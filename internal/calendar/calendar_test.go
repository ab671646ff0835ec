package calendar_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/traintrack/backend/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWeeks(t *testing.T) {
	refs := []calendar.Date{
		{Year: 2025, Month: time.June, Day: 15},
		{Year: 2025, Month: time.January, Day: 1},
		{Year: 2024, Month: time.February, Day: 29},
		{Year: 2025, Month: time.December, Day: 31},
		{Year: 1970, Month: time.January, Day: 1},
	}

	for _, ref := range refs {
		t.Run(ref.String(), func(t *testing.T) {
			days := calendar.GenerateWeeks(ref)
			require.Len(t, days, calendar.GridSize)

			assert.Equal(t, time.Sunday, days[0].Date.Weekday())
			for i := 1; i < len(days); i++ {
				assert.Equal(t, days[i-1].Date.AddDays(1), days[i].Date)
			}

			// the reference date itself is always in the grid
			found := false
			for _, day := range days {
				if day.Date == ref {
					found = true
					assert.True(t, day.IsCurrentMonth)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestGenerateWeeks_CurrentMonthMarking(t *testing.T) {
	ref := calendar.Date{Year: 2025, Month: time.June, Day: 15}
	days := calendar.GenerateWeeks(ref)

	// June 2025 starts on a Sunday, so the grid starts at June 1st
	assert.Equal(t, calendar.Date{Year: 2025, Month: time.June, Day: 1}, days[0].Date)

	currentMonthCount := 0
	for _, day := range days {
		if day.IsCurrentMonth {
			currentMonthCount++
			assert.Equal(t, time.June, day.Month)
		}
	}
	assert.Equal(t, 30, currentMonthCount)

	// trailing cells spill into July, they exist but carry no current-month flag
	last := days[len(days)-1]
	assert.Equal(t, time.July, last.Month)
	assert.False(t, last.IsCurrentMonth)
}

func TestWeekSlice(t *testing.T) {
	days := calendar.GenerateWeeks(calendar.Date{Year: 2025, Month: time.April, Day: 2})

	for weekIndex := 0; weekIndex < 6; weekIndex++ {
		week := calendar.WeekSlice(days, weekIndex)
		require.Len(t, week, 7)
		assert.Equal(t, days[weekIndex*7].Date, week[0].Date)
		assert.Equal(t, time.Sunday, week[0].Date.Weekday())
		assert.Equal(t, time.Saturday, week[6].Date.Weekday())
	}

	assert.Empty(t, calendar.WeekSlice(days, -1))
	assert.Empty(t, calendar.WeekSlice(days, 6))
	assert.Empty(t, calendar.WeekSlice(days[:10], 1))
}

func TestKeyRoundTrip(t *testing.T) {
	// sweep a day per month for every year in range, plus leap days
	for year := 1970; year <= 2100; year++ {
		for month := time.January; month <= time.December; month++ {
			d := calendar.Date{Year: year, Month: month, Day: 17}
			parsed, err := calendar.ParseKey(calendar.Key(d))
			require.NoError(t, err)
			assert.Equal(t, d, parsed)
		}
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			d := calendar.Date{Year: year, Month: time.February, Day: 29}
			parsed, err := calendar.ParseKey(calendar.Key(d))
			require.NoError(t, err)
			assert.Equal(t, d, parsed)
		}
	}
}

func TestKey_Padding(t *testing.T) {
	assert.Equal(t, "2025-06-01", calendar.Key(calendar.Date{Year: 2025, Month: time.June, Day: 1}))
	assert.Equal(t, "0999-01-09", calendar.Key(calendar.Date{Year: 999, Month: time.January, Day: 9}))
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{
		"",
		"2025-6-1",
		"2025/06/01",
		"2025-02-30",
		"2025-13-01",
		"20250601",
		"2025-06-01T00:00:00Z",
	} {
		_, err := calendar.ParseKey(key)
		assert.Error(t, err, "key: %q", key)
		assert.ErrorIs(t, err, calendar.ErrInvalidDateKey)
	}
}

func TestDateOf_UsesUTCFields(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2025, time.June, 14, 23, 30, 0, 0, loc)

	d := calendar.DateOf(local)
	assert.Equal(t, calendar.Date{Year: 2025, Month: time.June, Day: 15}, d)
	assert.Equal(t, "2025-06-15", calendar.Key(d))
}

func TestDateHelpers(t *testing.T) {
	d := calendar.Date{Year: 2025, Month: time.June, Day: 15}

	assert.Equal(t, calendar.Date{Year: 2025, Month: time.July, Day: 1}, d.AddDays(16))
	assert.Equal(t, calendar.Date{Year: 2025, Month: time.May, Day: 31}, d.AddDays(-15))
	assert.True(t, calendar.Date{Year: 2025, Month: time.June, Day: 14}.Before(d))
	assert.False(t, d.Before(d))
	assert.Equal(t, 10, d.DaysUntil(d.AddDays(10)))
	assert.Equal(t, -10, d.DaysUntil(d.AddDays(-10)))
	assert.Equal(t, "June 2025", d.MonthYear())
}

func ExampleKey() {
	fmt.Println(calendar.Key(calendar.Date{Year: 2025, Month: time.April, Day: 2}))
	// Output: 2025-04-02
}
