package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDateRange(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// A Wednesday
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, loc)

	t.Run("Today", func(t *testing.T) {
		dr := ResolveDateRange(DateToday, now)
		assert.Equal(t, "TODAY", dr.Keyword)
		assert.Equal(t, "Today", dr.Label)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 8, 26, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("Yesterday", func(t *testing.T) {
		dr := ResolveDateRange(DateYesterday, now)
		assert.Equal(t, "YESTERDAY", dr.Keyword)
		assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 8, 25, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("ThisWeekStartsSunday", func(t *testing.T) {
		dr := ResolveDateRange(DateThisWeek, now)
		assert.Equal(t, "THIS_WEEK_SUN_TODAY", dr.Keyword)
		assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Weekday(time.Sunday), dr.Start.Weekday())
	})

	t.Run("LastWeekSundayThroughSaturday", func(t *testing.T) {
		dr := ResolveDateRange(DateLastWeek, now)
		assert.Equal(t, "LAST_WEEK_SUN_SAT", dr.Keyword)
		assert.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 8, 22, 23, 59, 59, 0, loc), dr.End)
		assert.Equal(t, time.Weekday(time.Sunday), dr.Start.Weekday())
		assert.Equal(t, time.Weekday(time.Saturday), dr.End.Weekday())
	})

	t.Run("LastWeekWhenTodayIsSunday", func(t *testing.T) {
		sundayNow := time.Date(2026, 8, 23, 10, 0, 0, 0, loc)
		dr := ResolveDateRange(DateLastWeek, sundayNow)
		assert.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 8, 22, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("ThisMonth", func(t *testing.T) {
		dr := ResolveDateRange(DateThisMonth, now)
		assert.Equal(t, "THIS_MONTH", dr.Keyword)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 8, 31, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("LastMonth", func(t *testing.T) {
		dr := ResolveDateRange(DateLastMonth, now)
		assert.Equal(t, "LAST_MONTH", dr.Keyword)
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2026, 7, 31, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("LastMonthAcrossYearBoundary", func(t *testing.T) {
		january := time.Date(2026, 1, 15, 12, 0, 0, 0, loc)
		dr := ResolveDateRange(DateLastMonth, january)
		assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, loc), dr.Start)
		assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, loc), dr.End)
	})

	t.Run("UnknownIndexFallsBackToToday", func(t *testing.T) {
		dr := ResolveDateRange(42, now)
		assert.Equal(t, "TODAY", dr.Keyword)
	})
}
