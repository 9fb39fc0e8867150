// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"time"

	"github.com/AiiMS-Group/landbot/utils"
)

// DateRange is a named reporting window in its three representations:
// absolute bounds for the call tracking query, the platform-native
// relative keyword for the ads query, and a human label.
type DateRange struct {
	Start   time.Time
	End     time.Time
	Keyword string
	Label   string
}

// Date range indices as supplied by the chat menu.
const (
	DateToday = iota + 1
	DateYesterday
	DateThisWeek
	DateLastWeek
	DateThisMonth
	DateLastMonth
)

// ResolveDateRange maps a chat menu index onto a DateRange relative to
// now. Weeks run Sunday through Saturday to match the ads platform's
// SUN_SAT keywords. Unknown indices fall back to today.
func ResolveDateRange(index int, now time.Time) DateRange {
	today := utils.StartOfDay(now)
	sunday := today.AddDate(0, 0, -int(today.Weekday()))

	switch index {
	case DateYesterday:
		y := today.AddDate(0, 0, -1)
		return DateRange{Start: y, End: utils.EndOfDay(y), Keyword: "YESTERDAY", Label: "Yesterday"}
	case DateThisWeek:
		return DateRange{Start: sunday, End: utils.EndOfDay(sunday.AddDate(0, 0, 6)), Keyword: "THIS_WEEK_SUN_TODAY", Label: "This Week"}
	case DateLastWeek:
		start := sunday.AddDate(0, 0, -7)
		return DateRange{Start: start, End: utils.EndOfDay(start.AddDate(0, 0, 6)), Keyword: "LAST_WEEK_SUN_SAT", Label: "Last Week"}
	case DateThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: start, End: utils.EndOfDay(start.AddDate(0, 1, -1)), Keyword: "THIS_MONTH", Label: "This Month"}
	case DateLastMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return DateRange{Start: start, End: utils.EndOfDay(start.AddDate(0, 1, -1)), Keyword: "LAST_MONTH", Label: "Last Month"}
	case DateToday:
		fallthrough
	default:
		return DateRange{Start: today, End: utils.EndOfDay(today), Keyword: "TODAY", Label: "Today"}
	}
}
