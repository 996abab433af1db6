// Package lunar formats a cosmetic lunar-style label for a Gregorian date.
//
// The mapping is a fixed arithmetic approximation (365-day years, 30-day
// months counted from 2000-01-06) and is not a real lunisolar calendar.
// The numbers it produces are relied upon as-is.
package lunar

import (
	"fmt"

	"github.com/username/weekends-helper/pkg/dateutil"
)

const (
	baseYear          = 2000
	minDaysDiff       = -3650
	daysPerYear       = 365
	daysPerLunarMonth = 30

	// FallbackLabel is returned for dates too far before the base date
	FallbackLabel = "农历日期"
)

var baseDate = dateutil.New(baseYear, 1, 6)

var monthNames = [...]string{"正", "二", "三", "四", "五", "六", "七", "八", "九", "十", "冬", "腊"}

var dayNames = [...]string{
	"初一", "初二", "初三", "初四", "初五", "初六", "初七", "初八", "初九", "初十",
	"十一", "十二", "十三", "十四", "十五", "十六", "十七", "十八", "十九", "二十",
	"廿一", "廿二", "廿三", "廿四", "廿五", "廿六", "廿七", "廿八", "廿九", "三十",
}

// Label is the decomposed approximation for a date
type Label struct {
	Year  int
	Month int // 1-based, may exceed 12 before clamping into the name table
	Day   int // 1-30
}

// Compute returns the approximation for date.
// ok is false when the date is more than 3650 days before the base date.
func Compute(date dateutil.Date) (label Label, ok bool) {
	daysDiff := dateutil.DaysBetween(date, baseDate)
	if daysDiff < minDaysDiff {
		return Label{}, false
	}

	abs := daysDiff
	if abs < 0 {
		abs = -abs
	}

	yearDay := abs % daysPerYear
	return Label{
		Year:  baseYear + abs/daysPerYear,
		Month: yearDay/daysPerLunarMonth + 1,
		Day:   yearDay%daysPerLunarMonth + 1,
	}, true
}

// MonthName returns the month name, clamped to the last entry of the table
func (l Label) MonthName() string {
	return monthNames[clamp(l.Month-1, len(monthNames)-1)]
}

// DayName returns the day name, clamped to the last entry of the table
func (l Label) DayName() string {
	return dayNames[clamp(l.Day-1, len(dayNames)-1)]
}

// String formats the label as "<year>年<month>月<day>"
func (l Label) String() string {
	return fmt.Sprintf("%d年%s月%s", l.Year, l.MonthName(), l.DayName())
}

// Approximate returns the lunar-style label for date, or FallbackLabel
func Approximate(date dateutil.Date) string {
	label, ok := Compute(date)
	if !ok {
		return FallbackLabel
	}
	return label.String()
}

// FormatLunarApprox is Approximate under the name used by the renderer
func FormatLunarApprox(date dateutil.Date) string {
	return Approximate(date)
}

func clamp(i, max int) int {
	if i > max {
		return max
	}
	return i
}
