// Package render formats schedule information for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/internal/lunar"
	"github.com/username/weekends-helper/pkg/dateutil"
)

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

const (
	textToday     = "今天"
	textYesterday = "昨天"
	textTomorrow  = "明天"
	textRestDay   = "休息日"
	textWorkDay   = "工作日"
)

// DaySummary is everything shown for a selected day
type DaySummary struct {
	Date     dateutil.Date
	Label    string
	Lunar    string
	WeekType calendar.WeekType
	IsRest   bool
	IsAnchor bool
}

// Describe builds the summary of date as seen on today
func Describe(cl *calendar.Classifier, date, today dateutil.Date) DaySummary {
	info := cl.GetDayInfo(date)
	return DaySummary{
		Date:     date,
		Label:    FormatDate(date, today),
		Lunar:    lunar.FormatLunarApprox(date),
		WeekType: info.WeekType,
		IsRest:   info.IsRest,
		IsAnchor: info.IsAnchor,
	}
}

// Status returns the rest/work label of the day
func (s DaySummary) Status() string {
	if s.IsRest {
		return textRestDay
	}
	return textWorkDay
}

// FormatDate returns 今天, 昨天 or 明天 relative to today, otherwise "M月D日 周X"
func FormatDate(date, today dateutil.Date) string {
	switch {
	case dateutil.IsSameDay(date, today):
		return textToday
	case dateutil.IsSameDay(date, today.AddDays(-1)):
		return textYesterday
	case dateutil.IsSameDay(date, today.AddDays(1)):
		return textTomorrow
	}
	return fmt.Sprintf("%d月%d日 %s", int(date.Month), date.Day, WeekdayName(date))
}

// WeekdayName returns the Chinese short weekday name of date
func WeekdayName(date dateutil.Date) string {
	return weekdayNames[date.Weekday()]
}

// MonthTitle returns the "YYYY年M月" heading of a month
func MonthTitle(m *calendar.MonthInfo) string {
	return fmt.Sprintf("%d年%d月", m.Year, int(m.Month))
}

// Renderer writes schedule information to a writer
type Renderer struct {
	w      io.Writer
	pinyin bool
}

// New creates a renderer. With romanize set, Chinese text is written as pinyin.
func New(w io.Writer, romanize bool) *Renderer {
	return &Renderer{w: w, pinyin: romanize}
}

func (r *Renderer) text(s string) string {
	if r.pinyin {
		return Romanize(s)
	}
	return s
}

func (r *Renderer) printf(format string, a ...interface{}) {
	fmt.Fprintf(r.w, format, a...)
}

// Day writes the summary of a single day
func (r *Renderer) Day(s DaySummary) {
	r.printf("%s (%s %s)\n", r.text(s.Label), s.Date, r.text(WeekdayName(s.Date)))
	r.printf("  %s: %s\n", r.text("农历"), r.text(s.Lunar))
	r.printf("  %s: %s\n", r.text("本周"), r.text(s.WeekType.Label()))
	r.printf("  %s: %s\n", r.text("状态"), r.text(s.Status()))
	if s.IsAnchor {
		r.printf("  %s\n", r.text("第一个单休周起始日"))
	}
}

// Month writes a Monday-first grid of the month.
// Rest days are marked with '*', today with '>' and the configured anchor date with '@'.
// Each row ends with the week type of that week.
func (r *Renderer) Month(m *calendar.MonthInfo) {
	r.printf("%s\n", r.text(MonthTitle(m)))

	if r.pinyin {
		r.printf(" Mo   Tu   We   Th   Fr   Sa   Su\n")
	} else {
		r.printf(" 一   二   三   四   五   六   日\n")
	}

	for _, week := range m.Weeks {
		var row strings.Builder
		for _, day := range week {
			row.WriteString(cell(day))
		}
		r.printf("%s %s\n", strings.TrimRight(row.String(), " "), r.text(week[0].WeekType.Label()))
	}

	r.printf("%s: %d  %s: %d\n", r.text(textWorkDay), m.WorkDays, r.text(textRestDay), m.RestDays)
	r.printf("* %s  > %s  @ %s\n", r.text(textRestDay), r.text(textToday), r.text("第一个单休周起始日"))
}

// cell renders one 5-column grid cell; days outside the month are blank
func cell(day calendar.DayInfo) string {
	if !day.InMonth {
		return "     "
	}

	prefix := " "
	switch {
	case day.IsToday:
		prefix = ">"
	case day.IsAnchor:
		prefix = "@"
	}

	suffix := " "
	if day.IsRest {
		suffix = "*"
	}

	return fmt.Sprintf("%s%2d%s ", prefix, day.Date.Day, suffix)
}

var pinyinArgs = pinyin.NewArgs()

// Romanize replaces Han characters with toneless pinyin syllables separated by spaces.
// Other text is kept as-is.
func Romanize(s string) string {
	var parts []string
	var plain strings.Builder

	flush := func() {
		if p := strings.TrimSpace(plain.String()); p != "" {
			parts = append(parts, p)
		}
		plain.Reset()
	}

	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			plain.WriteRune(r)
			continue
		}
		flush()
		parts = append(parts, pinyin.LazyPinyin(string(r), pinyinArgs)...)
	}
	flush()

	return strings.Join(parts, " ")
}
