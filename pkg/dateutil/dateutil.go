package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout used for anchor dates and storage keys
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a local calendar day without a time-of-day or a timezone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for the given year, month and day.
// Out-of-range values roll over the same way time.Date does (January 32 is February 1).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's own location
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar day
func Today() Date {
	return FromTime(time.Now())
}

// Parse parses a "YYYY-MM-DD" date string.
// Components are split manually so that a value is never shifted by a timezone.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		nums[i] = n
	}

	return New(nums[0], time.Month(nums[1]), nums[2]), nil
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of the date in the given location
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week (Sunday = 0 ... Saturday = 6)
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// StartOfDay returns the start of the day (00:00:00) for the given time
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MondayOfWeek returns the Monday of the week containing date.
// Sunday belongs to the week that just ended, so its Monday is six days earlier.
func MondayOfWeek(date Date) Date {
	day := int(date.Weekday())
	offset := 1 - day
	if date.Weekday() == time.Sunday {
		offset = -6
	}
	return date.AddDays(offset)
}

// IsSameDay returns true if two dates are the same calendar day
func IsSameDay(a, b Date) bool {
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day
}

// IsSameDayTime returns true if two times fall on the same day, ignoring time-of-day
func IsSameDayTime(a, b time.Time) bool {
	return IsSameDay(FromTime(a), FromTime(b))
}

// DaysBetween returns the whole number of days from b to a (a - b).
// Negative fractional differences round down, never toward zero.
func DaysBetween(a, b Date) int {
	// Unix seconds instead of time.Duration: Sub saturates after ~292 years.
	secs := a.Time().Unix() - b.Time().Unix()
	return int(floorDiv64(secs, secondsPerDay))
}

// FloorDiv divides a by b rounding toward negative infinity
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// EuclidMod returns a mod b in the range [0, |b|)
func EuclidMod(a, b int) int {
	m := a % b
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}
