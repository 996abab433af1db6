package calendar

import (
	"time"

	"github.com/username/weekends-helper/pkg/dateutil"
)

// DayInfo represents the classification of a specific day
type DayInfo struct {
	Date     dateutil.Date
	WeekType WeekType
	IsRest   bool
	IsAnchor bool

	// Set only for days that are part of a MonthInfo grid
	InMonth    bool
	IsToday    bool
	IsSelected bool
}

// Style returns the rendering class of the day
func (d DayInfo) Style() string {
	if !d.IsRest {
		return "work-day"
	}
	if d.WeekType == WeekTypeSingle {
		return "single-rest-day"
	}
	return "double-rest-day"
}

// MonthInfo represents a Monday-first calendar grid for a month
type MonthInfo struct {
	Year     int
	Month    time.Month
	WorkDays int // Workdays inside the month
	RestDays int // Rest days inside the month
	Weeks    [][]DayInfo
}

// Days returns all grid cells in display order
func (m *MonthInfo) Days() []DayInfo {
	days := make([]DayInfo, 0, len(m.Weeks)*daysPerWeek)
	for _, week := range m.Weeks {
		days = append(days, week...)
	}
	return days
}

// MonthView is the state of the displayed month and the selected day
type MonthView struct {
	Year     int
	Month    time.Month
	Selected dateutil.Date
}

// NewMonthView returns a view showing the month of date with date selected
func NewMonthView(date dateutil.Date) MonthView {
	return MonthView{Year: date.Year, Month: date.Month, Selected: date}
}

// Shift returns the view moved by offset months (negative moves back)
func (v MonthView) Shift(offset int) MonthView {
	first := dateutil.New(v.Year, v.Month+time.Month(offset), 1)
	v.Year, v.Month = first.Year, first.Month
	return v
}

// Select returns the view with date selected, keeping the displayed month
func (v MonthView) Select(date dateutil.Date) MonthView {
	v.Selected = date
	return v
}

// BuildMonth builds the grid for the month of view.
// The grid starts on the Monday on or before the 1st and has as many rows as needed.
func (c *Classifier) BuildMonth(view MonthView, today dateutil.Date) *MonthInfo {
	first := dateutil.New(view.Year, view.Month, 1)
	last := dateutil.New(view.Year, view.Month+1, 0)

	startDay := int(first.Weekday())
	if startDay == int(time.Sunday) {
		startDay = daysPerWeek
	}
	cells := (last.Day + startDay - 1 + daysPerWeek - 1) / daysPerWeek * daysPerWeek

	monthInfo := &MonthInfo{
		Year:  first.Year,
		Month: first.Month,
		Weeks: make([][]DayInfo, 0, cells/daysPerWeek),
	}

	var week []DayInfo
	for i := 0; i < cells; i++ {
		date := dateutil.New(first.Year, first.Month, i-startDay+2)

		day := *c.GetDayInfo(date)
		day.InMonth = date.Month == first.Month
		day.IsToday = dateutil.IsSameDay(date, today)
		day.IsSelected = dateutil.IsSameDay(date, view.Selected)

		if day.InMonth {
			if day.IsRest {
				monthInfo.RestDays++
			} else {
				monthInfo.WorkDays++
			}
		}

		week = append(week, day)
		if len(week) == daysPerWeek {
			monthInfo.Weeks = append(monthInfo.Weeks, week)
			week = nil
		}
	}

	return monthInfo
}
