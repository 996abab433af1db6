package calendar

import (
	"testing"
	"time"

	"github.com/username/weekends-helper/pkg/dateutil"
)

func TestClassifier_BuildMonth(t *testing.T) {
	cl := newTestClassifier("2025-07-28")

	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantRows  int
		wantFirst dateutil.Date
		wantLast  dateutil.Date
	}{
		{
			name:      "July 2025 starts on Tuesday",
			year:      2025,
			month:     time.July,
			wantRows:  5,
			wantFirst: dateutil.New(2025, time.June, 30),
			wantLast:  dateutil.New(2025, time.August, 3),
		},
		{
			name:      "June 2025 starts on Sunday",
			year:      2025,
			month:     time.June,
			wantRows:  6,
			wantFirst: dateutil.New(2025, time.May, 26),
			wantLast:  dateutil.New(2025, time.July, 6),
		},
		{
			name:      "February 2021 fits four rows",
			year:      2021,
			month:     time.February,
			wantRows:  4,
			wantFirst: dateutil.New(2021, time.February, 1),
			wantLast:  dateutil.New(2021, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := MonthView{Year: tt.year, Month: tt.month}
			monthInfo := cl.BuildMonth(view, dateutil.New(2025, time.July, 30))

			if len(monthInfo.Weeks) != tt.wantRows {
				t.Fatalf("rows = %d, want %d", len(monthInfo.Weeks), tt.wantRows)
			}

			days := monthInfo.Days()
			if days[0].Date != tt.wantFirst {
				t.Errorf("first cell = %v, want %v", days[0].Date, tt.wantFirst)
			}
			if days[len(days)-1].Date != tt.wantLast {
				t.Errorf("last cell = %v, want %v", days[len(days)-1].Date, tt.wantLast)
			}

			for _, week := range monthInfo.Weeks {
				if week[0].Date.Weekday() != time.Monday {
					t.Errorf("week starts on %v, want Monday", week[0].Date.Weekday())
				}
			}

			inMonth := 0
			for _, d := range days {
				if d.InMonth {
					inMonth++
				}
			}
			if inMonth != monthInfo.WorkDays+monthInfo.RestDays {
				t.Errorf("WorkDays+RestDays = %d, want %d", monthInfo.WorkDays+monthInfo.RestDays, inMonth)
			}
		})
	}
}

func TestClassifier_BuildMonth_Flags(t *testing.T) {
	cl := newTestClassifier("2025-07-28")
	today := dateutil.New(2025, time.July, 30)
	view := NewMonthView(dateutil.New(2025, time.August, 2)).Shift(-1)

	monthInfo := cl.BuildMonth(view, today)

	var todayCells, selectedCells, anchorCells int
	for _, d := range monthInfo.Days() {
		if d.IsToday {
			todayCells++
			if d.Date != today {
				t.Errorf("today flag on %v", d.Date)
			}
		}
		if d.IsSelected {
			selectedCells++
		}
		if d.IsAnchor {
			anchorCells++
		}
	}

	if todayCells != 1 || selectedCells != 1 || anchorCells != 1 {
		t.Errorf("today=%d selected=%d anchor=%d cells, want 1 each", todayCells, selectedCells, anchorCells)
	}

	wantRest := map[int]bool{}
	for d := 1; d <= 31; d++ {
		wantRest[d] = IsRestDay(dateutil.New(2025, time.July, d), cl.Config())
	}
	for _, d := range monthInfo.Days() {
		if d.InMonth && d.IsRest != wantRest[d.Date.Day] {
			t.Errorf("IsRest(%v) = %v, want %v", d.Date, d.IsRest, wantRest[d.Date.Day])
		}
	}
}

func TestMonthView_Shift(t *testing.T) {
	view := NewMonthView(dateutil.New(2025, time.January, 31))

	prev := view.Shift(-1)
	if prev.Year != 2024 || prev.Month != time.December {
		t.Errorf("Shift(-1) = %d-%02d, want 2024-12", prev.Year, prev.Month)
	}

	next := view.Shift(1)
	if next.Year != 2025 || next.Month != time.February {
		t.Errorf("Shift(1) = %d-%02d, want 2025-02", next.Year, next.Month)
	}

	if next.Selected != view.Selected {
		t.Errorf("Shift changed selection to %v", next.Selected)
	}
}

func TestDayInfo_Style(t *testing.T) {
	tests := []struct {
		day  DayInfo
		want string
	}{
		{DayInfo{IsRest: false, WeekType: WeekTypeSingle}, "work-day"},
		{DayInfo{IsRest: true, WeekType: WeekTypeSingle}, "single-rest-day"},
		{DayInfo{IsRest: true, WeekType: WeekTypeDouble}, "double-rest-day"},
	}

	for _, tt := range tests {
		if got := tt.day.Style(); got != tt.want {
			t.Errorf("Style() = %q, want %q", got, tt.want)
		}
	}
}
