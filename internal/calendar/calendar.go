package calendar

import (
	"fmt"

	"github.com/username/weekends-helper/pkg/dateutil"
)

// WeekType represents the rest pattern of a week
type WeekType int

const (
	// WeekTypeSingle is a small week: Monday to Saturday are workdays, only Sunday is off
	WeekTypeSingle WeekType = iota + 1
	// WeekTypeDouble is a large week: Saturday and Sunday are off
	WeekTypeDouble
)

// String returns the stored form of the week type
func (w WeekType) String() string {
	switch w {
	case WeekTypeSingle:
		return "single"
	case WeekTypeDouble:
		return "double"
	default:
		return fmt.Sprintf("WeekType(%d)", int(w))
	}
}

// Label returns the display name of the week type
func (w WeekType) Label() string {
	if w == WeekTypeSingle {
		return "单休周"
	}
	return "双休周"
}

// RestDays returns how many rest days a week of this type has
func (w WeekType) RestDays() int {
	if w == WeekTypeSingle {
		return 1
	}
	return 2
}

// AnchorConfig is the configured start of the alternating schedule.
// It is a value type: a save replaces the whole config, it is never mutated in place.
type AnchorConfig struct {
	// FirstSingleWeek is the raw YYYY-MM-DD date of the Monday starting the first single-rest week
	FirstSingleWeek string
	Version         string
}

// Anchor parses the configured anchor date
func (c AnchorConfig) Anchor() (dateutil.Date, error) {
	if c.FirstSingleWeek == "" {
		return dateutil.Date{}, ErrNoAnchor
	}
	d, err := dateutil.Parse(c.FirstSingleWeek)
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("invalid anchor %q: %w", c.FirstSingleWeek, err)
	}
	return d, nil
}
