package calendar

import (
	"errors"
	"time"

	"github.com/username/weekends-helper/pkg/dateutil"
	"go.uber.org/zap"
)

const daysPerWeek = 7

// ErrNoAnchor is returned when no anchor date is configured
var ErrNoAnchor = errors.New("anchor date not configured")

// Classifier decides week types and rest days relative to one anchor snapshot
type Classifier struct {
	config AnchorConfig
	logger *zap.Logger
}

// NewClassifier creates a classifier for the given anchor snapshot
func NewClassifier(config AnchorConfig, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		config: config,
		logger: logger,
	}
}

// Config returns the anchor snapshot the classifier works with
func (c *Classifier) Config() AnchorConfig {
	return c.config
}

// WeekType returns the type of the week containing date.
// Weeks whose distance from the anchor week is even are single-rest weeks,
// in both directions. Without a usable anchor every week is a double-rest week.
func (c *Classifier) WeekType(date dateutil.Date) WeekType {
	anchor, err := c.config.Anchor()
	if err != nil {
		if !errors.Is(err, ErrNoAnchor) {
			c.logger.Warn("Failed to calculate week type, using double-rest week",
				zap.String("anchor", c.config.FirstSingleWeek),
				zap.Error(err))
		}
		return WeekTypeDouble
	}

	return weekTypeFor(date, anchor)
}

func weekTypeFor(date, anchor dateutil.Date) WeekType {
	targetMonday := dateutil.MondayOfWeek(date)
	anchorMonday := dateutil.MondayOfWeek(anchor)

	daysDiff := dateutil.DaysBetween(targetMonday, anchorMonday)
	weeksDiff := dateutil.FloorDiv(daysDiff, daysPerWeek)

	if dateutil.EuclidMod(weeksDiff, 2) == 0 {
		return WeekTypeSingle
	}
	return WeekTypeDouble
}

// IsRestDay checks if the given date is a rest day
func (c *Classifier) IsRestDay(date dateutil.Date) bool {
	return isRestDay(date.Weekday(), c.WeekType(date))
}

func isRestDay(weekday time.Weekday, weekType WeekType) bool {
	if weekType == WeekTypeSingle {
		return weekday == time.Sunday
	}
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsConfiguredAnchorDate checks if date is exactly the configured anchor date (not its Monday)
func (c *Classifier) IsConfiguredAnchorDate(date dateutil.Date) bool {
	anchor, err := c.config.Anchor()
	if err != nil {
		return false
	}
	return dateutil.IsSameDay(date, anchor)
}

// GetDayInfo returns the classification of a single day
func (c *Classifier) GetDayInfo(date dateutil.Date) *DayInfo {
	weekType := c.WeekType(date)
	return &DayInfo{
		Date:     date,
		WeekType: weekType,
		IsRest:   isRestDay(date.Weekday(), weekType),
		IsAnchor: c.IsConfiguredAnchorDate(date),
	}
}

// ClassifyWeek returns the week type of date for the given anchor config
func ClassifyWeek(date dateutil.Date, config AnchorConfig) WeekType {
	return NewClassifier(config, nil).WeekType(date)
}

// IsRestDay checks if date is a rest day for the given anchor config
func IsRestDay(date dateutil.Date, config AnchorConfig) bool {
	return NewClassifier(config, nil).IsRestDay(date)
}
