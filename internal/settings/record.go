package settings

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/username/weekends-helper/internal/calendar"
)

// ConfigKey is the fixed key of the schedule record
const ConfigKey = "weekends_config"

// Record is the persisted schedule configuration
type Record struct {
	FirstSingleWeek string `json:"firstSingleWeek" validate:"required,datetime=2006-01-02"`
	Version         string `json:"version" validate:"required"`
	LastUpdated     string `json:"lastUpdated,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRecord builds a record stamped with the given time
func NewRecord(cfg calendar.AnchorConfig, now time.Time) Record {
	return Record{
		FirstSingleWeek: cfg.FirstSingleWeek,
		Version:         cfg.Version,
		LastUpdated:     now.UTC().Format(time.RFC3339),
	}
}

// Validate checks the record fields
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// AnchorConfig returns the classification snapshot of the record
func (r Record) AnchorConfig() calendar.AnchorConfig {
	return calendar.AnchorConfig{
		FirstSingleWeek: r.FirstSingleWeek,
		Version:         r.Version,
	}
}

func encodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return &r, nil
}
