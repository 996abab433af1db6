package settings

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	// SchemaVersion is the current version of the stored record
	SchemaVersion = "1.0.1"
	// DefaultFirstSingleWeek is the built-in anchor used on first start and after upgrades
	DefaultFirstSingleWeek = "2025-07-28"
)

// Manager loads, validates and saves the schedule record, and holds the
// current anchor snapshot handed to classifiers.
type Manager struct {
	store    Store
	key      string
	defaults calendar.AnchorConfig
	current  atomic.Pointer[calendar.AnchorConfig]
	logger   *zap.Logger
	now      func() time.Time
}

// ManagerOption customizes a Manager
type ManagerOption func(*Manager)

// WithDefaults overrides the built-in default anchor config
func WithDefaults(defaults calendar.AnchorConfig) ManagerOption {
	return func(m *Manager) { m.defaults = defaults }
}

// WithNow is useful for tests
func WithNow(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a settings manager. Until Load succeeds the defaults are current.
func NewManager(store Store, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		key:   ConfigKey,
		defaults: calendar.AnchorConfig{
			FirstSingleWeek: DefaultFirstSingleWeek,
			Version:         SchemaVersion,
		},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	defaults := m.defaults
	m.current.Store(&defaults)
	return m
}

// Current returns the current anchor snapshot
func (m *Manager) Current() calendar.AnchorConfig {
	return *m.current.Load()
}

// Defaults returns the built-in anchor config
func (m *Manager) Defaults() calendar.AnchorConfig {
	return m.defaults
}

// Classifier returns a classifier bound to the current snapshot
func (m *Manager) Classifier() *calendar.Classifier {
	return calendar.NewClassifier(m.Current(), m.logger)
}

// Load reads the stored record.
// A missing record or a record of another schema version is replaced with the
// defaults, which are persisted. On read failure the current snapshot is kept
// (the defaults if nothing was loaded yet) and the error is returned for the
// caller to report.
func (m *Manager) Load(ctx context.Context) error {
	record, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !IsKind(err, KindNotFound) {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		m.logger.Info("No saved settings, storing defaults",
			zap.String("first_single_week", m.defaults.FirstSingleWeek))
		m.replace(m.defaults)
		return m.saveDefaults(ctx)
	}

	if record.Version != m.defaults.Version {
		m.logger.Info("Settings version changed, resetting to defaults",
			zap.String("saved_version", record.Version),
			zap.String("current_version", m.defaults.Version))
		m.replace(m.defaults)
		return m.saveDefaults(ctx)
	}

	cfg := record.AnchorConfig()
	if cfg.FirstSingleWeek == "" {
		cfg.FirstSingleWeek = m.defaults.FirstSingleWeek
	}
	if err := record.Validate(); err != nil {
		m.logger.Warn("Saved settings are invalid, week types fall back to double-rest",
			zap.String("first_single_week", record.FirstSingleWeek),
			zap.Error(err))
	}

	m.replace(cfg)
	m.logger.Info("Settings loaded",
		zap.String("first_single_week", cfg.FirstSingleWeek),
		zap.String("version", cfg.Version),
		zap.String("last_updated", record.LastUpdated))

	return nil
}

// Save validates and persists a new anchor date, then makes it current.
// The date is normalized to YYYY-MM-DD. On failure the current snapshot is unchanged.
func (m *Manager) Save(ctx context.Context, firstSingleWeek string) (calendar.AnchorConfig, error) {
	firstSingleWeek = strings.TrimSpace(firstSingleWeek)
	if firstSingleWeek == "" {
		return m.Current(), ErrAnchorRequired
	}

	anchor, err := dateutil.Parse(firstSingleWeek)
	if err != nil {
		return m.Current(), fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	cfg := calendar.AnchorConfig{
		FirstSingleWeek: anchor.String(),
		Version:         m.defaults.Version,
	}

	record := NewRecord(cfg, m.now())
	if err := record.Validate(); err != nil {
		return m.Current(), err
	}

	if err := m.store.Put(ctx, m.key, record); err != nil {
		return m.Current(), fmt.Errorf("failed to save settings: %w", err)
	}

	m.replace(cfg)
	m.logger.Info("Settings saved",
		zap.String("first_single_week", cfg.FirstSingleWeek),
		zap.String("version", cfg.Version))

	return cfg, nil
}

func (m *Manager) saveDefaults(ctx context.Context) error {
	record := NewRecord(m.defaults, m.now())
	if err := m.store.Put(ctx, m.key, record); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	m.logger.Info("Default settings saved",
		zap.String("first_single_week", record.FirstSingleWeek),
		zap.String("version", record.Version))
	return nil
}

func (m *Manager) replace(cfg calendar.AnchorConfig) {
	m.current.Store(&cfg)
}
