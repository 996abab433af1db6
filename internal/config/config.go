package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/pkg/dateutil"
)

// Settings storage backends
const (
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendComposite = "composite"
)

// Config represents application configuration
type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Display  DisplayConfig  `mapstructure:"display"`
}

// SettingsConfig represents where the schedule record is persisted
type SettingsConfig struct {
	Backend string      `mapstructure:"backend"` // "file", "redis" or "composite"
	File    string      `mapstructure:"file"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Timeout  string `mapstructure:"timeout"`
}

// ScheduleConfig represents the built-in schedule defaults
type ScheduleConfig struct {
	DefaultFirstSingleWeek string `mapstructure:"default_first_single_week"`
	SchemaVersion          string `mapstructure:"schema_version"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	DailyTime     string `mapstructure:"daily_time"` // Time of the daily reminder (HH:MM, local time)
	LogFile       string `mapstructure:"log_file"`
	LogLevel      string `mapstructure:"log_level"`
	SystemTray    bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
	ToastDuration string `mapstructure:"toast_duration"`
}

// DisplayConfig represents terminal output options
type DisplayConfig struct {
	Pinyin bool `mapstructure:"pinyin"` // Romanize Chinese labels
}

// Load loads configuration from file.
// A missing config file is not an error: defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.weekends-helper")
		v.AddConfigPath("/etc/weekends-helper")
	}

	// Read environment variables (WEEKENDS_SETTINGS_BACKEND, ...)
	v.SetEnvPrefix("weekends")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.backend", BackendFile)
	v.SetDefault("settings.file", defaultSettingsFile())
	v.SetDefault("settings.redis.addr", "localhost:6379")
	v.SetDefault("settings.redis.db", 0)
	v.SetDefault("settings.redis.timeout", "3s")
	v.SetDefault("schedule.default_first_single_week", "2025-07-28")
	v.SetDefault("schedule.schema_version", "1.0.1")
	v.SetDefault("daemon.daily_time", "21:00")
	v.SetDefault("daemon.log_level", "info")
	v.SetDefault("daemon.toast_duration", "3s")
	v.SetDefault("display.pinyin", false)
}

func defaultSettingsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "weekends-helper.json"
	}
	return filepath.Join(home, ".weekends-helper", "settings.json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Settings config
	switch c.Settings.Backend {
	case BackendFile:
		if c.Settings.File == "" {
			return fmt.Errorf("settings.file is required for file backend")
		}
	case BackendRedis:
		if c.Settings.Redis.Addr == "" {
			return fmt.Errorf("settings.redis.addr is required for redis backend")
		}
	case BackendComposite:
		if c.Settings.File == "" || c.Settings.Redis.Addr == "" {
			return fmt.Errorf("settings.file and settings.redis.addr are required for composite backend")
		}
	default:
		return fmt.Errorf("settings.backend must be 'file', 'redis' or 'composite', got '%s'", c.Settings.Backend)
	}

	// Validate Schedule config
	if _, err := dateutil.Parse(c.Schedule.DefaultFirstSingleWeek); err != nil {
		return fmt.Errorf("schedule.default_first_single_week: %w", err)
	}
	if c.Schedule.SchemaVersion == "" {
		return fmt.Errorf("schedule.schema_version is required")
	}

	// Validate Daemon config
	if c.Daemon.DailyTime != "" {
		if _, _, ok := parseClock(c.Daemon.DailyTime); !ok {
			return fmt.Errorf("daemon.daily_time must be HH:MM, got '%s'", c.Daemon.DailyTime)
		}
	}

	return nil
}

// DefaultAnchor returns the built-in anchor config
func (c *ScheduleConfig) DefaultAnchor() calendar.AnchorConfig {
	d, err := dateutil.Parse(c.DefaultFirstSingleWeek)
	first := c.DefaultFirstSingleWeek
	if err == nil {
		first = d.String()
	}
	return calendar.AnchorConfig{
		FirstSingleWeek: first,
		Version:         c.SchemaVersion,
	}
}

// GetTimeout returns the redis timeout duration
func (c *RedisConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 3 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 3 * time.Second
	}
	return duration
}

// GetDailyTime returns the configured daily reminder time.
// Returns hour and minute (0-23, 0-59). Default: 21:00
func (c *DaemonConfig) GetDailyTime() (hour, minute int) {
	h, m, ok := parseClock(c.DailyTime)
	if !ok {
		return 21, 0
	}
	return h, m
}

// GetToastDuration returns how long a toast stays visible
func (c *DaemonConfig) GetToastDuration() time.Duration {
	if c.ToastDuration == "" {
		return 3 * time.Second
	}
	duration, err := time.ParseDuration(c.ToastDuration)
	if err != nil || duration <= 0 {
		return 3 * time.Second
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Settings.File = os.ExpandEnv(c.Settings.File)
	c.Settings.Redis.Password = os.ExpandEnv(c.Settings.Redis.Password)
	c.Daemon.LogFile = os.ExpandEnv(c.Daemon.LogFile)
}

func parseClock(s string) (hour, minute int, ok bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
