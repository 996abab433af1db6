package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/internal/config"
	"github.com/username/weekends-helper/internal/daemon"
	"github.com/username/weekends-helper/internal/lunar"
	"github.com/username/weekends-helper/internal/render"
	"github.com/username/weekends-helper/internal/settings"
	"github.com/username/weekends-helper/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "weekends-helper",
		Short:         "大小周助手",
		Long:          "Shows which weeks are single-rest (only Sunday off) and which are double-rest (Saturday and Sunday off)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				initLogger("info")
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			if cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger(cfg.Daemon.LogLevel) // Fallback to console
				}
			} else {
				initLogger(cfg.Daemon.LogLevel)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(restCmd())
	rootCmd.AddCommand(lunarCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "今天的安排",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			today := dateutil.Today()
			newRenderer().Day(render.Describe(manager.Classifier(), today, today))
			return nil
		},
	}
}

func weekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "某一周的类型和每天的安排",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			cl := manager.Classifier()
			today := dateutil.Today()
			monday := dateutil.MondayOfWeek(date)

			weekType := cl.WeekType(date)
			printf("%s ~ %s: %s, %s %d\n", monday, monday.AddDays(6),
				text(weekType.Label()), text("休息天数"), weekType.RestDays())
			for i := 0; i < 7; i++ {
				summary := render.Describe(cl, monday.AddDays(i), today)
				printf("  %s %s  %s\n", summary.Date, text(render.WeekdayName(summary.Date)), text(summary.Status()))
			}
			return nil
		},
	}
}

func restCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rest [YYYY-MM-DD]",
		Short: "某一天是否休息",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			summary := render.Describe(manager.Classifier(), date, dateutil.Today())
			printf("%s %s: %s (%s)\n", date, text(render.WeekdayName(date)), text(summary.Status()), text(summary.WeekType.Label()))
			return nil
		},
	}
}

func lunarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lunar [YYYY-MM-DD]",
		Short: "近似农历日期",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			printf("%s: %s\n", date, text(lunar.FormatLunarApprox(date)))
			return nil
		},
	}
}

func calendarCmd() *cobra.Command {
	var month string
	var offset int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "显示月历",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := dateutil.Today()
			view := calendar.NewMonthView(today)

			if month != "" {
				first, err := dateutil.Parse(month + "-01")
				if err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM: %w", month, err)
				}
				view = calendar.NewMonthView(first).Select(today)
			}
			view = view.Shift(offset)

			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			newRenderer().Month(manager.Classifier().BuildMonth(view, today))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM), current month by default")
	cmd.Flags().IntVar(&offset, "offset", 0, "Move the shown month by this many months (negative goes back)")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "每天提醒明天是否休息",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := initializeManager()
			if err != nil {
				return err
			}
			defer closeStore()

			hour, minute := cfg.Daemon.GetDailyTime()
			logger.Info("Starting daemon",
				zap.String("backend", cfg.Settings.Backend),
				zap.Int("daily_hour", hour),
				zap.Int("daily_minute", minute),
				zap.Bool("system_tray", cfg.Daemon.SystemTray))

			d := daemon.NewDaemon(manager, hour, minute, cfg.Daemon.SystemTray, cfg.Daemon.GetToastDuration(), logger)
			return d.Start()
		},
	}
}

// loadManager creates the settings manager and loads the stored settings.
// A load failure is reported and the defaults are used.
func loadManager(ctx context.Context) (*settings.Manager, func(), error) {
	manager, closeStore, err := initializeManager()
	if err != nil {
		return nil, nil, err
	}

	if err := manager.Load(ctx); err != nil {
		logger.Warn("Failed to load settings, using defaults", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %v\n", text("加载设置失败，使用默认设置"), err)
	}
	return manager, closeStore, nil
}

// initializeManager creates the settings manager. The returned func releases
// the store connections.
func initializeManager() (*settings.Manager, func(), error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	manager := settings.NewManager(store, logger,
		settings.WithDefaults(cfg.Schedule.DefaultAnchor()))
	return manager, func() { closeSettingsStore(store) }, nil
}

func closeSettingsStore(store settings.Store) {
	c, ok := store.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("Failed to close settings store", zap.Error(err))
	}
}

func newStore(cfg *config.Config) (settings.Store, error) {
	switch cfg.Settings.Backend {
	case config.BackendFile:
		logger.Debug("Using file settings store", zap.String("file", cfg.Settings.File))
		return settings.NewFileStore(cfg.Settings.File, logger), nil

	case config.BackendRedis:
		logger.Debug("Using redis settings store", zap.String("addr", cfg.Settings.Redis.Addr))
		return newRedisStore(cfg.Settings.Redis), nil

	case config.BackendComposite:
		logger.Debug("Using redis settings store with file fallback",
			zap.String("addr", cfg.Settings.Redis.Addr),
			zap.String("file", cfg.Settings.File))
		return settings.NewCompositeStore(
			newRedisStore(cfg.Settings.Redis),
			settings.NewFileStore(cfg.Settings.File, logger),
			logger,
		), nil

	default:
		return nil, fmt.Errorf("unknown settings backend: %s", cfg.Settings.Backend)
	}
}

func newRedisStore(rc config.RedisConfig) *settings.RedisStore {
	client := settings.NewRedisClient(settings.RedisOptions{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		Timeout:  rc.GetTimeout(),
	})
	return settings.NewRedisStore(client, rc.Prefix, logger)
}

func dateArg(args []string) (dateutil.Date, error) {
	if len(args) == 0 {
		return dateutil.Today(), nil
	}
	date, err := dateutil.Parse(strings.TrimSpace(args[0]))
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", args[0], err)
	}
	return date, nil
}

func newRenderer() *render.Renderer {
	return render.New(out, cfg.Display.Pinyin)
}

func text(s string) string {
	if cfg != nil && cfg.Display.Pinyin {
		return render.Romanize(s)
	}
	return s
}

func printf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// newLogWriter sets up lumberjack for log rotation
func newLogWriter(logFile string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	logWriter := newLogWriter(logFile)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
