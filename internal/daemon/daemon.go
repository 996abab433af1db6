package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/internal/render"
	"github.com/username/weekends-helper/internal/settings"
	"github.com/username/weekends-helper/pkg/dateutil"
	"go.uber.org/zap"
)

// Reminder is the daily announcement about the next day
type Reminder struct {
	Date     dateutil.Date
	WeekType calendar.WeekType
	IsRest   bool
	Message  string
}

// Status is a snapshot of the daemon state
type Status struct {
	Today           dateutil.Date
	WeekType        calendar.WeekType
	IsRest          bool
	FirstSingleWeek string
	NextReminder    time.Time
	LastRunDate     string
}

// Daemon runs the daily reminder, optionally with a system tray icon
type Daemon struct {
	manager     *settings.Manager
	dailyHour   int  // Hour of the daily reminder (0-23, local time)
	dailyMinute int  // Minute of the daily reminder (0-59)
	systemTray  bool // Show system tray icon
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	trayApp     *TrayApp
	toast       *Toast
	now         func() time.Time
	lastRunDate string     // Date of the last reminder, prevents duplicates
	lastRunTime time.Time  // Time of the last reminder
	mu          sync.Mutex // Protects lastRunDate and lastRunTime against concurrent runs
}

// NewDaemon creates a daemon that reminds daily at dailyHour:dailyMinute
func NewDaemon(manager *settings.Manager, dailyHour, dailyMinute int, systemTray bool, toastDuration time.Duration, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		manager:     manager,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		systemTray:  systemTray,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
	}
	d.toast = NewToast(toastDuration, d.onToast)
	return d
}

// Toast returns the toast used for notifications
func (d *Daemon) Toast() *Toast {
	return d.toast
}

// Start starts the daemon and blocks until it is stopped
func (d *Daemon) Start() error {
	// Initialize system tray if enabled (Windows only)
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			d.runScheduledLogic()
			return nil
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	d.runScheduledLogic()
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runScheduledLogic runs the reminder schedule (called from tray or standalone)
func (d *Daemon) runScheduledLogic() {
	d.logger.Info("Daemon scheduled logic started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute))

	if err := d.manager.Load(d.ctx); err != nil {
		d.logger.Warn("Failed to load settings, using defaults", zap.Error(err))
		d.toast.Show(ToastWarning, fmt.Sprintf("加载设置失败，使用默认设置: %v", err))
	}
	if d.trayApp != nil {
		d.trayApp.UpdateTooltip()
	}

	// Remind immediately if the scheduled time already passed today
	now := d.now()
	scheduledToday := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, now.Location())
	if now.After(scheduledToday) {
		d.logger.Info("Scheduled time already passed today, reminding now",
			zap.Time("scheduled_time", scheduledToday),
			zap.Time("current_time", now))
		d.remind(now)
	}

	nextRun := d.calculateNextRun(d.now())
	d.logger.Info("Next reminder scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", time.Until(nextRun)))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Check every minute if it's time to run
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return

		case <-ticker.C:
			now := d.now()
			if !d.shouldRunAt(now) {
				continue
			}
			d.logger.Info("Starting scheduled reminder", zap.Time("time", now))
			if d.remind(now) {
				nextRun = d.calculateNextRun(now)
				d.logger.Info("Next reminder scheduled",
					zap.Time("next_run", nextRun),
					zap.Duration("wait_duration", nextRun.Sub(now)))
			}
		}
	}
}

// remind runs the reminder and shows it as a toast. It returns true if a
// reminder was issued.
func (d *Daemon) remind(now time.Time) bool {
	reminder, ok := d.runReminder(now)
	if !ok {
		return false
	}
	d.toast.Show(ToastSuccess, reminder.Message)
	return true
}

// RemindNow issues the reminder immediately (called from tray menu).
// The daily reminder still runs at its scheduled time.
func (d *Daemon) RemindNow() {
	d.logger.Info("Manual reminder triggered from tray")
	now := d.now()
	d.toast.Show(ToastSuccess, d.ReminderFor(dateutil.FromTime(now)).Message)
}

// ReloadSettings re-reads the stored settings (called from tray menu)
func (d *Daemon) ReloadSettings() {
	if err := d.manager.Load(d.ctx); err != nil {
		d.logger.Error("Failed to reload settings", zap.Error(err))
		d.toast.Show(ToastError, fmt.Sprintf("加载设置失败: %v", err))
		return
	}
	d.toast.Show(ToastSuccess, "设置已重新加载")
	if d.trayApp != nil {
		d.trayApp.UpdateTooltip()
	}
}

// ReminderFor builds the reminder about the day after today
func (d *Daemon) ReminderFor(today dateutil.Date) Reminder {
	tomorrow := today.AddDays(1)
	summary := render.Describe(d.manager.Classifier(), tomorrow, today)

	return Reminder{
		Date:     tomorrow,
		WeekType: summary.WeekType,
		IsRest:   summary.IsRest,
		Message: fmt.Sprintf("%s（%s %s）是%s，%s",
			summary.Label, tomorrow, render.WeekdayName(tomorrow), summary.Status(), summary.WeekType.Label()),
	}
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() Status {
	now := d.now()
	today := dateutil.FromTime(now)
	info := d.manager.Classifier().GetDayInfo(today)

	d.mu.Lock()
	lastRunDate := d.lastRunDate
	d.mu.Unlock()

	return Status{
		Today:           today,
		WeekType:        info.WeekType,
		IsRest:          info.IsRest,
		FirstSingleWeek: d.manager.Current().FirstSingleWeek,
		NextReminder:    d.calculateNextRun(now),
		LastRunDate:     lastRunDate,
	}
}

// calculateNextRun calculates the next scheduled reminder after now
func (d *Daemon) calculateNextRun(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, now.Location())

	// If target time already passed today, schedule for tomorrow
	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}

	return today
}

// shouldRunAt checks if the reminder is due at the given time
func (d *Daemon) shouldRunAt(now time.Time) bool {
	return now.Hour() == d.dailyHour && now.Minute() == d.dailyMinute
}

// runReminder prepares today's reminder at most once per day.
// ok is false if the reminder was already issued today.
func (d *Daemon) runReminder(now time.Time) (reminder Reminder, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := dateutil.FromTime(now)
	todayStr := today.String()
	if d.lastRunDate == todayStr {
		d.logger.Debug("Already reminded today, skipping",
			zap.String("last_run_date", d.lastRunDate),
			zap.Time("last_run_time", d.lastRunTime))
		return Reminder{}, false
	}

	reminder = d.ReminderFor(today)
	d.logger.Info("Reminder",
		zap.Stringer("date", reminder.Date),
		zap.Stringer("week_type", reminder.WeekType),
		zap.Bool("rest_day", reminder.IsRest),
		zap.String("message", reminder.Message))

	d.lastRunDate = todayStr
	d.lastRunTime = now

	return reminder, true
}

func (d *Daemon) onToast(msg ToastMessage) {
	d.logger.Debug("Toast",
		zap.Stringer("state", msg.State),
		zap.Stringer("kind", msg.Kind),
		zap.String("message", msg.Message))

	if d.trayApp != nil {
		d.trayApp.ShowToast(msg)
	}
}
