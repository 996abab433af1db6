//go:build windows
// +build windows

package daemon

import (
	_ "embed"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"github.com/username/weekends-helper/internal/render"
	"go.uber.org/zap"
)

//go:embed icon.ico
var trayIcon []byte

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon   *Daemon
	logger   *zap.Logger
	quit     chan struct{}
	quitOnce sync.Once
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle("大小周")
	t.UpdateTooltip()

	mToday := systray.AddMenuItem("今天", "查看今天的安排")
	mRemind := systray.AddMenuItem("明天提醒", "立即提醒明天是否休息")
	systray.AddSeparator()
	mReload := systray.AddMenuItem("重新加载设置", "重新读取保存的设置")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("退出", "退出程序")

	// Start daemon logic in background
	go t.daemon.runScheduledLogic()

	go func() {
		for {
			select {
			case <-mToday.ClickedCh:
				t.logger.Info("Today clicked from tray")
				t.showToday()
			case <-mRemind.ClickedCh:
				t.logger.Info("Remind clicked from tray")
				go t.daemon.RemindNow()
			case <-mReload.ClickedCh:
				t.logger.Info("Reload clicked from tray")
				go t.daemon.ReloadSettings()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	t.quitOnce.Do(func() { close(t.quit) })
}

// UpdateTooltip shows this week's type in the tray tooltip
func (t *TrayApp) UpdateTooltip() {
	status := t.daemon.GetStatus()
	today := "工作日"
	if status.IsRest {
		today = "休息日"
	}
	systray.SetTooltip(fmt.Sprintf("本周: %s\n今天: %s", status.WeekType.Label(), today))
}

// ShowToast mirrors the toast in the tray tooltip while it is visible
func (t *TrayApp) ShowToast(msg ToastMessage) {
	switch msg.State {
	case ToastVisible:
		systray.SetTooltip(msg.Message)
	case ToastHidden:
		t.UpdateTooltip()
	}
}

// showToday shows the summary of today
func (t *TrayApp) showToday() {
	status := t.daemon.GetStatus()
	summary := render.Describe(t.daemon.manager.Classifier(), status.Today, status.Today)

	message := fmt.Sprintf("%s %s\n农历: %s\n本周: %s\n状态: %s\n第一个单休周: %s",
		status.Today, render.WeekdayName(status.Today),
		summary.Lunar, summary.WeekType.Label(), summary.Status(), status.FirstSingleWeek)

	showMessageBox("大小周助手", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
