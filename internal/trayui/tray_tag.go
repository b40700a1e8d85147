//go:build tray

package trayui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"runtime"

	"fyne.io/systray"
	"golang.design/x/hotkey"

	"github.com/msto63/streamvox/internal/logx"
)

type systrayApp struct {
	log *logx.Logger

	menuStatus *systray.MenuItem
	menuStats  *systray.MenuItem
	menuToggle *systray.MenuItem
	menuQuit   *systray.MenuItem

	hk *hotkey.Hotkey

	callbacks Callbacks
	latest    StatusSnapshot
}

func newApp(log *logx.Logger) App {
	return &systrayApp{log: log.WithComponent("trayui")}
}

func (t *systrayApp) Run(callbacks Callbacks) error {
	t.callbacks = callbacks
	systray.Run(t.onReady, func() {})
	return nil
}

func (t *systrayApp) onReady() {
	systray.SetIcon(iconBytes(IconIdle))
	systray.SetTooltip("streamvox")

	t.menuStatus = systray.AddMenuItem("Listening", "current state")
	t.menuStatus.Disable()
	t.menuStats = systray.AddMenuItem("0 words", "timeline stats")
	t.menuStats.Disable()
	systray.AddSeparator()
	t.menuToggle = systray.AddMenuItem("Pause (Ctrl+Shift+M)", "pause/resume transcription")
	systray.AddSeparator()
	t.menuQuit = systray.AddMenuItem("Quit", "stop streamvox")

	go t.handleClicks()

	if runtime.GOOS != "darwin" {
		// golang.design/x/hotkey is known to crash under macOS's CGO/ObjC
		// runtime during registration; the reference voice assistant skips
		// it there too and relies on the tray menu instead.
		if err := t.registerHotkey(); err != nil {
			t.log.Warn("hotkey registration failed", logx.Fields{"error": err})
		}
	}
}

func (t *systrayApp) registerHotkey() error {
	t.hk = hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyM)
	if err := t.hk.Register(); err != nil {
		return err
	}
	go func() {
		for range t.hk.Keydown() {
			if t.callbacks.OnTogglePause != nil {
				t.callbacks.OnTogglePause()
			}
		}
	}()
	return nil
}

func (t *systrayApp) handleClicks() {
	for {
		select {
		case <-t.menuToggle.ClickedCh:
			if t.callbacks.OnTogglePause != nil {
				t.callbacks.OnTogglePause()
			}
		case <-t.menuQuit.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			t.Quit()
			return
		}
	}
}

func (t *systrayApp) SetStatus(status StatusSnapshot) {
	t.latest = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status.statusLine())
	}
	if t.menuStats != nil {
		t.menuStats.SetTitle(status.statsLine())
	}
	systray.SetIcon(iconBytes(status.icon()))
}

func (t *systrayApp) Quit() {
	if t.hk != nil {
		t.hk.Unregister()
	}
	systray.Quit()
}

// iconBytes renders a small solid-color PNG, colored by state, the same
// "flat color block" approach the reference tray uses for its text icon.
func iconBytes(state IconState) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 22, 22))
	var c color.RGBA
	switch state {
	case IconListening:
		c = color.RGBA{0, 180, 90, 255}
	case IconPaused:
		c = color.RGBA{200, 150, 0, 255}
	case IconError:
		c = color.RGBA{220, 50, 50, 255}
	default:
		c = color.RGBA{150, 150, 150, 255}
	}
	for y := 0; y < 22; y++ {
		for x := 0; x < 22; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
