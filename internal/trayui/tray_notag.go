//go:build !tray

package trayui

import "github.com/msto63/streamvox/internal/logx"

// noopApp is used for ordinary headless builds, where systray/hotkey are
// not compiled in. Run returns immediately rather than blocking, so the
// caller treats tray support as simply unavailable.
type noopApp struct{}

func newApp(log *logx.Logger) App { return noopApp{} }

func (noopApp) Run(callbacks Callbacks) error   { return nil }
func (noopApp) SetStatus(status StatusSnapshot) {}
func (noopApp) Quit()                           {}
