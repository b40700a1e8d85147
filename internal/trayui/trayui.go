// Package trayui is the optional desktop tray companion: a menu-bar icon
// showing listening/paused/language-lock state, a global hotkey to toggle
// pause, and a quit action. The systray/hotkey implementation is only built
// with the "tray" build tag, since both require platform windowing/
// accessibility APIs; other builds get a no-op App.
package trayui

import (
	"fmt"

	"github.com/msto63/streamvox/internal/logx"
)

// IconState mirrors the reference voice-assistant tray's state coloring.
type IconState string

const (
	IconIdle      IconState = "idle"
	IconListening IconState = "listening"
	IconPaused    IconState = "paused"
	IconError     IconState = "error"
)

// Callbacks wires tray actions back to the orchestrator.
type Callbacks struct {
	OnTogglePause func()
	OnQuit        func()
}

// StatusSnapshot is what the tray menu displays; the caller refreshes it
// periodically from the orchestrator's live state.
type StatusSnapshot struct {
	Paused           bool
	Language         string // "" while warmup hasn't locked yet
	LanguageLocked   bool
	LeadingLanguage  string // warmup candidate; equals Language once locked
	WarmupProgress   float64
	LeaderConfidence float64
	WordsEmitted     int
	AvgConfidence    float64
}

func (s StatusSnapshot) statusLine() string {
	if s.Paused {
		return "Paused"
	}
	if s.LanguageLocked {
		return fmt.Sprintf("Listening (%s)", s.Language)
	}
	if s.LeadingLanguage != "" {
		return fmt.Sprintf("Listening (detecting: %s %.0f%%, warmup %.0f%%)",
			s.LeadingLanguage, s.LeaderConfidence*100, s.WarmupProgress*100)
	}
	return "Listening (detecting language)"
}

func (s StatusSnapshot) statsLine() string {
	return fmt.Sprintf("%d words, avg confidence %.2f", s.WordsEmitted, s.AvgConfidence)
}

func (s StatusSnapshot) icon() IconState {
	switch {
	case s.Paused:
		return IconPaused
	default:
		return IconListening
	}
}

// App is implemented per-platform by tray_tag.go (build tag "tray") and
// tray_notag.go (default, no-op).
type App interface {
	Run(callbacks Callbacks) error
	SetStatus(status StatusSnapshot)
	Quit()
}

// New returns the tray App for this build: the real systray/hotkey-backed
// implementation when built with -tags tray, otherwise a no-op stub.
func New(log *logx.Logger) App {
	return newApp(log)
}
