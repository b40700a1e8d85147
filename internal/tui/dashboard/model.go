// Package dashboard is the optional live terminal view (--tui): a
// scrolling transcript alongside a status panel (pause state, language
// lock, word count, average confidence), refreshed once a second from the
// orchestrator's running state.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/streamvox/internal/model"
	"github.com/msto63/streamvox/internal/orchestrator"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model driving the dashboard.
type Model struct {
	orch *orchestrator.Orchestrator
	feed *Feed

	width, height int
	ready         bool
	viewport      viewport.Model
	lineCount     int
}

// New builds a dashboard model over a running Orchestrator and the Feed
// sink mounted alongside the console/websocket sinks.
func New(orch *orchestrator.Orchestrator, feed *Feed) Model {
	return Model{orch: orch, feed: feed}
}

// Run blocks running the dashboard program until the user quits.
func Run(orch *orchestrator.Orchestrator, feed *Feed) error {
	_, err := tea.NewProgram(New(orch, feed)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p":
			if m.orch.Paused() {
				m.orch.Resume()
			} else {
				m.orch.Pause()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 8
		}
		m.refreshTranscript()

	case tickMsg:
		m.refreshTranscript()
		return m, tick()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshTranscript() {
	lines := m.feed.Snapshot()
	if len(lines) == m.lineCount {
		return
	}
	m.lineCount = len(lines)
	m.viewport.SetContent(transcriptStyle.Render(strings.Join(lines, "\n")))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("streamvox"))
	b.WriteString("\n")
	b.WriteString(panelStyle.Width(m.width - 2).Render(m.renderStatus()))
	b.WriteString("\n")
	b.WriteString(panelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("p: pause/resume  •  q: quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	lock := m.orch.LanguageLockState()
	lockStatus := m.orch.LanguageLockStatus()
	stats := m.orch.TimelineStats()

	pauseText := okStyle.Render("listening")
	if m.orch.Paused() {
		pauseText = warnStyle.Render("paused")
	}

	langText := "detecting"
	if lock.Phase == model.PhaseLocked || lock.Phase == model.PhaseFree {
		langText = lock.Language
	} else if lockStatus.LeadingLanguage != "" {
		langText = fmt.Sprintf("%s %.0f%% (warmup %.0f%%)",
			lockStatus.LeadingLanguage, lockStatus.LeaderConfidence*100, lockStatus.WarmupProgress*100)
	}

	return fmt.Sprintf(
		"%s   language: %s   words: %d   avg confidence: %.2f",
		pauseText, langText, stats.WordCount, stats.AvgConfidence,
	)
}
