package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/playback"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/styles"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/util"
)

// ClipLoadingModel shows what playback is waiting on: the playlist opening, or a clip being loaded and cued
type ClipLoadingModel struct {
	width, height int
	spinner       spinner.Model
	snap          playback.Snapshot

	waitingOn loadKey
	since     time.Time
	now       func() time.Time
}

// loadKey identifies one load attempt, so the wait restarts for every new clip and every retry
type loadKey struct {
	index   int
	clipID  string
	attempt int
}

func NewClipLoadingModel() *ClipLoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D86FF")).Bold(true)

	return &ClipLoadingModel{
		spinner: s,
		since:   time.Now(),
		now:     time.Now,
	}
}

func (m *ClipLoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *ClipLoadingModel) Update(msg tea.Msg) (*ClipLoadingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.setSnapshot(msg.Snapshot)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ClipLoadingModel) setSnapshot(snap playback.Snapshot) {
	m.snap = snap
	if snap.State != playback.StateLoadingClip {
		return
	}
	key := loadKey{index: snap.Index, clipID: snap.Clip.ID, attempt: snap.LoadAttempt}
	if key == m.waitingOn {
		return
	}
	if snap.LoadAttempt > 1 {
		log.Debug("Clip load retry shown", "index", snap.Index, "attempt", snap.LoadAttempt, "waited", m.Waited())
	}
	m.waitingOn = key
	m.since = m.now()
}

// Waited returns how long the current load attempt has been running
func (m *ClipLoadingModel) Waited() time.Duration {
	return m.now().Sub(m.since)
}

// Body renders the spinner line and the clip details without any framing
func (m *ClipLoadingModel) Body() string {
	snap := m.snap
	if len(snap.Clips) == 0 {
		return m.spinner.View() + " " + lipgloss.NewStyle().Bold(true).Render("Opening playlist...") +
			"\n\n" + styles.Muted.Render("Starting mpv and loading the first clip")
	}

	var b strings.Builder
	b.WriteString(m.spinner.View() + " ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("Loading clip %d/%d", snap.Index+1, len(snap.Clips))))
	b.WriteString("\n\n")
	b.WriteString(styles.Playing.Render(clipLabel(snap.Index, snap.Clip)))
	b.WriteString("\n")
	b.WriteString(styles.Info.Render(fmt.Sprintf("video %s from %s", snap.Clip.VideoID, util.FormatClock(snap.Clip.StartOffset))))

	if snap.LoadAttempt > 1 {
		b.WriteString("\n" + styles.Warning.Render(fmt.Sprintf("Retrying, attempt %d", snap.LoadAttempt)))
	}
	b.WriteString("\n" + styles.Muted.Render(fmt.Sprintf("waiting %s", m.Waited().Round(time.Second))))
	return b.String()
}

// View renders the full screen box shown before the first clip arrives
func (m *ClipLoadingModel) View() string {
	width := min(m.width-20, 80)
	if width < 40 {
		width = min(m.width-4, 40)
	}

	header := styles.Title.Width(width).Align(lipgloss.Center).Render("clipreel")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#9D86FF")).
		Padding(2, 3).
		Width(width).
		Render(m.Body() + "\n\n" + styles.Muted.Render("Press ctrl+c to quit"))

	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, header, box))
}

func (m *ClipLoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
