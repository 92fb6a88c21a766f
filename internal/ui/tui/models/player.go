package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/playback"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/clipreel/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/styles"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui/util"
)

const (
	seekStep       = 5.0
	volumeStep     = 5
	commandTimeout = 5 * time.Second
)

// Controller is the playback surface the player view drives
type Controller interface {
	PlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, offset float64) error
	SeekBy(ctx context.Context, delta float64) error
	Select(ctx context.Context, index int) error
	AdjustVolume(ctx context.Context, delta int) error
	ToggleMute(ctx context.Context) error
	Move(ctx context.Context, from, to int) error
	Snapshot() playback.Snapshot
	Subscribe() (<-chan playback.Snapshot, func())
}

// PlayerModel shows the playlist, the clip that is playing and its progress
type PlayerModel struct {
	controller    Controller
	width, height int
	snap          playback.Snapshot
	cursor        int
	placed        bool // cursor has been placed on the first clip loaded
	lastErr       error
	progress      progress.Model
	spinner       spinner.Model
	loading       *ClipLoadingModel
}

func NewPlayerModel(controller Controller) *PlayerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return &PlayerModel{
		controller: controller,
		snap:       controller.Snapshot(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:    s,
		loading:    NewClipLoadingModel(),
	}
}

func (m *PlayerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loading.Init())
}

// Resize updates the model with new dimensions
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = max(width-24, 10)
	m.loading.Resize(width, height)
}

// Cursor returns the list position under the cursor
func (m *PlayerModel) Cursor() int {
	return m.cursor
}

func (m *PlayerModel) Update(msg tea.Msg) (*PlayerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		m.loading, _ = m.loading.Update(msg)
		return m, nil

	case CommandErrorMsg:
		m.lastErr = msg.Error
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.loading, cmd = m.loading.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *PlayerModel) applySnapshot(snap playback.Snapshot) {
	m.snap = snap
	if len(snap.Clips) == 0 {
		m.cursor = 0
		return
	}
	if !m.placed {
		log.Debug("First clip shown", "playlist", snap.PlaylistName, "waited", m.loading.Waited())
		m.cursor = snap.Index
		m.placed = true
	}
	m.cursor = min(m.cursor, len(snap.Clips)-1)
}

func (m *PlayerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	count := len(m.snap.Clips)
	pageSize := max(m.listHeight(), 1)

	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case kb.ActionMoveDown:
		if m.cursor < count-1 {
			m.cursor++
		}
	case kb.ActionPageUp:
		m.cursor = max(m.cursor-pageSize, 0)
	case kb.ActionPageDown:
		m.cursor = max(min(m.cursor+pageSize, count-1), 0)
	case kb.ActionMoveTop:
		m.cursor = 0
	case kb.ActionMoveBottom:
		m.cursor = max(count-1, 0)
	case kb.ActionJumpToPlaying:
		m.cursor = m.snap.Index

	case kb.ActionPlayPause:
		return m.command("play_pause", m.controller.PlayPause)
	case kb.ActionNextClip:
		return m.command("next", m.controller.Next)
	case kb.ActionPreviousClip:
		return m.command("previous", m.controller.Previous)
	case kb.ActionSelectClip:
		index := m.cursor
		return m.command("select", func(ctx context.Context) error {
			return m.controller.Select(ctx, index)
		})
	case kb.ActionSeekForward:
		return m.command("seek", func(ctx context.Context) error {
			return m.controller.SeekBy(ctx, seekStep)
		})
	case kb.ActionSeekBackward:
		return m.command("seek", func(ctx context.Context) error {
			return m.controller.SeekBy(ctx, -seekStep)
		})
	case kb.ActionRestartClip:
		return m.command("seek", func(ctx context.Context) error {
			return m.controller.Seek(ctx, 0)
		})
	case kb.ActionVolumeUp:
		return m.command("volume", func(ctx context.Context) error {
			return m.controller.AdjustVolume(ctx, volumeStep)
		})
	case kb.ActionVolumeDown:
		return m.command("volume", func(ctx context.Context) error {
			return m.controller.AdjustVolume(ctx, -volumeStep)
		})
	case kb.ActionToggleMute:
		return m.command("mute", m.controller.ToggleMute)

	case kb.ActionMoveClipUp:
		if m.cursor == 0 || count == 0 {
			return nil
		}
		from := m.cursor
		m.cursor--
		return m.command("move", func(ctx context.Context) error {
			return m.controller.Move(ctx, from, from-1)
		})
	case kb.ActionMoveClipDown:
		if m.cursor >= count-1 {
			return nil
		}
		from := m.cursor
		m.cursor++
		return m.command("move", func(ctx context.Context) error {
			return m.controller.Move(ctx, from, from+1)
		})
	}
	return nil
}

// command runs a transport call off the UI goroutine.  Failures come back as a CommandErrorMsg.
func (m *PlayerModel) command(action string, fn func(ctx context.Context) error) tea.Cmd {
	m.lastErr = nil
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Warn("Player command failed", "action", action, "error", err)
			return CommandErrorMsg{Action: action, Error: err}
		}
		log.Trace("Player command applied", "action", action)
		return nil
	}
}

func (m *PlayerModel) View() string {
	if m.snap.State == playback.StateIdle && len(m.snap.Clips) == 0 {
		return m.loading.View()
	}

	title := m.snap.PlaylistName
	if m.snap.Loop {
		title += " (loop)"
	}
	header := styles.Header(m.width, title)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Spacing
		m.renderNowPlaying(),
		m.renderClipList(),
		m.renderFooter(),
	)
}

func (m *PlayerModel) renderNowPlaying() string {
	if m.snap.State == playback.StateLoadingClip {
		return styles.ContentBox(m.width-2, m.loading.Body(), 1)
	}
	clip := m.snap.Clip

	var b strings.Builder
	b.WriteString(styles.Playing.Render(clipLabel(m.snap.Index, clip)))
	if clip.Attribution != "" {
		b.WriteString("  " + styles.Muted.Render(clip.Attribution))
	}
	b.WriteString("\n\n")

	percent := 0.0
	if clip.Duration > 0 {
		percent = m.snap.Position / clip.Duration
	}
	b.WriteString(fmt.Sprintf("%s %s / %s\n\n",
		m.progress.ViewAs(percent),
		util.FormatClock(m.snap.Position),
		util.FormatClock(clip.Duration)))

	b.WriteString(m.renderStatus())

	return styles.ContentBox(m.width-2, b.String(), 1)
}

func (m *PlayerModel) renderStatus() string {
	state := m.snap.State.String()
	switch m.snap.State {
	case playback.StateLoadingClip:
		state = m.spinner.View() + " loading"
	case playback.StateInterstitialPlaying:
		state = m.spinner.View() + " ♪ interstitial"
	}
	if m.snap.Buffering && m.snap.State == playback.StatePlaying {
		state += " (buffering)"
	}

	volume := fmt.Sprintf("vol %d%%", m.snap.Volume)
	if m.snap.Muted {
		volume = "muted"
	}

	line := fmt.Sprintf("%s • %s • clip %d/%d", state, volume, m.snap.Index+1, len(m.snap.Clips))
	if m.snap.State != playback.StateEnded {
		line += " • " + util.FormatClock(m.snap.Remaining()) + " left"
	}

	if m.snap.Notice != nil {
		line += "\n" + styles.Warning.Render(m.snap.Notice.Error())
	} else if m.lastErr != nil {
		line += "\n" + styles.Warning.Render(m.lastErr.Error())
	}
	return styles.StatusBar.Render(line)
}

// listHeight is the number of clip rows that fit under the now playing box
func (m *PlayerModel) listHeight() int {
	return m.height - 20
}

// renderClipList renders the playlist with the cursor kept in view
func (m *PlayerModel) renderClipList() string {
	clips := m.snap.Clips
	if len(clips) == 0 {
		return styles.CenteredText(m.width, "Playlist is empty")
	}

	visibleCount := min(len(clips), max(m.listHeight(), 1))

	// Adjust starting index to keep cursor in view
	startIdx := 0
	if m.cursor >= visibleCount {
		startIdx = m.cursor - visibleCount + 1
	}
	endIdx := min(startIdx+visibleCount, len(clips))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#7D56F4")).
		Width(m.width-4).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Width(m.width-4).
		Padding(0, 1)

	var listContent string
	for i := startIdx; i < endIdx; i++ {
		itemText := m.formatClipItem(i, clips[i])
		if i == m.cursor {
			listContent += selectedStyle.Render(itemText) + "\n"
		} else {
			listContent += normalStyle.Render(itemText) + "\n"
		}
	}

	if len(clips) > visibleCount {
		pagination := fmt.Sprintf("Showing %d-%d of %d", startIdx+1, endIdx, len(clips))
		listContent += styles.CenteredText(m.width-4, pagination)
	}

	return styles.ContentBox(m.width-2, listContent, 0)
}

func (m *PlayerModel) formatClipItem(i int, clip domain.Clip) string {
	marker := " "
	if i == m.snap.Index {
		marker = "▶"
		if m.snap.Interstitial {
			marker = "♪"
		}
	}

	titleWidth := max(m.width-30, 10)
	return fmt.Sprintf("%s %s %7s %7s",
		marker,
		util.PadRight(clipLabel(i, clip), titleWidth),
		util.FormatClock(clip.StartOffset),
		util.FormatClock(clip.Duration))
}

func (m *PlayerModel) renderFooter() string {
	return components.KeyBindingsBar(m.width, []components.KeyBinding{
		{Key: "space", Desc: "play/pause"},
		{Key: "n/p", Desc: "next/prev"},
		{Key: "←/→", Desc: "seek"},
		{Key: "+/-", Desc: "volume"},
		{Key: "enter", Desc: "play selected"},
		{Key: "?", Desc: "help"},
	})
}

// clipLabel is the clip title, falling back to its video reference
func clipLabel(i int, clip domain.Clip) string {
	name := clip.Title
	if name == "" {
		name = clip.VideoID
	}
	return fmt.Sprintf("%d. %s", i+1, name)
}
