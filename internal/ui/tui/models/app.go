package models

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/playback"
	kb "github.com/PizzaHomicide/clipreel/internal/ui/tui/keybindings"
)

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int

	// Models used for various views
	playerModel *PlayerModel
	helpModel   *HelpModel

	snapshots   <-chan playback.Snapshot
	unsubscribe func()
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(controller Controller) AppModel {
	snapshots, unsubscribe := controller.Subscribe()
	return AppModel{
		activeView:  ViewPlayer,
		activeModal: ModalNone,
		playerModel: NewPlayerModel(controller),
		helpModel:   NewHelpModel(ViewPlayer),
		snapshots:   snapshots,
		unsubscribe: unsubscribe,
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising clipreel TUI")
	return tea.Batch(m.playerModel.Init(), m.helpModel.Init(), waitForSnapshot(m.snapshots))
}

// waitForSnapshot blocks on the next published session state
func waitForSnapshot(ch <-chan playback.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return SnapshotsClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			m.unsubscribe()
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			// Disable/toggle modal if one already active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.activeModal = ModalHelp
			}
			return m, nil

		// Handle closing modal when esc is pressed if any is active
		case kb.ActionBack:
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

	case tea.MouseMsg:
		if m.activeModal == ModalHelp {
			return m.updateHelpModal(msg)
		}
		return m, nil

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.helpModel.Resize(msg.Width, msg.Height)
		m.playerModel.Resize(msg.Width, msg.Height)
		return m, nil

	case SnapshotMsg:
		log.Trace("Snapshot received", "state", msg.Snapshot.State, "clip", msg.Snapshot.Index)
		model, cmd := m.playerModel.Update(msg)
		m.playerModel = model
		return m, tea.Batch(cmd, waitForSnapshot(m.snapshots))

	case SnapshotsClosedMsg:
		log.Info("Playback stopped publishing.  Shutting down...")
		return m, tea.Quit
	}

	// Prioritise delegating key messages to a modal if one is active
	if _, isKey := msg.(tea.KeyMsg); isKey && m.activeModal == ModalHelp {
		return m.updateHelpModal(msg)
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewPlayer:
		return m.updatePlayerView(msg)
	}

	return m, nil
}

func (m AppModel) View() string {
	// If there is an active modal it takes presedence
	switch m.activeModal {
	case ModalHelp:
		return m.helpModel.View()
	}

	// Else display the actual view
	switch m.activeView {
	case ViewPlayer:
		return m.playerModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

// updatePlayerView delegates message processing to the player model
func (m AppModel) updatePlayerView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.playerModel.Update(msg)
	m.playerModel = model
	return m, cmd
}

func (m AppModel) updateHelpModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.helpModel.Update(msg)
	m.helpModel = model
	return m, cmd
}
