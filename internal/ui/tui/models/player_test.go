package models

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/playback"
)

type call struct {
	name string
	args []any
}

type fakeController struct {
	calls []call
	err   error
	snap  playback.Snapshot
	ch    chan playback.Snapshot
}

func (f *fakeController) record(name string, args ...any) error {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.err
}

func (f *fakeController) PlayPause(context.Context) error { return f.record("play_pause") }
func (f *fakeController) Next(context.Context) error      { return f.record("next") }
func (f *fakeController) Previous(context.Context) error  { return f.record("previous") }
func (f *fakeController) Seek(_ context.Context, offset float64) error {
	return f.record("seek", offset)
}
func (f *fakeController) SeekBy(_ context.Context, delta float64) error {
	return f.record("seek_by", delta)
}
func (f *fakeController) Select(_ context.Context, index int) error {
	return f.record("select", index)
}
func (f *fakeController) AdjustVolume(_ context.Context, delta int) error {
	return f.record("volume", delta)
}
func (f *fakeController) ToggleMute(context.Context) error { return f.record("mute") }
func (f *fakeController) Move(_ context.Context, from, to int) error {
	return f.record("move", from, to)
}
func (f *fakeController) Snapshot() playback.Snapshot { return f.snap }
func (f *fakeController) Subscribe() (<-chan playback.Snapshot, func()) {
	if f.ch == nil {
		f.ch = make(chan playback.Snapshot, 1)
	}
	return f.ch, func() {}
}

func testSnapshot(index int) playback.Snapshot {
	clips := []domain.Clip{
		{ID: "a", VideoID: "vid-a", Duration: 5, Title: "Opening"},
		{ID: "b", VideoID: "vid-b", Duration: 5},
		{ID: "c", VideoID: "vid-c", Duration: 5},
	}
	return playback.Snapshot{
		State:        playback.StatePlaying,
		PlaylistName: "test",
		Index:        index,
		Clip:         clips[index],
		Clips:        clips,
		Volume:       80,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key to the model and runs any resulting command
func press(t *testing.T, m *PlayerModel, key tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(key)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestPlayerCursorStartsOnPlayingClip(t *testing.T) {
	ctrl := &fakeController{}
	m := NewPlayerModel(ctrl)
	m.Resize(120, 40)

	m.Update(SnapshotMsg{Snapshot: testSnapshot(1)})
	assert.Equal(t, 1, m.Cursor())

	// Later snapshots leave the cursor where the user put it
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m.Update(SnapshotMsg{Snapshot: testSnapshot(0)})
	assert.Equal(t, 2, m.Cursor())

	press(t, m, runes("g"))
	assert.Equal(t, 0, m.Cursor())
}

func TestPlayerKeysDriveController(t *testing.T) {
	ctrl := &fakeController{}
	m := NewPlayerModel(ctrl)
	m.Resize(120, 40)
	m.Update(SnapshotMsg{Snapshot: testSnapshot(0)})

	press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	press(t, m, runes("n"))
	press(t, m, runes("p"))
	press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	press(t, m, runes("0"))
	press(t, m, runes("+"))
	press(t, m, runes("-"))
	press(t, m, runes("m"))
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []call{
		{name: "play_pause"},
		{name: "next"},
		{name: "previous"},
		{name: "seek_by", args: []any{seekStep}},
		{name: "seek_by", args: []any{-seekStep}},
		{name: "seek", args: []any{0.0}},
		{name: "volume", args: []any{volumeStep}},
		{name: "volume", args: []any{-volumeStep}},
		{name: "mute"},
		{name: "select", args: []any{1}},
	}, ctrl.calls)
}

func TestPlayerMoveClipFollowsCursor(t *testing.T) {
	ctrl := &fakeController{}
	m := NewPlayerModel(ctrl)
	m.Resize(120, 40)
	m.Update(SnapshotMsg{Snapshot: testSnapshot(0)})

	// Nothing above the first clip
	assert.Nil(t, press(t, m, runes("K")))
	assert.Empty(t, ctrl.calls)

	press(t, m, runes("J"))
	assert.Equal(t, 1, m.Cursor())
	press(t, m, runes("J"))
	assert.Equal(t, 2, m.Cursor())
	// Nothing below the last clip
	press(t, m, runes("J"))
	press(t, m, runes("K"))
	assert.Equal(t, 1, m.Cursor())

	assert.Equal(t, []call{
		{name: "move", args: []any{0, 1}},
		{name: "move", args: []any{1, 2}},
		{name: "move", args: []any{2, 1}},
	}, ctrl.calls)
}

func TestPlayerCommandErrorIsShown(t *testing.T) {
	ctrl := &fakeController{err: domain.ErrIndexOutOfRange}
	m := NewPlayerModel(ctrl)
	m.Resize(120, 40)
	m.Update(SnapshotMsg{Snapshot: testSnapshot(0)})

	msg := press(t, m, runes("n"))
	errMsg, ok := msg.(CommandErrorMsg)
	require.True(t, ok)
	assert.True(t, errors.Is(errMsg.Error, domain.ErrIndexOutOfRange))

	m.Update(errMsg)
	assert.Contains(t, m.View(), domain.ErrIndexOutOfRange.Error())
}

func TestPlayerViewShowsNotice(t *testing.T) {
	ctrl := &fakeController{}
	m := NewPlayerModel(ctrl)
	m.Resize(120, 40)

	snap := testSnapshot(1)
	snap.State = playback.StatePaused
	snap.Notice = playback.ErrAdapterLoadFailure
	m.Update(SnapshotMsg{Snapshot: snap})

	view := m.View()
	assert.Contains(t, view, "test")
	assert.Contains(t, view, "Opening")
	assert.Contains(t, view, "vid-b")
	assert.Contains(t, view, playback.ErrAdapterLoadFailure.Error())
}

func TestAppModelRelaysSnapshots(t *testing.T) {
	ctrl := &fakeController{}
	app := NewAppModel(ctrl)

	ctrl.ch <- testSnapshot(2)
	msg := waitForSnapshot(app.snapshots)()
	require.IsType(t, SnapshotMsg{}, msg)

	model, cmd := app.Update(msg)
	app = model.(AppModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, app.playerModel.Cursor())

	close(ctrl.ch)
	assert.Equal(t, SnapshotsClosedMsg{}, waitForSnapshot(app.snapshots)())
}
