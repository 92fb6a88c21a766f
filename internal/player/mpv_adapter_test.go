package player

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyChange(name string, data string) MPVEvent {
	return MPVEvent{Event: "property-change", Name: name, Data: json.RawMessage(data)}
}

func TestMPVAdapter_ResolveTarget(t *testing.T) {
	a := NewMPVAdapter(MPVOptions{}, "https://www.youtube.com/watch?v=%s")
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", a.ResolveTarget("dQw4w9WgXcQ"))
	assert.Equal(t, "https://example.com/v.mp4", a.ResolveTarget("https://example.com/v.mp4"))

	raw := NewMPVAdapter(MPVOptions{}, "")
	assert.Equal(t, "/tmp/local.mkv", raw.ResolveTarget("/tmp/local.mkv"))
}

func TestMPVAdapter_Translate(t *testing.T) {
	a := NewMPVAdapter(MPVOptions{}, "")

	t.Run("pause changes before a file is loaded are ignored", func(t *testing.T) {
		_, ok := a.translate(propertyChange("pause", "false"))
		assert.False(t, ok)
	})

	t.Run("file-loaded is cued", func(t *testing.T) {
		ev, ok := a.translate(MPVEvent{Event: "file-loaded"})
		require.True(t, ok)
		assert.Equal(t, EventCued, ev.Type)
	})

	t.Run("pause property mirrors playing and paused", func(t *testing.T) {
		ev, ok := a.translate(propertyChange("pause", "true"))
		require.True(t, ok)
		assert.Equal(t, EventPaused, ev.Type)

		ev, ok = a.translate(propertyChange("pause", "false"))
		require.True(t, ok)
		assert.Equal(t, EventPlaying, ev.Type)
	})

	t.Run("stall is buffering", func(t *testing.T) {
		ev, ok := a.translate(propertyChange("paused-for-cache", "true"))
		require.True(t, ok)
		assert.Equal(t, EventBuffering, ev.Type)

		_, ok = a.translate(propertyChange("paused-for-cache", "false"))
		assert.False(t, ok)
	})

	t.Run("time-pos and duration are cached", func(t *testing.T) {
		_, ok := a.translate(propertyChange("time-pos", "42.25"))
		assert.False(t, ok)
		_, ok = a.translate(propertyChange("duration", "212.0"))
		assert.False(t, ok)
		_, ok = a.translate(propertyChange("time-pos", "null"))
		assert.False(t, ok)

		pos, err := a.CurrentTime()
		require.NoError(t, err)
		assert.Equal(t, 42.25, pos)
		dur, err := a.Duration()
		require.NoError(t, err)
		assert.Equal(t, 212.0, dur)
	})

	t.Run("end-file reasons", func(t *testing.T) {
		_, ok := a.translate(MPVEvent{Event: "end-file", Reason: "stop"})
		assert.False(t, ok)

		ev, ok := a.translate(MPVEvent{Event: "end-file", Reason: "eof"})
		require.True(t, ok)
		assert.Equal(t, EventEnded, ev.Type)

		ev, ok = a.translate(MPVEvent{Event: "end-file", Reason: "error", FileError: "unrecognized file format"})
		require.True(t, ok)
		assert.Equal(t, EventError, ev.Type)
		assert.ErrorContains(t, ev.Error, "unrecognized file format")

		_, err := a.CurrentTime()
		assert.Error(t, err)
	})
}

func TestMPVAudio_Translate(t *testing.T) {
	m := NewMPVAudio(MPVOptions{})

	_, ok := m.translate(MPVEvent{Event: "file-loaded"})
	assert.False(t, ok, "events are ignored while nothing was requested")

	m.playing = true

	ev, ok := m.translate(MPVEvent{Event: "file-loaded"})
	require.True(t, ok)
	assert.Equal(t, AudioStarted, ev.Type)
	assert.Zero(t, ev.Duration)

	ev, ok = m.translate(propertyChange("duration", "3.5"))
	require.True(t, ok)
	assert.Equal(t, AudioStarted, ev.Type)
	assert.Equal(t, 3.5, ev.Duration)

	_, ok = m.translate(propertyChange("duration", "3.5"))
	assert.False(t, ok, "repeated duration is not reported twice")

	ev, ok = m.translate(MPVEvent{Event: "end-file", Reason: "eof"})
	require.True(t, ok)
	assert.Equal(t, AudioEnded, ev.Type)

	_, ok = m.translate(MPVEvent{Event: "end-file", Reason: "eof"})
	assert.False(t, ok)

	m.playing = true
	ev, ok = m.translate(MPVEvent{Event: "end-file", Reason: "error", FileError: "no such file"})
	require.True(t, ok)
	assert.Equal(t, AudioFailed, ev.Type)
	assert.ErrorContains(t, ev.Error, "no such file")
}
