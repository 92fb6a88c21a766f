package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/PizzaHomicide/clipreel/internal/log"
)

// MPVAudio implements AudioChannel with a second, headless mpv instance
type MPVAudio struct {
	proc   *mpvProcess
	events chan AudioEvent

	mu       sync.Mutex
	playing  bool
	duration float64
}

var _ AudioChannel = (*MPVAudio)(nil)

// NewMPVAudio creates an audio channel.  Call Start before use.
func NewMPVAudio(opts MPVOptions) *MPVAudio {
	opts.Role = "audio"
	opts.NoVideo = true
	return &MPVAudio{
		proc:   newMPVProcess(opts),
		events: make(chan AudioEvent, 16),
	}
}

// Start launches the headless mpv instance
func (m *MPVAudio) Start(ctx context.Context) error {
	if err := m.proc.start(ctx, "duration"); err != nil {
		return err
	}
	go m.pump()
	return nil
}

func (m *MPVAudio) Play(ctx context.Context, assetRef string) error {
	m.mu.Lock()
	m.playing = true
	m.duration = 0
	m.mu.Unlock()

	if err := m.proc.loadFile(ctx, assetRef, 0); err != nil {
		m.mu.Lock()
		m.playing = false
		m.mu.Unlock()
		return fmt.Errorf("load audio asset: %w", err)
	}
	return m.proc.setProperty("pause", false)
}

func (m *MPVAudio) Stop() error {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	return m.proc.command("stop")
}

func (m *MPVAudio) Events() <-chan AudioEvent {
	return m.events
}

func (m *MPVAudio) Close() error {
	return m.proc.stop()
}

func (m *MPVAudio) emit(ev AudioEvent) {
	select {
	case m.events <- ev:
	default:
		log.Warn("Dropping audio event", "event", ev.Type)
	}
}

func (m *MPVAudio) pump() {
	for ev := range m.proc.ipc.Events() {
		if out, ok := m.translate(ev); ok {
			m.emit(out)
		}
	}
	log.Debug("MPV audio event channel closed")
	close(m.events)
}

func (m *MPVAudio) translate(ev MPVEvent) (AudioEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Event {
	case "file-loaded":
		if !m.playing {
			return AudioEvent{}, false
		}
		return AudioEvent{Type: AudioStarted, Duration: m.duration}, true

	case "property-change":
		if ev.Name != "duration" || !m.playing {
			return AudioEvent{}, false
		}
		d, ok := decodeFloat(ev.Data)
		if !ok || d <= 0 || d == m.duration {
			return AudioEvent{}, false
		}
		m.duration = d
		// A second started event carries the duration once mpv has probed the file
		return AudioEvent{Type: AudioStarted, Duration: d}, true

	case "end-file":
		if !m.playing {
			return AudioEvent{}, false
		}
		switch ev.Reason {
		case "eof":
			m.playing = false
			return AudioEvent{Type: AudioEnded}, true
		case "error":
			m.playing = false
			return AudioEvent{Type: AudioFailed, Error: fmt.Errorf("mpv failed to play asset: %s", ev.FileError)}, true
		}
	}
	return AudioEvent{}, false
}
