package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PizzaHomicide/clipreel/internal/log"
)

// MPVAdapter implements Adapter on top of a single idle mpv window
type MPVAdapter struct {
	proc        *mpvProcess
	urlTemplate string
	events      chan AdapterEvent

	mu       sync.Mutex
	loaded   bool
	position float64
	duration float64
}

var _ Adapter = (*MPVAdapter)(nil)

// NewMPVAdapter creates an adapter.  urlTemplate turns a video ID into an mpv target and must contain one %s;
// an empty template passes the ID through unchanged.
func NewMPVAdapter(opts MPVOptions, urlTemplate string) *MPVAdapter {
	opts.Role = "video"
	opts.NoVideo = false
	return &MPVAdapter{
		proc:        newMPVProcess(opts),
		urlTemplate: urlTemplate,
		events:      make(chan AdapterEvent, 32),
	}
}

// Start launches mpv and begins translating its events.  Must be called before any other method.
func (a *MPVAdapter) Start(ctx context.Context) error {
	if err := a.proc.start(ctx, "pause", "paused-for-cache", "time-pos", "duration"); err != nil {
		return err
	}
	go a.pump()
	a.emit(AdapterEvent{Type: EventReady})
	return nil
}

// ResolveTarget maps a video ID onto what mpv should open
func (a *MPVAdapter) ResolveTarget(videoID string) string {
	if a.urlTemplate == "" || strings.Contains(videoID, "://") {
		return videoID
	}
	return fmt.Sprintf(a.urlTemplate, videoID)
}

func (a *MPVAdapter) Load(ctx context.Context, videoID string, startOffset float64) error {
	a.mu.Lock()
	a.loaded = false
	a.position = startOffset
	a.duration = 0
	a.mu.Unlock()

	target := a.ResolveTarget(videoID)
	log.Debug("Loading media", "video_id", videoID, "target", target, "start", startOffset)
	return a.proc.loadFile(ctx, target, startOffset)
}

func (a *MPVAdapter) Play() error {
	return a.proc.setProperty("pause", false)
}

func (a *MPVAdapter) Pause() error {
	return a.proc.setProperty("pause", true)
}

func (a *MPVAdapter) SeekTo(seconds float64) error {
	if err := a.proc.command("seek", seconds, "absolute+exact"); err != nil {
		return err
	}
	a.mu.Lock()
	a.position = seconds
	a.mu.Unlock()
	return nil
}

// CurrentTime returns the last observed time-pos.  mpv pushes it several times a second, so no round trip is needed.
func (a *MPVAdapter) CurrentTime() (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return 0, errors.New("no media loaded")
	}
	return a.position, nil
}

func (a *MPVAdapter) Duration() (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration, nil
}

func (a *MPVAdapter) SetVolume(volume int) error {
	return a.proc.setProperty("volume", volume)
}

func (a *MPVAdapter) Events() <-chan AdapterEvent {
	return a.events
}

func (a *MPVAdapter) Close() error {
	return a.proc.stop()
}

func (a *MPVAdapter) emit(ev AdapterEvent) {
	select {
	case a.events <- ev:
	default:
		log.Warn("Dropping adapter event, orchestrator is not keeping up", "event", ev.Type)
	}
}

// pump translates raw mpv events into adapter events until the connection closes
func (a *MPVAdapter) pump() {
	for ev := range a.proc.ipc.Events() {
		if out, ok := a.translate(ev); ok {
			a.emit(out)
		}
	}
	log.Debug("MPV video event channel closed")
	a.emit(AdapterEvent{Type: EventError, Error: ErrIPCClosed})
	close(a.events)
}

func (a *MPVAdapter) translate(ev MPVEvent) (AdapterEvent, bool) {
	switch ev.Event {
	case "file-loaded":
		a.mu.Lock()
		a.loaded = true
		a.mu.Unlock()
		return AdapterEvent{Type: EventCued}, true

	case "end-file":
		a.mu.Lock()
		a.loaded = false
		a.mu.Unlock()
		switch ev.Reason {
		case "eof":
			return AdapterEvent{Type: EventEnded}, true
		case "error":
			return AdapterEvent{Type: EventError, Error: fmt.Errorf("mpv failed to load media: %s", ev.FileError)}, true
		}
		// "stop" is sent for the previous file whenever loadfile replaces it
		return AdapterEvent{}, false

	case "property-change":
		return a.translateProperty(ev)
	}
	return AdapterEvent{}, false
}

func (a *MPVAdapter) translateProperty(ev MPVEvent) (AdapterEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ev.Name {
	case "time-pos":
		if v, ok := decodeFloat(ev.Data); ok {
			a.position = v
		}
	case "duration":
		if v, ok := decodeFloat(ev.Data); ok {
			a.duration = v
		}
	case "pause":
		paused, ok := decodeBool(ev.Data)
		if !ok || !a.loaded {
			return AdapterEvent{}, false
		}
		if paused {
			return AdapterEvent{Type: EventPaused}, true
		}
		return AdapterEvent{Type: EventPlaying}, true
	case "paused-for-cache":
		if stalled, ok := decodeBool(ev.Data); ok && stalled && a.loaded {
			return AdapterEvent{Type: EventBuffering}, true
		}
	}
	return AdapterEvent{}, false
}
