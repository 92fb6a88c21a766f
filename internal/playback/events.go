package playback

import (
	"time"

	"github.com/PizzaHomicide/clipreel/internal/domain"
)

// Event is an input to Machine.Dispatch.  Adapter callbacks, timer firings, effect results and user commands all
// arrive as events on the same loop.
type Event interface {
	eventName() string
}

// Open starts a new session on a playlist
type Open struct {
	Playlist *domain.Playlist
	Index    int
}

// Close ends the session
type Close struct{}

// Adapter notifications
type (
	AdapterCued      struct{}
	AdapterPlaying   struct{}
	AdapterPaused    struct{}
	AdapterBuffering struct{}
	AdapterEnded     struct{}
	AdapterError     struct{ Err error }
)

// LoadFailed is fed back when the adapter rejected a load request
type LoadFailed struct {
	Generation uint64
	Err        error
}

// SeekDone is fed back after a SeekTo effect ran
type SeekDone struct {
	Generation uint64
	Purpose    SeekPurpose
	Err        error
}

// PositionSampled is fed back after a SamplePosition effect or a poller tick
type PositionSampled struct {
	Generation uint64
	Purpose    SamplePurpose
	Position   float64
	Err        error
}

// TimerFired is delivered when a timer started through StartTimer expires
type TimerFired struct {
	Kind  TimerKind
	Token uint64
}

// RouteAcquired is fed back when the audio route was taken for an interstitial
type RouteAcquired struct {
	Token uint64
	At    time.Time
}

// Audio channel notifications.  They always refer to the active interstitial.
type (
	AudioStarted struct {
		Duration float64
		At       time.Time
	}
	AudioEnded  struct{}
	AudioFailed struct{ Err error }
)

// User commands
type (
	PlayPause  struct{}
	Next       struct{}
	Previous   struct{}
	Select     struct{ Index int }
	Seek       struct{ Offset float64 }
	SetVolume  struct{ Volume int }
	ToggleMute struct{}
	Move       struct{ From, To int }
)

func (Open) eventName() string             { return "open" }
func (Close) eventName() string            { return "close" }
func (AdapterCued) eventName() string      { return "adapter_cued" }
func (AdapterPlaying) eventName() string   { return "adapter_playing" }
func (AdapterPaused) eventName() string    { return "adapter_paused" }
func (AdapterBuffering) eventName() string { return "adapter_buffering" }
func (AdapterEnded) eventName() string     { return "adapter_ended" }
func (AdapterError) eventName() string     { return "adapter_error" }
func (LoadFailed) eventName() string       { return "load_failed" }
func (SeekDone) eventName() string         { return "seek_done" }
func (PositionSampled) eventName() string  { return "position_sampled" }
func (TimerFired) eventName() string       { return "timer_fired" }
func (RouteAcquired) eventName() string    { return "route_acquired" }
func (AudioStarted) eventName() string     { return "audio_started" }
func (AudioEnded) eventName() string       { return "audio_ended" }
func (AudioFailed) eventName() string      { return "audio_failed" }
func (PlayPause) eventName() string        { return "play_pause" }
func (Next) eventName() string             { return "next" }
func (Previous) eventName() string         { return "previous" }
func (Select) eventName() string           { return "select" }
func (Seek) eventName() string             { return "seek" }
func (SetVolume) eventName() string        { return "set_volume" }
func (ToggleMute) eventName() string       { return "toggle_mute" }
func (Move) eventName() string             { return "move" }
