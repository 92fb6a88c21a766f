package playback

import (
	"time"

	"github.com/PizzaHomicide/clipreel/internal/domain"
)

// Effect is an instruction produced by Machine.Dispatch and carried out by the Engine
type Effect interface {
	effectName() string
}

// TimerKind names the timers a session can have armed.  At most one timer of each kind is live.
type TimerKind int

const (
	// TimerClip fires when the playing clip's time runs out
	TimerClip TimerKind = iota
	// TimerSettle delays the seek that follows the adapter's cued event
	TimerSettle
	// TimerCue bounds how long a load may wait for cued
	TimerCue
	// TimerFallback completes an audio interstitial whose ended event never arrives
	TimerFallback
	// TimerInterstitial ends a video interstitial
	TimerInterstitial
	// TimerLoop restarts a looping playlist after it ended
	TimerLoop
)

var timerNames = map[TimerKind]string{
	TimerClip:         "clip",
	TimerSettle:       "settle",
	TimerCue:          "cue_timeout",
	TimerFallback:     "fallback",
	TimerInterstitial: "interstitial",
	TimerLoop:         "loop",
}

func (k TimerKind) String() string {
	return timerNames[k]
}

// SeekPurpose tells the machine which seek a SeekDone answers
type SeekPurpose int

const (
	SeekSettle SeekPurpose = iota
	SeekUser
	SeekResume
	SeekCue
)

// SamplePurpose tells the machine why a position was sampled
type SamplePurpose int

const (
	SampleClipEnd SamplePurpose = iota
	SampleResume
	SampleExternalResume
)

type (
	LoadMedia struct {
		Generation  uint64
		VideoID     string
		StartOffset float64
	}
	SeekTo struct {
		Generation uint64
		Purpose    SeekPurpose
		Position   float64
	}
	Play        struct{}
	Pause       struct{}
	ApplyVolume struct{ Volume int }

	StartTimer struct {
		Kind  TimerKind
		After time.Duration
		Token uint64
	}
	CancelTimer struct{ Kind TimerKind }

	StartPoller struct{ Generation uint64 }
	StopPoller  struct{}

	SamplePosition struct {
		Generation uint64
		Purpose    SamplePurpose
	}

	AcquireRoute struct{ Token uint64 }
	ReleaseRoute struct{}
	PlayAudio    struct{ AssetRef string }
	StopAudio    struct{}

	SavePlaylist struct{ Playlist *domain.Playlist }

	// Notify surfaces a non-blocking notice to the presentation layer
	Notify struct{ Err error }
	// Reject fails the user command being dispatched
	Reject struct{ Err error }
)

func (LoadMedia) effectName() string      { return "load_media" }
func (SeekTo) effectName() string         { return "seek_to" }
func (Play) effectName() string           { return "play" }
func (Pause) effectName() string          { return "pause" }
func (ApplyVolume) effectName() string    { return "set_volume" }
func (StartTimer) effectName() string     { return "start_timer" }
func (CancelTimer) effectName() string    { return "cancel_timer" }
func (StartPoller) effectName() string    { return "start_poller" }
func (StopPoller) effectName() string     { return "stop_poller" }
func (SamplePosition) effectName() string { return "sample_position" }
func (AcquireRoute) effectName() string   { return "acquire_route" }
func (ReleaseRoute) effectName() string   { return "release_route" }
func (PlayAudio) effectName() string      { return "play_audio" }
func (StopAudio) effectName() string      { return "stop_audio" }
func (SavePlaylist) effectName() string   { return "save_playlist" }
func (Notify) effectName() string         { return "notify" }
func (Reject) effectName() string         { return "reject" }
