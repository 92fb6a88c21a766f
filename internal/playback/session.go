package playback

import (
	"time"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
)

// State is the transport state of a playback session
type State int

const (
	StateIdle State = iota
	StateLoadingClip
	StatePlaying
	StatePaused
	StateInterstitialPlaying
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingClip:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateInterstitialPlaying:
		return "interstitial"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Signal identifies the clip a clip-end source believed was playing when it fired
type Signal struct {
	Source     string
	Index      int
	Generation uint64
}

// audioLevel is a volume together with its mute flag
type audioLevel struct {
	Volume int
	Muted  bool
}

func (a audioLevel) effective() int {
	if a.Muted {
		return 0
	}
	return a.Volume
}

// cue tracks the interstitial currently between two clips
type cue struct {
	token  uint64
	kind   domain.InterstitialKind
	ducked bool
	cued   bool
	// started is set once a video cue has been seeked to its start and told to play
	started     bool
	seekRetries int
	// startedAt is when the audio route was taken, on the scheduler's clock
	startedAt time.Time
}

// Session is the mutable state of one opened playlist.  Only the event loop touches it.
type Session struct {
	Index int
	State State
	// Generation increases on every clip load.  Every clip-end signal carries the generation it was armed for.
	Generation uint64

	IsAdvancing               bool
	HasAdvancedForCurrentClip bool
	IsInterstitialActive      bool

	Volume int
	Muted  bool

	// PendingSeek is the clip start awaiting the settle seek after the adapter cued
	PendingSeek    float64
	HasPendingSeek bool

	LoadAttempts int
	LoadFailed   bool
	Notice       error

	// Position is the last sampled absolute media position
	Position  float64
	Buffering bool

	clipID        string
	cued          bool
	settleRetries int
	cueSeq        uint64
	cue           cue
}

// ApproveAdvancement is the advancement latch.  The first signal for the current clip wins; every later or stale
// signal is discarded, as is any signal arriving while an interstitial runs.  Both guards are set before returning
// true, so the caller owns the transition.
func (s *Session) ApproveAdvancement(sig Signal) bool {
	if sig.Generation != s.Generation || sig.Index != s.Index {
		log.Debug("Discarding stale clip-end signal", "source", sig.Source, "signal_index", sig.Index,
			"signal_generation", sig.Generation, "index", s.Index, "generation", s.Generation)
		return false
	}
	if s.IsAdvancing || s.HasAdvancedForCurrentClip || s.IsInterstitialActive {
		log.Debug("Discarding duplicate clip-end signal", "source", sig.Source, "index", s.Index,
			"generation", s.Generation, "interstitial", s.IsInterstitialActive)
		return false
	}
	s.IsAdvancing = true
	s.HasAdvancedForCurrentClip = true
	log.Debug("Clip-end approved", "source", sig.Source, "index", s.Index, "generation", s.Generation)
	return true
}

// beginLoad is the LoadingClip entry action and the only place the latch guards are cleared
func (s *Session) beginLoad(index int, clip domain.Clip) {
	s.Generation++
	s.Index = index
	s.State = StateLoadingClip
	s.IsAdvancing = false
	s.HasAdvancedForCurrentClip = false
	s.PendingSeek = clip.StartOffset
	s.HasPendingSeek = true
	s.LoadAttempts = 1
	s.LoadFailed = false
	s.Notice = nil
	s.Position = clip.StartOffset
	s.Buffering = false
	s.clipID = clip.ID
	s.cued = false
	s.settleRetries = 0
}

func (s *Session) level() audioLevel {
	return audioLevel{Volume: s.Volume, Muted: s.Muted}
}
