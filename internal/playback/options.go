package playback

import (
	"math"
	"time"

	"github.com/PizzaHomicide/clipreel/internal/config"
)

// Options holds the timing and volume knobs of a session
type Options struct {
	Autoplay   bool
	Volume     int
	DuckVolume int

	PollInterval time.Duration
	SettleDelay  time.Duration
	CueTimeout   time.Duration
	// AudioFallback completes an audio cue of unknown length.  It is a guess, so it is configurable.
	AudioFallback  time.Duration
	FallbackBuffer time.Duration
	LoopDelay      time.Duration
}

// DefaultOptions mirrors the configuration defaults
func DefaultOptions() Options {
	return Options{
		Autoplay:       true,
		Volume:         80,
		DuckVolume:     20,
		PollInterval:   250 * time.Millisecond,
		SettleDelay:    300 * time.Millisecond,
		CueTimeout:     15 * time.Second,
		AudioFallback:  5 * time.Second,
		FallbackBuffer: time.Second,
		LoopDelay:      3 * time.Second,
	}
}

// OptionsFromConfig builds session options from the playback config section
func OptionsFromConfig(cfg config.PlaybackConfig) Options {
	return Options{
		Autoplay:       cfg.AutoplayEnabled(),
		Volume:         cfg.VolumeLevel(),
		DuckVolume:     cfg.DuckLevel(),
		PollInterval:   cfg.PollInterval,
		SettleDelay:    cfg.SettleDelay,
		CueTimeout:     cfg.CueTimeout,
		AudioFallback:  cfg.AudioFallback,
		FallbackBuffer: cfg.FallbackBuffer,
		LoopDelay:      cfg.LoopDelay,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
