package player

import (
	"context"
)

// AdapterEventType represents the state changes reported by the external video player
type AdapterEventType string

const (
	// EventReady indicates the player process is up and accepting commands
	EventReady AdapterEventType = "ready"
	// EventCued indicates the requested media has been loaded and can be sought
	EventCued AdapterEventType = "cued"
	// EventPlaying indicates the media is playing
	EventPlaying AdapterEventType = "playing"
	// EventPaused indicates the media is paused
	EventPaused AdapterEventType = "paused"
	// EventBuffering indicates playback is stalled waiting for data
	EventBuffering AdapterEventType = "buffering"
	// EventEnded indicates the underlying media file reached its end
	EventEnded AdapterEventType = "ended"
	// EventError indicates the media failed to load or the player went away
	EventError AdapterEventType = "error"
)

// AdapterEvent is an asynchronous notification from the video player
type AdapterEvent struct {
	Type  AdapterEventType
	Error error // Set if Type is EventError
}

// Adapter is the contract the playback orchestrator drives.  Implementations must never block for long: the
// orchestrator calls them from its event loop.
type Adapter interface {
	// Load requests the media for videoID, positioned at startOffset seconds.  Completion is reported with EventCued.
	Load(ctx context.Context, videoID string, startOffset float64) error
	Play() error
	Pause() error
	// SeekTo moves to an absolute media position in seconds
	SeekTo(seconds float64) error
	// CurrentTime returns the absolute media position in seconds
	CurrentTime() (float64, error)
	// Duration returns the length of the loaded media in seconds, or 0 when unknown
	Duration() (float64, error)
	// SetVolume sets the output volume in the range 0-100
	SetVolume(volume int) error
	Events() <-chan AdapterEvent
	Close() error
}

// AudioEventType represents the lifecycle of an auxiliary audio asset
type AudioEventType string

const (
	// AudioStarted indicates the asset is playing.  Duration is set when the player knows it.
	AudioStarted AudioEventType = "started"
	// AudioEnded indicates the asset played to completion
	AudioEnded AudioEventType = "ended"
	// AudioFailed indicates the asset could not be loaded or played
	AudioFailed AudioEventType = "failed"
)

// AudioEvent is an asynchronous notification from the audio channel
type AudioEvent struct {
	Type     AudioEventType
	Duration float64 // Seconds, 0 when unknown
	Error    error
}

// AudioChannel plays short audio assets independently of the video player
type AudioChannel interface {
	// Play starts the asset.  Progress is reported through Events.
	Play(ctx context.Context, assetRef string) error
	Stop() error
	Events() <-chan AudioEvent
	Close() error
}
