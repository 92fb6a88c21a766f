package playback

import "errors"

var (
	// ErrAdapterLoadFailure is surfaced after a clip failed to load twice.  Selecting the clip again retries.
	ErrAdapterLoadFailure = errors.New("adapter failed to load clip")
	// ErrInterstitialAsset is logged when an interstitial could not be played and was skipped
	ErrInterstitialAsset = errors.New("interstitial asset failed")
	// ErrNotOpen is returned for transport commands issued before a playlist was opened
	ErrNotOpen = errors.New("no playlist open")
	// ErrSeekOutOfRange is returned for seeks outside the current clip
	ErrSeekOutOfRange = errors.New("seek target outside clip")
	// ErrNotSeekable is returned for seeks while the clip is not playing or paused
	ErrNotSeekable = errors.New("clip is not seekable in the current state")
	// ErrStopped is returned once the runner has shut down
	ErrStopped = errors.New("playback runner stopped")
)
