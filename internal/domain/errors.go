package domain

import "errors"

var (
	// ErrEmptyPlaylist is returned when a playlist without clips is opened for playback
	ErrEmptyPlaylist = errors.New("playlist has no clips")
	// ErrInvalidClip is returned for clips with a non-positive duration or a negative start offset
	ErrInvalidClip = errors.New("invalid clip")
	// ErrInvalidInterstitial is returned when an interstitial descriptor is missing the fields its kind needs
	ErrInvalidInterstitial = errors.New("invalid interstitial")
	// ErrIndexOutOfRange is returned for clip positions outside the playlist
	ErrIndexOutOfRange = errors.New("clip index out of range")
)
