package domain

import "fmt"

// InterstitialKind tags the variant held by an Interstitial
type InterstitialKind string

const (
	InterstitialNone  InterstitialKind = "none"
	InterstitialAudio InterstitialKind = "audio"
	InterstitialVideo InterstitialKind = "video"
)

// Interstitial describes the cue played between every pair of consecutive clips.
// Only the fields belonging to Kind are meaningful.
type Interstitial struct {
	Kind InterstitialKind `yaml:"kind,omitempty"`

	// Audio cue
	AssetRef string `yaml:"asset,omitempty"`
	// DurationHint in seconds.  Zero means unknown.
	DurationHint float64 `yaml:"duration_hint,omitempty"`

	// Video cue
	VideoID     string  `yaml:"video_id,omitempty"`
	StartOffset float64 `yaml:"start,omitempty"`
	Duration    float64 `yaml:"duration,omitempty"`
}

// AudioCue builds an audio interstitial.  Pass a zero hint when the asset length is unknown.
func AudioCue(assetRef string, durationHint float64) Interstitial {
	return Interstitial{Kind: InterstitialAudio, AssetRef: assetRef, DurationHint: durationHint}
}

// VideoCue builds a video interstitial that reuses the primary player
func VideoCue(videoID string, startOffset, duration float64) Interstitial {
	return Interstitial{Kind: InterstitialVideo, VideoID: videoID, StartOffset: startOffset, Duration: duration}
}

// EffectiveKind treats an empty kind as none
func (i Interstitial) EffectiveKind() InterstitialKind {
	if i.Kind == "" {
		return InterstitialNone
	}
	return i.Kind
}

// Validate checks the fields required by the kind
func (i Interstitial) Validate() error {
	switch i.EffectiveKind() {
	case InterstitialNone:
		return nil
	case InterstitialAudio:
		if i.AssetRef == "" {
			return fmt.Errorf("%w: audio cue needs an asset", ErrInvalidInterstitial)
		}
		if i.DurationHint < 0 {
			return fmt.Errorf("%w: negative duration hint", ErrInvalidInterstitial)
		}
		return nil
	case InterstitialVideo:
		if i.VideoID == "" || i.Duration <= 0 || i.StartOffset < 0 {
			return fmt.Errorf("%w: video cue needs a video id, a positive duration and a non-negative start", ErrInvalidInterstitial)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInterstitial, i.Kind)
	}
}
