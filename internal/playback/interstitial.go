package playback

import (
	"fmt"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
)

// startInterstitial enters InterstitialPlaying after the latch approved the end of the current clip
func (m *Machine) startInterstitial() []Effect {
	s := &m.session
	desc := m.playlist.Interstitial

	s.State = StateInterstitialPlaying
	s.IsInterstitialActive = true
	s.cueSeq++
	s.cue = cue{token: s.cueSeq, kind: desc.EffectiveKind()}
	log.Info("Starting interstitial", "kind", s.cue.kind, "after", s.Index, "token", s.cue.token)

	switch s.cue.kind {
	case domain.InterstitialNone:
		return m.interstitialDone()
	case domain.InterstitialAudio:
		// Ducking waits for the route so a busy route never leaves the player ducked
		return []Effect{AcquireRoute{Token: s.cue.token}}
	case domain.InterstitialVideo:
		return []Effect{
			LoadMedia{Generation: s.Generation, VideoID: desc.VideoID, StartOffset: desc.StartOffset},
			StartTimer{Kind: TimerCue, After: m.opts.CueTimeout, Token: s.Generation},
		}
	}
	log.Warn("Unknown interstitial kind, skipping", "kind", s.cue.kind)
	return m.interstitialDone()
}

func (m *Machine) audioCueActive() bool {
	return m.session.IsInterstitialActive && m.session.cue.kind == domain.InterstitialAudio
}

func (m *Machine) onRouteAcquired(e RouteAcquired) []Effect {
	s := &m.session
	if !m.audioCueActive() || e.Token != s.cue.token {
		log.Debug("Releasing audio route taken for a finished interstitial", "token", e.Token)
		return []Effect{ReleaseRoute{}}
	}
	if s.cue.ducked {
		return nil
	}

	desc := m.playlist.Interstitial
	s.cue.ducked = true
	s.cue.startedAt = e.At

	fallback := m.opts.AudioFallback
	if desc.DurationHint > 0 {
		fallback = seconds(desc.DurationHint) + m.opts.FallbackBuffer
	}
	duck := min(m.opts.DuckVolume, s.level().effective())
	log.Debug("Ducking player for audio interstitial", "volume", duck, "asset", desc.AssetRef, "fallback", fallback)

	return []Effect{
		ApplyVolume{Volume: duck},
		PlayAudio{AssetRef: desc.AssetRef},
		StartTimer{Kind: TimerFallback, After: fallback, Token: s.cue.token},
	}
}

// onAudioStarted re-arms the fallback once the asset's real length is known.  The deadline is measured from the
// start of the cue, not from this event.
func (m *Machine) onAudioStarted(e AudioStarted) []Effect {
	s := &m.session
	if !m.audioCueActive() || !s.cue.ducked || e.Duration <= 0 {
		return nil
	}

	remaining := seconds(e.Duration) + m.opts.FallbackBuffer - e.At.Sub(s.cue.startedAt)
	if remaining <= 0 {
		log.Debug("Audio interstitial already past its fallback deadline", "duration", e.Duration)
		return m.interstitialDone()
	}
	log.Debug("Re-arming interstitial fallback", "duration", e.Duration, "remaining", remaining)
	return []Effect{StartTimer{Kind: TimerFallback, After: remaining, Token: s.cue.token}}
}

// onInterstitialCued gives a freshly loaded video cue the same settle delay as a clip before seeking into it
func (m *Machine) onInterstitialCued() []Effect {
	s := &m.session
	if s.cue.kind != domain.InterstitialVideo || s.cue.cued {
		return nil
	}
	s.cue.cued = true
	log.Debug("Video interstitial cued, waiting for player to settle", "video_id", m.playlist.Interstitial.VideoID,
		"delay", m.opts.SettleDelay)

	return []Effect{
		CancelTimer{Kind: TimerCue},
		StartTimer{Kind: TimerSettle, After: m.opts.SettleDelay, Token: s.Generation},
	}
}

// videoCueSettling reports whether a cued video interstitial is still waiting on its start seek
func (m *Machine) videoCueSettling() bool {
	s := &m.session
	return s.IsInterstitialActive && s.cue.kind == domain.InterstitialVideo && s.cue.cued && !s.cue.started
}

func (m *Machine) onCueSeekDone(err error) []Effect {
	s := &m.session
	if !m.videoCueSettling() {
		return nil
	}
	desc := m.playlist.Interstitial

	if err != nil {
		s.cue.seekRetries++
		if s.cue.seekRetries > maxSettleRetries {
			log.Warn("Skipping interstitial", "index", s.Index,
				"error", fmt.Errorf("%w: seek to cue start: %v", ErrInterstitialAsset, err))
			return m.interstitialDone()
		}
		log.Debug("Cue seek failed, retrying", "video_id", desc.VideoID, "attempt", s.cue.seekRetries, "error", err)
		return []Effect{StartTimer{Kind: TimerSettle, After: m.opts.SettleDelay, Token: s.Generation}}
	}

	s.cue.started = true
	log.Debug("Video interstitial playing", "video_id", desc.VideoID, "duration", desc.Duration)
	return []Effect{
		Play{},
		StartTimer{Kind: TimerInterstitial, After: seconds(desc.Duration), Token: s.cue.token},
	}
}

// endInterstitial restores the pre-interstitial volume and mute and releases everything the cue held.
// It is shared by normal completion and by navigation that supersedes the cue.
func (m *Machine) endInterstitial() []Effect {
	s := &m.session
	effects := []Effect{
		CancelTimer{Kind: TimerFallback},
		CancelTimer{Kind: TimerInterstitial},
		CancelTimer{Kind: TimerCue},
		CancelTimer{Kind: TimerSettle},
	}
	if s.cue.kind == domain.InterstitialAudio {
		effects = append(effects, StopAudio{}, ReleaseRoute{})
	}
	effects = append(effects, ApplyVolume{Volume: s.level().effective()})

	s.IsInterstitialActive = false
	s.cue = cue{token: s.cue.token, kind: s.cue.kind}
	return effects
}

// interstitialDone completes the active interstitial at most once, then loads the next clip
func (m *Machine) interstitialDone() []Effect {
	s := &m.session
	if !s.IsInterstitialActive {
		return nil
	}
	effects := m.endInterstitial()

	next := s.Index + 1
	if next >= m.playlist.Len() {
		return append(effects, m.end()...)
	}
	return append(effects, m.load(next)...)
}
