package playback

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
)

const (
	// maxLoadAttempts is the initial load plus one retry
	maxLoadAttempts  = 2
	maxSettleRetries = 3
)

var errCueTimeout = errors.New("adapter did not report cued in time")

// Machine is the playback state machine.  Dispatch is the only way session state changes, and it never performs
// I/O itself: everything it wants done is returned as effects.
type Machine struct {
	opts     Options
	playlist *domain.Playlist
	session  Session
}

func NewMachine(opts Options) *Machine {
	m := &Machine{opts: opts}
	m.session.Volume = lo.Clamp(opts.Volume, 0, 100)
	return m
}

// Session returns a copy of the current session
func (m *Machine) Session() Session {
	return m.session
}

// Playlist returns the playlist being played, or nil before Open
func (m *Machine) Playlist() *domain.Playlist {
	return m.playlist
}

func (m *Machine) currentClip() domain.Clip {
	return m.playlist.Clips[m.session.Index]
}

// Dispatch applies one event to the session and returns the effects to carry out, in order
func (m *Machine) Dispatch(ev Event) []Effect {
	s := &m.session
	log.Trace("Dispatching playback event", "event", ev.eventName(), "state", s.State.String(), "index", s.Index,
		"generation", s.Generation)

	switch e := ev.(type) {
	case Open:
		return m.open(e)
	case Close:
		return m.close()
	}

	if m.playlist == nil || s.State == StateIdle {
		if isCommand(ev) {
			return []Effect{Reject{Err: ErrNotOpen}}
		}
		return nil
	}

	switch e := ev.(type) {
	case AdapterCued:
		return m.onCued()
	case AdapterPlaying:
		if s.State == StatePaused && !s.LoadFailed {
			log.Debug("Player resumed externally", "index", s.Index)
			return []Effect{SamplePosition{Generation: s.Generation, Purpose: SampleExternalResume}}
		}
		return nil
	case AdapterPaused:
		if s.State == StatePlaying {
			log.Debug("Player paused externally", "index", s.Index)
			return m.pause(false)
		}
		return nil
	case AdapterBuffering:
		s.Buffering = s.State == StatePlaying
		return nil
	case AdapterEnded:
		return m.onAdapterEnded()
	case AdapterError:
		return m.onAdapterError(e.Err)
	case LoadFailed:
		if e.Generation != s.Generation {
			return nil
		}
		return m.onAdapterError(e.Err)
	case SeekDone:
		return m.onSeekDone(e)
	case PositionSampled:
		return m.onPositionSampled(e)
	case TimerFired:
		return m.onTimer(e)
	case RouteAcquired:
		return m.onRouteAcquired(e)
	case AudioStarted:
		return m.onAudioStarted(e)
	case AudioEnded:
		if m.audioCueActive() {
			log.Debug("Audio interstitial ended", "index", s.Index)
			return m.interstitialDone()
		}
		return nil
	case AudioFailed:
		if m.audioCueActive() {
			log.Warn("Skipping interstitial", "index", s.Index, "error", fmt.Errorf("%w: %v", ErrInterstitialAsset, e.Err))
			return m.interstitialDone()
		}
		return nil
	case PlayPause:
		return m.playPause()
	case Next:
		return m.navigate(s.Index + 1)
	case Previous:
		return m.navigate(s.Index - 1)
	case Select:
		return m.selectClip(e.Index)
	case Seek:
		return m.seek(e.Offset)
	case SetVolume:
		s.Volume = lo.Clamp(e.Volume, 0, 100)
		return m.applyLevel()
	case ToggleMute:
		s.Muted = !s.Muted
		return m.applyLevel()
	case Move:
		return m.move(e)
	}

	log.Warn("Unhandled playback event", "event", ev.eventName())
	return nil
}

func isCommand(ev Event) bool {
	switch ev.(type) {
	case PlayPause, Next, Previous, Select, Seek, SetVolume, ToggleMute, Move:
		return true
	}
	return false
}

func (m *Machine) open(e Open) []Effect {
	if e.Playlist == nil {
		return []Effect{Reject{Err: domain.ErrEmptyPlaylist}}
	}
	if err := e.Playlist.Validate(); err != nil {
		return []Effect{Reject{Err: err}}
	}

	var effects []Effect
	if m.session.State != StateIdle {
		effects = m.supersede()
	}

	index := e.Index
	if index < 0 || index >= e.Playlist.Len() {
		log.Warn("Ignoring out of range start clip", "index", index, "clips", e.Playlist.Len())
		index = 0
	}

	e.Playlist.EnsureIDs()
	prev := m.session
	m.playlist = e.Playlist
	m.session = Session{
		Volume:     prev.Volume,
		Muted:      prev.Muted,
		Generation: prev.Generation,
		cueSeq:     prev.cueSeq,
	}
	log.Info("Opening playlist", "name", e.Playlist.Name, "clips", e.Playlist.Len(), "start", index)

	effects = append(effects, ApplyVolume{Volume: m.session.level().effective()})
	return append(effects, m.load(index)...)
}

func (m *Machine) close() []Effect {
	if m.session.State == StateIdle {
		return nil
	}
	effects := m.supersede()
	m.session.State = StateIdle
	log.Info("Closing playlist")
	return append(effects, Pause{})
}

// load enters LoadingClip for index
func (m *Machine) load(index int) []Effect {
	s := &m.session
	clip := m.playlist.Clips[index]
	s.beginLoad(index, clip)
	log.Info("Loading clip", "index", index, "video_id", clip.VideoID, "start", clip.StartOffset,
		"duration", clip.Duration, "generation", s.Generation)

	return []Effect{
		CancelTimer{Kind: TimerClip},
		CancelTimer{Kind: TimerSettle},
		CancelTimer{Kind: TimerLoop},
		StopPoller{},
		LoadMedia{Generation: s.Generation, VideoID: clip.VideoID, StartOffset: clip.StartOffset},
		StartTimer{Kind: TimerCue, After: m.opts.CueTimeout, Token: s.Generation},
	}
}

// supersede abandons whatever the current clip or interstitial was doing
func (m *Machine) supersede() []Effect {
	effects := []Effect{
		CancelTimer{Kind: TimerClip},
		CancelTimer{Kind: TimerSettle},
		CancelTimer{Kind: TimerCue},
		CancelTimer{Kind: TimerLoop},
		StopPoller{},
	}
	if m.session.IsInterstitialActive {
		effects = append(effects, m.endInterstitial()...)
	}
	return effects
}

func (m *Machine) onCued() []Effect {
	s := &m.session
	switch s.State {
	case StateLoadingClip:
		if s.cued {
			return nil
		}
		s.cued = true
		log.Debug("Clip cued, waiting for player to settle", "index", s.Index, "delay", m.opts.SettleDelay)
		return []Effect{
			CancelTimer{Kind: TimerCue},
			StartTimer{Kind: TimerSettle, After: m.opts.SettleDelay, Token: s.Generation},
		}
	case StateInterstitialPlaying:
		return m.onInterstitialCued()
	}
	return nil
}

func (m *Machine) onSeekDone(e SeekDone) []Effect {
	s := &m.session
	if e.Generation != s.Generation {
		return nil
	}

	if e.Purpose == SeekCue {
		return m.onCueSeekDone(e.Err)
	}
	if e.Purpose != SeekSettle {
		if e.Err != nil {
			log.Warn("Seek failed", "index", s.Index, "purpose", e.Purpose, "error", e.Err)
		}
		return nil
	}
	if s.State != StateLoadingClip || !s.HasPendingSeek {
		return nil
	}

	if e.Err != nil {
		s.settleRetries++
		if s.settleRetries > maxSettleRetries {
			return m.loadFailure(fmt.Errorf("seek to clip start: %w", e.Err))
		}
		log.Debug("Settle seek failed, retrying", "index", s.Index, "attempt", s.settleRetries, "error", e.Err)
		return []Effect{StartTimer{Kind: TimerSettle, After: m.opts.SettleDelay, Token: s.Generation}}
	}

	clip := m.currentClip()
	s.HasPendingSeek = false
	s.Position = clip.StartOffset

	if !m.opts.Autoplay {
		s.State = StatePaused
		log.Info("Clip ready, autoplay disabled", "index", s.Index)
		return []Effect{Pause{}}
	}
	log.Info("Clip playing", "index", s.Index, "generation", s.Generation)
	return append([]Effect{Play{}}, m.startPlaying(clip.Duration)...)
}

// startPlaying enters Playing and arms the clip-end timer and poller for the remaining clip time
func (m *Machine) startPlaying(remaining float64) []Effect {
	s := &m.session
	s.State = StatePlaying
	s.Buffering = false
	return []Effect{
		StartTimer{Kind: TimerClip, After: seconds(remaining), Token: s.Generation},
		StartPoller{Generation: s.Generation},
	}
}

// pause leaves Playing.  issue is false when the player paused on its own.
func (m *Machine) pause(issue bool) []Effect {
	s := &m.session
	s.State = StatePaused
	effects := []Effect{CancelTimer{Kind: TimerClip}, StopPoller{}}
	if issue {
		effects = append([]Effect{Pause{}}, effects...)
	}
	return effects
}

func (m *Machine) onAdapterEnded() []Effect {
	s := &m.session
	switch s.State {
	case StatePlaying:
		return m.clipEnded(Signal{Source: "adapter", Index: s.Index, Generation: s.Generation})
	case StateInterstitialPlaying:
		if s.cue.kind == domain.InterstitialVideo {
			log.Debug("Video interstitial reached end of media", "index", s.Index)
			return m.interstitialDone()
		}
	}
	return nil
}

func (m *Machine) onAdapterError(err error) []Effect {
	s := &m.session
	switch s.State {
	case StateLoadingClip:
		return m.loadFailure(err)
	case StateInterstitialPlaying:
		if s.cue.kind == domain.InterstitialVideo {
			log.Warn("Skipping interstitial", "index", s.Index, "error", fmt.Errorf("%w: %v", ErrInterstitialAsset, err))
			return m.interstitialDone()
		}
	}
	log.Warn("Player reported an error", "state", s.State.String(), "index", s.Index, "error", err)
	s.Notice = err
	return []Effect{Notify{Err: err}}
}

// loadFailure retries the current clip once, then parks the session in Paused until the user retries
func (m *Machine) loadFailure(err error) []Effect {
	s := &m.session
	clip := m.currentClip()

	if s.LoadAttempts < maxLoadAttempts {
		s.LoadAttempts++
		s.cued = false
		s.settleRetries = 0
		s.HasPendingSeek = true
		log.Warn("Clip failed to load, retrying", "index", s.Index, "attempt", s.LoadAttempts, "error", err)
		return []Effect{
			CancelTimer{Kind: TimerSettle},
			LoadMedia{Generation: s.Generation, VideoID: clip.VideoID, StartOffset: clip.StartOffset},
			StartTimer{Kind: TimerCue, After: m.opts.CueTimeout, Token: s.Generation},
		}
	}

	s.State = StatePaused
	s.LoadFailed = true
	s.HasPendingSeek = false
	s.Notice = fmt.Errorf("%w: clip %d: %v", ErrAdapterLoadFailure, s.Index+1, err)
	log.Error("Clip failed to load", "index", s.Index, "video_id", clip.VideoID, "error", err)
	return []Effect{
		CancelTimer{Kind: TimerCue},
		CancelTimer{Kind: TimerSettle},
		Notify{Err: s.Notice},
	}
}

func (m *Machine) onPositionSampled(e PositionSampled) []Effect {
	s := &m.session
	if e.Generation != s.Generation {
		return nil
	}
	if e.Err == nil {
		s.Position = e.Position
	}

	switch e.Purpose {
	case SampleClipEnd:
		if s.State != StatePlaying || e.Err != nil {
			return nil
		}
		s.Buffering = false
		if e.Position >= m.currentClip().End() {
			return m.clipEnded(Signal{Source: "poller", Index: s.Index, Generation: e.Generation})
		}
		return nil
	case SampleResume, SampleExternalResume:
		if s.State != StatePaused {
			return nil
		}
		return m.resume(e.Position, e.Err, e.Purpose == SampleExternalResume)
	}
	return nil
}

// resume re-validates the player position before returning to Playing.  The player may have drifted while
// paused, so anything outside the clip window starts the clip over.
func (m *Machine) resume(position float64, sampleErr error, external bool) []Effect {
	s := &m.session
	clip := m.currentClip()
	remaining := clip.End() - position

	var effects []Effect
	if sampleErr != nil || !clip.Contains(position) {
		log.Debug("Position outside clip on resume, reseeking", "index", s.Index, "position", position,
			"start", clip.StartOffset, "end", clip.End(), "error", sampleErr)
		effects = append(effects, SeekTo{Generation: s.Generation, Purpose: SeekResume, Position: clip.StartOffset})
		s.Position = clip.StartOffset
		remaining = clip.Duration
	}
	if !external {
		effects = append(effects, Play{})
	}
	log.Info("Clip resumed", "index", s.Index, "remaining", remaining)
	return append(effects, m.startPlaying(remaining)...)
}

// clipEnded routes a clip-end signal through the latch.  Only the approved signal moves the session on.
func (m *Machine) clipEnded(sig Signal) []Effect {
	s := &m.session
	if s.State != StatePlaying {
		log.Debug("Ignoring clip-end signal outside playing state", "source", sig.Source, "state", s.State.String())
		return nil
	}
	if !s.ApproveAdvancement(sig) {
		return nil
	}

	effects := []Effect{CancelTimer{Kind: TimerClip}, StopPoller{}}
	if s.Index+1 >= m.playlist.Len() {
		return append(effects, m.end()...)
	}
	return append(effects, m.startInterstitial()...)
}

func (m *Machine) end() []Effect {
	s := &m.session
	s.State = StateEnded
	log.Info("Playlist ended", "name", m.playlist.Name, "loop", m.playlist.Loop)

	effects := []Effect{Pause{}}
	if m.playlist.Loop {
		effects = append(effects, StartTimer{Kind: TimerLoop, After: m.opts.LoopDelay, Token: s.Generation})
	}
	return effects
}

func (m *Machine) onTimer(e TimerFired) []Effect {
	s := &m.session
	switch e.Kind {
	case TimerClip:
		return m.clipEnded(Signal{Source: "timer", Index: s.Index, Generation: e.Token})

	case TimerSettle:
		if e.Token != s.Generation {
			return nil
		}
		if m.videoCueSettling() {
			return []Effect{SeekTo{Generation: s.Generation, Purpose: SeekCue, Position: m.playlist.Interstitial.StartOffset}}
		}
		if s.State != StateLoadingClip || !s.HasPendingSeek {
			return nil
		}
		return []Effect{SeekTo{Generation: s.Generation, Purpose: SeekSettle, Position: s.PendingSeek}}

	case TimerCue:
		if e.Token != s.Generation {
			return nil
		}
		if s.State == StateLoadingClip && !s.cued {
			return m.loadFailure(errCueTimeout)
		}
		if s.State == StateInterstitialPlaying && s.cue.kind == domain.InterstitialVideo && !s.cue.cued {
			log.Warn("Skipping interstitial", "index", s.Index, "error", fmt.Errorf("%w: %v", ErrInterstitialAsset, errCueTimeout))
			return m.interstitialDone()
		}
		return nil

	case TimerFallback, TimerInterstitial:
		if !s.IsInterstitialActive || e.Token != s.cue.token {
			return nil
		}
		log.Debug("Interstitial timer fired", "kind", e.Kind.String(), "index", s.Index)
		return m.interstitialDone()

	case TimerLoop:
		if e.Token != s.Generation || s.State != StateEnded {
			return nil
		}
		log.Info("Looping playlist", "name", m.playlist.Name)
		return m.load(0)
	}
	return nil
}

func (m *Machine) playPause() []Effect {
	s := &m.session
	switch s.State {
	case StatePlaying:
		log.Info("Clip paused", "index", s.Index)
		return m.pause(true)
	case StatePaused:
		if s.LoadFailed {
			log.Info("Retrying failed clip", "index", s.Index)
			return append(m.supersede(), m.load(s.Index)...)
		}
		return []Effect{SamplePosition{Generation: s.Generation, Purpose: SampleResume}}
	case StateEnded:
		return append(m.supersede(), m.load(0)...)
	}
	log.Debug("Ignoring play/pause", "state", s.State.String())
	return nil
}

// navigate implements next and previous: no-op at the playlist boundary or while a load is pending
func (m *Machine) navigate(target int) []Effect {
	s := &m.session
	if s.State == StateLoadingClip {
		log.Debug("Ignoring navigation while a clip is loading", "index", s.Index)
		return nil
	}
	if target < 0 || target >= m.playlist.Len() {
		log.Debug("Ignoring navigation past playlist boundary", "target", target)
		return nil
	}
	return append(m.supersede(), m.load(target)...)
}

func (m *Machine) selectClip(index int) []Effect {
	if index < 0 || index >= m.playlist.Len() {
		return []Effect{Reject{Err: fmt.Errorf("%w: clip %d", domain.ErrIndexOutOfRange, index)}}
	}
	return append(m.supersede(), m.load(index)...)
}

func (m *Machine) seek(offset float64) []Effect {
	s := &m.session
	if (s.State != StatePlaying && s.State != StatePaused) || s.LoadFailed {
		return []Effect{Reject{Err: ErrNotSeekable}}
	}
	clip := m.currentClip()
	if offset < 0 || offset >= clip.Duration {
		return []Effect{Reject{Err: fmt.Errorf("%w: %.1fs of %.1fs", ErrSeekOutOfRange, offset, clip.Duration)}}
	}

	position := clip.StartOffset + offset
	s.Position = position
	effects := []Effect{SeekTo{Generation: s.Generation, Purpose: SeekUser, Position: position}}
	if s.State == StatePlaying {
		effects = append(effects, StartTimer{Kind: TimerClip, After: seconds(clip.Duration - offset), Token: s.Generation})
	}
	return effects
}

// applyLevel pushes the user's volume to the player.  While an audio cue is ducking the player only the remembered
// level changes, unless it drops below the duck level.
func (m *Machine) applyLevel() []Effect {
	s := &m.session
	level := s.level().effective()
	if s.IsInterstitialActive && s.cue.ducked {
		level = min(m.opts.DuckVolume, level)
	}
	return []Effect{ApplyVolume{Volume: level}}
}

// move reorders the playlist.  The session follows the playing clip by ID, so playback is not interrupted.
func (m *Machine) move(e Move) []Effect {
	s := &m.session
	if err := m.playlist.Move(e.From, e.To); err != nil {
		return []Effect{Reject{Err: err}}
	}
	if idx := m.playlist.IndexOf(s.clipID); idx >= 0 && idx != s.Index {
		log.Debug("Playing clip moved", "from", s.Index, "to", idx)
		s.Index = idx
	}
	return []Effect{SavePlaylist{Playlist: m.playlist.Clone()}}
}
