package playback

import (
	"github.com/samber/lo"

	"github.com/PizzaHomicide/clipreel/internal/domain"
)

// Snapshot is the read-only view of a session handed to the presentation layer
type Snapshot struct {
	State        State
	PlaylistName string
	Index        int
	Clip         domain.Clip
	Clips        []domain.Clip
	// Position is the offset into the current clip in seconds
	Position     float64
	Volume       int
	Muted        bool
	Interstitial bool
	Buffering    bool
	Loop         bool
	// LoadAttempt counts tries at loading the current clip, starting at 1
	LoadAttempt  int
	Notice       error
}

// Remaining returns the seconds left in the current clip
func (s Snapshot) Remaining() float64 {
	return lo.Clamp(s.Clip.Duration-s.Position, 0, s.Clip.Duration)
}

func (m *Machine) snapshot() Snapshot {
	s := m.session
	snap := Snapshot{
		State:        s.State,
		Index:        s.Index,
		Volume:       s.Volume,
		Muted:        s.Muted,
		Interstitial: s.IsInterstitialActive,
		Buffering:    s.Buffering,
		LoadAttempt:  s.LoadAttempts,
		Notice:       s.Notice,
	}
	if m.playlist == nil || s.Index >= m.playlist.Len() {
		return snap
	}

	clip := m.playlist.Clips[s.Index]
	snap.PlaylistName = m.playlist.Name
	snap.Loop = m.playlist.Loop
	snap.Clip = clip
	snap.Clips = append([]domain.Clip(nil), m.playlist.Clips...)
	snap.Position = lo.Clamp(s.Position-clip.StartOffset, 0, clip.Duration)
	return snap
}
