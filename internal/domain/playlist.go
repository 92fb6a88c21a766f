package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Clip is one playlist entry: a time-boxed segment of an externally hosted video
type Clip struct {
	// ID identifies the clip within its playlist and survives reordering
	ID string `yaml:"id,omitempty"`
	// VideoID is the opaque reference handed to the player adapter
	VideoID string `yaml:"video_id"`
	// StartOffset is the number of seconds into the external media where the clip begins
	StartOffset float64 `yaml:"start"`
	// Duration is the number of seconds the clip plays for
	Duration    float64 `yaml:"duration"`
	Title       string  `yaml:"title,omitempty"`
	Attribution string  `yaml:"attribution,omitempty"`
}

// NewClip creates a clip with a fresh ID
func NewClip(videoID string, startOffset, duration float64) Clip {
	return Clip{
		ID:          uuid.NewString(),
		VideoID:     videoID,
		StartOffset: startOffset,
		Duration:    duration,
	}
}

// End returns the media position, in seconds, at which the clip is over
func (c Clip) End() float64 {
	return c.StartOffset + c.Duration
}

// Contains reports whether the media position lies inside [StartOffset, End)
func (c Clip) Contains(position float64) bool {
	return position >= c.StartOffset && position < c.End()
}

// Validate checks the clip invariants
func (c Clip) Validate() error {
	if c.VideoID == "" {
		return fmt.Errorf("%w: missing video id", ErrInvalidClip)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidClip, c.Duration)
	}
	if c.StartOffset < 0 {
		return fmt.Errorf("%w: start offset must not be negative, got %v", ErrInvalidClip, c.StartOffset)
	}
	return nil
}

// Playlist is an ordered list of clips with an optional interstitial played between consecutive clips
type Playlist struct {
	ID           string       `yaml:"id,omitempty"`
	Name         string       `yaml:"name"`
	CreatedAt    time.Time    `yaml:"created_at,omitempty"`
	Loop         bool         `yaml:"loop,omitempty"`
	Interstitial Interstitial `yaml:"interstitial,omitempty"`
	Clips        []Clip       `yaml:"clips"`
}

// NewPlaylist creates a playlist with a fresh ID and creation date
func NewPlaylist(name string, clips ...Clip) *Playlist {
	p := &Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Clips:     clips,
	}
	p.EnsureIDs()
	return p
}

// EnsureIDs assigns IDs to the playlist and any clip that lacks one.  Hand-written playlist files usually do.
func (p *Playlist) EnsureIDs() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Clips {
		if p.Clips[i].ID == "" {
			p.Clips[i].ID = uuid.NewString()
		}
	}
}

// Len returns the number of clips
func (p *Playlist) Len() int {
	return len(p.Clips)
}

// Validate checks that the playlist can be played
func (p *Playlist) Validate() error {
	if len(p.Clips) == 0 {
		return ErrEmptyPlaylist
	}
	for i, c := range p.Clips {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
	}
	return p.Interstitial.Validate()
}

// IndexOf returns the position of the clip with the given ID, or -1
func (p *Playlist) IndexOf(clipID string) int {
	_, idx, ok := lo.FindIndexOf(p.Clips, func(c Clip) bool { return c.ID == clipID })
	if !ok {
		return -1
	}
	return idx
}

// Move relocates the clip at position from so that it ends up at position to, shifting the clips in between
func (p *Playlist) Move(from, to int) error {
	n := len(p.Clips)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d clips", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := p.Clips[from]
	if from < to {
		copy(p.Clips[from:to], p.Clips[from+1:to+1])
	} else {
		copy(p.Clips[to+1:from+1], p.Clips[to:from])
	}
	p.Clips[to] = moved
	return nil
}

// TotalDuration sums the clip durations.  Interstitials are not included.
func (p *Playlist) TotalDuration() time.Duration {
	total := lo.SumBy(p.Clips, func(c Clip) float64 { return c.Duration })
	return time.Duration(total * float64(time.Second))
}

// Clone returns a deep copy so the orchestrator can own its session playlist
func (p *Playlist) Clone() *Playlist {
	cp := *p
	cp.Clips = append([]Clip(nil), p.Clips...)
	return &cp
}
