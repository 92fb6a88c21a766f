package playback

import "context"

// Transport is the control surface the presentation layer drives.  Each call blocks until the loop has applied it.
type Transport struct {
	runner *Runner
}

func NewTransport(runner *Runner) *Transport {
	return &Transport{runner: runner}
}

// PlayPause toggles between playing and paused.  Resuming re-validates the player position against the clip.
func (t *Transport) PlayPause(ctx context.Context) error {
	return t.runner.Do(ctx, PlayPause{})
}

// Next skips to the following clip.  It does nothing on the last clip or while a clip is loading.
func (t *Transport) Next(ctx context.Context) error {
	return t.runner.Do(ctx, Next{})
}

// Previous returns to the preceding clip.  It does nothing on the first clip or while a clip is loading.
func (t *Transport) Previous(ctx context.Context) error {
	return t.runner.Do(ctx, Previous{})
}

// Seek moves to offset seconds into the current clip
func (t *Transport) Seek(ctx context.Context, offset float64) error {
	return t.runner.Do(ctx, Seek{Offset: offset})
}

// SeekBy moves relative to the current position, clamped to the clip
func (t *Transport) SeekBy(ctx context.Context, delta float64) error {
	snap := t.runner.Snapshot()
	target := snap.Position + delta
	if target < 0 {
		target = 0
	}
	if limit := snap.Clip.Duration - 0.5; target > limit {
		target = max(limit, 0)
	}
	return t.Seek(ctx, target)
}

// Select jumps to a clip.  Selecting the current clip after a failed load retries it.
func (t *Transport) Select(ctx context.Context, index int) error {
	return t.runner.Do(ctx, Select{Index: index})
}

func (t *Transport) SetVolume(ctx context.Context, volume int) error {
	return t.runner.Do(ctx, SetVolume{Volume: volume})
}

// AdjustVolume changes the volume relative to its current level
func (t *Transport) AdjustVolume(ctx context.Context, delta int) error {
	return t.SetVolume(ctx, t.runner.Snapshot().Volume+delta)
}

func (t *Transport) ToggleMute(ctx context.Context) error {
	return t.runner.Do(ctx, ToggleMute{})
}

// Move reorders the playlist and saves it.  Moving the playing clip does not interrupt it.
func (t *Transport) Move(ctx context.Context, from, to int) error {
	return t.runner.Do(ctx, Move{From: from, To: to})
}

// Snapshot returns the latest session state
func (t *Transport) Snapshot() Snapshot {
	return t.runner.Snapshot()
}

// Subscribe forwards to the runner's snapshot stream
func (t *Transport) Subscribe() (<-chan Snapshot, func()) {
	return t.runner.Subscribe()
}
