package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/player"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock is a virtual scheduler.  Advance fires due callbacks synchronously in deadline order.
type fakeClock struct {
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	at        time.Duration
	seq       int
	fn        func()
	fired     bool
	cancelled bool
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Cancel {
	c.seq++
	t := &fakeTimer{at: c.now + d, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return func() { t.cancelled = true }
}

func (c *fakeClock) Now() time.Time {
	return epoch.Add(c.now)
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		due := c.due(target)
		if due == nil {
			break
		}
		c.now = due.at
		due.fired = true
		due.fn()
	}
	c.now = target
}

func (c *fakeClock) due(target time.Duration) *fakeTimer {
	var pending []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.cancelled && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].at != pending[j].at {
			return pending[i].at < pending[j].at
		}
		return pending[i].seq < pending[j].seq
	})
	return pending[0]
}

// fakeAdapter simulates a player whose position advances with the virtual clock while playing
type fakeAdapter struct {
	clock *fakeClock
	emit  func(player.AdapterEvent)

	loads   []string
	seeks   []float64
	volumes []int

	playing bool
	pos     float64
	since   time.Duration

	// failLoads makes the next N loads fail synchronously
	failLoads int
	// silentLoads makes loads never report cued
	silentLoads bool
	// failSeeks makes the next N seeks fail
	failSeeks int
}

func (a *fakeAdapter) Load(_ context.Context, videoID string, startOffset float64) error {
	a.loads = append(a.loads, videoID)
	if a.failLoads > 0 {
		a.failLoads--
		return errors.New("load refused")
	}
	a.playing = false
	a.pos = startOffset
	a.since = a.clock.now
	if !a.silentLoads {
		a.clock.AfterFunc(0, func() { a.emit(player.AdapterEvent{Type: player.EventCued}) })
	}
	return nil
}

func (a *fakeAdapter) Play() error {
	a.pos = a.position()
	a.since = a.clock.now
	a.playing = true
	return nil
}

func (a *fakeAdapter) Pause() error {
	a.pos = a.position()
	a.since = a.clock.now
	a.playing = false
	return nil
}

func (a *fakeAdapter) SeekTo(seconds float64) error {
	a.seeks = append(a.seeks, seconds)
	if a.failSeeks > 0 {
		a.failSeeks--
		return errors.New("seek refused")
	}
	a.pos = seconds
	a.since = a.clock.now
	return nil
}

func (a *fakeAdapter) position() float64 {
	if !a.playing {
		return a.pos
	}
	return a.pos + (a.clock.now - a.since).Seconds()
}

func (a *fakeAdapter) CurrentTime() (float64, error) {
	return a.position(), nil
}

func (a *fakeAdapter) Duration() (float64, error) {
	return 600, nil
}

func (a *fakeAdapter) SetVolume(volume int) error {
	a.volumes = append(a.volumes, volume)
	return nil
}

func (a *fakeAdapter) Events() <-chan player.AdapterEvent {
	return nil
}

func (a *fakeAdapter) Close() error {
	return nil
}

func (a *fakeAdapter) volume() int {
	if len(a.volumes) == 0 {
		return -1
	}
	return a.volumes[len(a.volumes)-1]
}

// fakeAudio reports the configured duration when started and ends after it, unless told to stay silent
type fakeAudio struct {
	clock *fakeClock
	emit  func(player.AudioEvent)

	duration   float64
	neverEnds  bool
	failPlay   bool
	reportZero bool

	plays  []string
	stops  int
	cancel Cancel
}

func (f *fakeAudio) Play(_ context.Context, assetRef string) error {
	f.plays = append(f.plays, assetRef)
	if f.failPlay {
		return errors.New("asset missing")
	}
	reported := f.duration
	if f.reportZero {
		reported = 0
	}
	f.clock.AfterFunc(0, func() { f.emit(player.AudioEvent{Type: player.AudioStarted, Duration: reported}) })
	if !f.neverEnds {
		f.cancel = f.clock.AfterFunc(seconds(f.duration), func() { f.emit(player.AudioEvent{Type: player.AudioEnded}) })
	}
	return nil
}

func (f *fakeAudio) Stop() error {
	f.stops++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	return nil
}

func (f *fakeAudio) Events() <-chan player.AudioEvent {
	return nil
}

func (f *fakeAudio) Close() error {
	return nil
}

type transition struct {
	At    time.Duration
	State State
	Index int
}

func (t transition) String() string {
	return fmt.Sprintf("%s(%d)@%s", t.State, t.Index, t.At)
}

type recordingSaver struct {
	saved []*domain.Playlist
}

func (r *recordingSaver) Save(_ context.Context, p *domain.Playlist) error {
	r.saved = append(r.saved, p)
	return nil
}

// harness wires an Engine to fakes on a virtual clock and records every state transition
type harness struct {
	t           *testing.T
	clock       *fakeClock
	adapter     *fakeAdapter
	audio       *fakeAudio
	route       *player.RouteOwnership
	saver       *recordingSaver
	engine      *Engine
	transitions []transition
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.SettleDelay = 0
	return opts
}

func newHarness(t *testing.T, opts Options) *harness {
	h := &harness{t: t, clock: &fakeClock{}, route: player.NewRouteOwnership(), saver: &recordingSaver{}}
	h.adapter = &fakeAdapter{clock: h.clock}
	h.audio = &fakeAudio{clock: h.clock, duration: 2}
	h.engine = NewEngine(opts, Deps{
		Adapter:   h.adapter,
		Audio:     h.audio,
		Route:     h.route,
		Saver:     h.saver,
		Scheduler: h.clock,
	})
	h.adapter.emit = h.engine.HandleAdapterEvent
	h.audio.emit = h.engine.HandleAudioEvent

	h.engine.OnChange(func(s Snapshot) {
		n := len(h.transitions)
		if n > 0 && h.transitions[n-1].State == s.State && h.transitions[n-1].Index == s.Index {
			return
		}
		h.transitions = append(h.transitions, transition{At: h.clock.now, State: s.State, Index: s.Index})
	})
	return h
}

func (h *harness) open(p *domain.Playlist, index int) {
	h.t.Helper()
	require.NoError(h.t, h.engine.Command(Open{Playlist: p, Index: index}))
	h.clock.Advance(0)
}

func (h *harness) command(ev Event) error {
	err := h.engine.Command(ev)
	h.clock.Advance(0)
	return err
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
}

func (h *harness) session() Session {
	return h.engine.Machine().Session()
}

func (h *harness) state() State {
	return h.session().State
}

func (h *harness) pendingTimers() int {
	n := 0
	for _, t := range h.clock.timers {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

func secs(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}

func adapterEnded() player.AdapterEvent   { return player.AdapterEvent{Type: player.EventEnded} }
func adapterPaused() player.AdapterEvent  { return player.AdapterEvent{Type: player.EventPaused} }
func adapterPlaying() player.AdapterEvent { return player.AdapterEvent{Type: player.EventPlaying} }

func threeClips(interstitial domain.Interstitial) *domain.Playlist {
	p := domain.NewPlaylist("test reel",
		domain.NewClip("vid-a", 30, 5),
		domain.NewClip("vid-b", 60, 5),
		domain.NewClip("vid-c", 0, 5),
	)
	p.Interstitial = interstitial
	return p
}
