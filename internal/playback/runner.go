package playback

import (
	"context"
	"sync"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/player"
)

// Runner owns the playback event loop.  Player events, audio events, timer callbacks and user commands are all
// funnelled into one goroutine, which is the only one that touches the engine.
type Runner struct {
	engine  *Engine
	adapter player.Adapter
	audio   player.AudioChannel

	work chan func()
	done chan struct{}

	mu   sync.RWMutex
	last Snapshot
	subs map[int]chan Snapshot
	next int
}

// NewRunner wires an engine to a loop.  deps.Scheduler is ignored; the runner provides its own.
func NewRunner(opts Options, deps Deps) *Runner {
	r := &Runner{
		adapter: deps.Adapter,
		audio:   deps.Audio,
		work:    make(chan func(), 64),
		done:    make(chan struct{}),
		subs:    make(map[int]chan Snapshot),
	}
	deps.Scheduler = loopScheduler{post: r.post}
	r.engine = NewEngine(opts, deps)
	r.engine.OnChange(r.publish)
	r.last = r.engine.Snapshot()
	return r
}

// Run processes events until ctx is cancelled.  Timers are stopped and the audio route released on exit.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	log.Debug("Playback loop started")

	adapterEvents := r.adapter.Events()
	var audioEvents <-chan player.AudioEvent
	if r.audio != nil {
		audioEvents = r.audio.Events()
	}

	for {
		select {
		case <-ctx.Done():
			r.engine.Shutdown()
			log.Debug("Playback loop stopped")
			return ctx.Err()

		case fn := <-r.work:
			fn()

		case ev, ok := <-adapterEvents:
			if !ok {
				log.Warn("Video player event stream closed")
				adapterEvents = nil
				continue
			}
			r.engine.HandleAdapterEvent(ev)

		case ev, ok := <-audioEvents:
			if !ok {
				log.Warn("Audio channel event stream closed")
				audioEvents = nil
				continue
			}
			r.engine.HandleAudioEvent(ev)
		}
	}
}

// post queues fn on the loop.  It reports false once the loop has stopped.
func (r *Runner) post(fn func()) bool {
	select {
	case r.work <- fn:
		return true
	case <-r.done:
		return false
	}
}

// Do runs a command event on the loop and waits for its outcome
func (r *Runner) Do(ctx context.Context, ev Event) error {
	result := make(chan error, 1)
	if !r.post(func() { result <- r.engine.Command(ev) }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}
}

// Open starts playing playlist from clip index.  An out of range index falls back to the first clip.
func (r *Runner) Open(ctx context.Context, playlist *domain.Playlist, index int) error {
	if playlist == nil {
		return domain.ErrEmptyPlaylist
	}
	if err := playlist.Validate(); err != nil {
		return err
	}
	return r.Do(ctx, Open{Playlist: playlist.Clone(), Index: index})
}

// Close ends the session without stopping the loop
func (r *Runner) Close(ctx context.Context) error {
	return r.Do(ctx, Close{})
}

// Snapshot returns the most recently published state
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Subscribe returns a channel receiving every new snapshot.  Slow subscribers only miss intermediate snapshots,
// never the loop.  Call the returned func to unsubscribe.
func (r *Runner) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = ch
	ch <- r.last
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(ch)
		}
	}
}

func (r *Runner) publish(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = snap
	for _, ch := range r.subs {
		// Replace a stale unread snapshot with the latest one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
