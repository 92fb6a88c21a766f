package playback

import (
	"context"
	"errors"
	"time"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/player"
)

const (
	adapterCallTimeout = 2 * time.Second
	saveTimeout        = 2 * time.Second
	routeOwner         = "interstitial"
)

var errNoAudioChannel = errors.New("no audio channel configured")

// RouteOwner hands out the shared audio route
type RouteOwner interface {
	Acquire(owner string) (func(), error)
}

// Deps are the collaborators an Engine drives.  Audio, Route and Saver are optional.
type Deps struct {
	Adapter   player.Adapter
	Audio     player.AudioChannel
	Route     RouteOwner
	Saver     domain.PlaylistSaver
	Scheduler Scheduler
}

// Engine carries out the effects produced by a Machine and feeds their results back as events.
// It is not safe for concurrent use: a single event loop must own it.
type Engine struct {
	machine *Machine
	opts    Options
	deps    Deps

	timers  map[TimerKind]Cancel
	poll    Cancel
	pollSeq uint64
	release func()

	queue    []Event
	running  bool
	rejected error
	notice   error
	onChange func(Snapshot)
}

func NewEngine(opts Options, deps Deps) *Engine {
	return &Engine{
		machine: NewMachine(opts),
		opts:    opts,
		deps:    deps,
		timers:  make(map[TimerKind]Cancel),
	}
}

// OnChange registers a callback invoked with a fresh snapshot after every dispatched event
func (e *Engine) OnChange(fn func(Snapshot)) {
	e.onChange = fn
}

// Machine exposes the state machine, mainly for inspection in tests
func (e *Engine) Machine() *Machine {
	return e.machine
}

// Snapshot returns the current presentation view
func (e *Engine) Snapshot() Snapshot {
	snap := e.machine.snapshot()
	if e.notice != nil {
		snap.Notice = e.notice
	}
	return snap
}

// Handle dispatches ev and every event its effects feed back, in order.  Events raised while handling are queued
// behind the current one, so no dispatch ever interleaves with another.
func (e *Engine) Handle(ev Event) {
	e.queue = append(e.queue, ev)
	if e.running {
		return
	}
	e.running = true
	defer func() { e.running = false }()

	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		for _, eff := range e.machine.Dispatch(next) {
			e.execute(eff)
		}
		if e.onChange != nil {
			e.onChange(e.Snapshot())
		}
	}
}

// Command dispatches a user command and returns the error it was rejected with, if any
func (e *Engine) Command(ev Event) error {
	e.rejected = nil
	e.Handle(ev)
	err := e.rejected
	e.rejected = nil
	return err
}

// HandleAdapterEvent translates a player notification into a machine event
func (e *Engine) HandleAdapterEvent(ev player.AdapterEvent) {
	switch ev.Type {
	case player.EventReady:
		log.Debug("Video player ready")
	case player.EventCued:
		e.Handle(AdapterCued{})
	case player.EventPlaying:
		e.Handle(AdapterPlaying{})
	case player.EventPaused:
		e.Handle(AdapterPaused{})
	case player.EventBuffering:
		e.Handle(AdapterBuffering{})
	case player.EventEnded:
		e.Handle(AdapterEnded{})
	case player.EventError:
		e.Handle(AdapterError{Err: ev.Error})
	}
}

// HandleAudioEvent translates an audio channel notification into a machine event
func (e *Engine) HandleAudioEvent(ev player.AudioEvent) {
	switch ev.Type {
	case player.AudioStarted:
		e.Handle(AudioStarted{Duration: ev.Duration, At: e.deps.Scheduler.Now()})
	case player.AudioEnded:
		e.Handle(AudioEnded{})
	case player.AudioFailed:
		e.Handle(AudioFailed{Err: ev.Error})
	}
}

// Shutdown stops every timer and gives back the audio route
func (e *Engine) Shutdown() {
	e.Handle(Close{})
	for kind := range e.timers {
		e.cancelTimer(kind)
	}
	e.stopPoller()
	e.releaseRoute()
}

func (e *Engine) feed(ev Event) {
	e.queue = append(e.queue, ev)
}

func (e *Engine) execute(eff Effect) {
	log.Trace("Executing playback effect", "effect", eff.effectName())

	switch eff := eff.(type) {
	case LoadMedia:
		e.notice = nil
		ctx, cancel := context.WithTimeout(context.Background(), adapterCallTimeout)
		defer cancel()
		if err := e.deps.Adapter.Load(ctx, eff.VideoID, eff.StartOffset); err != nil {
			e.feed(LoadFailed{Generation: eff.Generation, Err: err})
		}

	case SeekTo:
		err := e.deps.Adapter.SeekTo(eff.Position)
		e.feed(SeekDone{Generation: eff.Generation, Purpose: eff.Purpose, Err: err})

	case Play:
		if err := e.deps.Adapter.Play(); err != nil {
			log.Warn("Failed to start playback", "error", err)
		}

	case Pause:
		if err := e.deps.Adapter.Pause(); err != nil {
			log.Warn("Failed to pause playback", "error", err)
		}

	case ApplyVolume:
		if err := e.deps.Adapter.SetVolume(eff.Volume); err != nil {
			log.Warn("Failed to set volume", "volume", eff.Volume, "error", err)
		}

	case StartTimer:
		e.startTimer(eff)

	case CancelTimer:
		e.cancelTimer(eff.Kind)

	case StartPoller:
		e.startPoller(eff.Generation)

	case StopPoller:
		e.stopPoller()

	case SamplePosition:
		pos, err := e.deps.Adapter.CurrentTime()
		e.feed(PositionSampled{Generation: eff.Generation, Purpose: eff.Purpose, Position: pos, Err: err})

	case AcquireRoute:
		e.acquireRoute(eff.Token)

	case ReleaseRoute:
		e.releaseRoute()

	case PlayAudio:
		if e.deps.Audio == nil {
			e.feed(AudioFailed{Err: errNoAudioChannel})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), adapterCallTimeout)
		defer cancel()
		if err := e.deps.Audio.Play(ctx, eff.AssetRef); err != nil {
			e.feed(AudioFailed{Err: err})
		}

	case StopAudio:
		if e.deps.Audio != nil {
			if err := e.deps.Audio.Stop(); err != nil {
				log.Debug("Failed to stop audio channel", "error", err)
			}
		}

	case SavePlaylist:
		e.save(eff.Playlist)

	case Notify:
		e.notice = eff.Err

	case Reject:
		log.Debug("Command rejected", "error", eff.Err)
		if e.rejected == nil {
			e.rejected = eff.Err
		}
	}
}

func (e *Engine) startTimer(t StartTimer) {
	e.cancelTimer(t.Kind)
	log.Trace("Arming timer", "kind", t.Kind.String(), "after", t.After, "token", t.Token)
	e.timers[t.Kind] = e.deps.Scheduler.AfterFunc(t.After, func() {
		e.Handle(TimerFired{Kind: t.Kind, Token: t.Token})
	})
}

func (e *Engine) cancelTimer(kind TimerKind) {
	if cancel, ok := e.timers[kind]; ok {
		cancel()
		delete(e.timers, kind)
	}
}

// startPoller samples the player position every poll interval until stopped.  A tick that was already queued
// when the poller stopped is recognised by its sequence number and dropped.
func (e *Engine) startPoller(generation uint64) {
	e.stopPoller()
	seq := e.pollSeq

	var tick func()
	tick = func() {
		if seq != e.pollSeq {
			return
		}
		pos, err := e.deps.Adapter.CurrentTime()
		e.poll = e.deps.Scheduler.AfterFunc(e.opts.PollInterval, tick)
		e.Handle(PositionSampled{Generation: generation, Purpose: SampleClipEnd, Position: pos, Err: err})
	}
	e.poll = e.deps.Scheduler.AfterFunc(e.opts.PollInterval, tick)
}

func (e *Engine) stopPoller() {
	e.pollSeq++
	if e.poll != nil {
		e.poll()
		e.poll = nil
	}
}

func (e *Engine) acquireRoute(token uint64) {
	if e.deps.Route == nil {
		e.feed(RouteAcquired{Token: token, At: e.deps.Scheduler.Now()})
		return
	}
	release, err := e.deps.Route.Acquire(routeOwner)
	if err != nil {
		e.feed(AudioFailed{Err: err})
		return
	}
	e.release = release
	e.feed(RouteAcquired{Token: token, At: e.deps.Scheduler.Now()})
}

func (e *Engine) releaseRoute() {
	if e.release != nil {
		e.release()
		e.release = nil
	}
}

func (e *Engine) save(p *domain.Playlist) {
	if e.deps.Saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.deps.Saver.Save(ctx, p); err != nil {
		log.Error("Failed to save reordered playlist", "name", p.Name, "error", err)
		e.notice = err
		return
	}
	log.Info("Saved reordered playlist", "name", p.Name)
}
