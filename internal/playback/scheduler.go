package playback

import "time"

// Cancel stops a scheduled callback.  Calling it after the callback ran is harmless.
type Cancel func()

// Scheduler runs callbacks after a delay.  Callbacks must be delivered on the engine's event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
	Now() time.Time
}

// loopScheduler delivers timer callbacks through a runner's event queue
type loopScheduler struct {
	post func(fn func()) bool
}

func (l loopScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, func() {
		l.post(fn)
	})
	return func() { t.Stop() }
}

func (loopScheduler) Now() time.Time {
	return time.Now()
}
