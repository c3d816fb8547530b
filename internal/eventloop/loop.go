// Package eventloop provides the single-threaded cooperative scheduler the
// host and every isolated surface run on. Callbacks never run concurrently
// with other callbacks of the same loop, so state owned by a loop needs no
// locking as long as it is only touched from inside callbacks.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending AfterFunc callback
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or was already stopped.
	Stop() bool
}

// Loop schedules callbacks onto a single execution context
type Loop interface {
	// Post queues fn to run on the loop
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed
	AfterFunc(d time.Duration, fn func()) Timer
	// NextFrame runs fn at the next paint opportunity. Frames requested
	// while a frame is running are deferred to the following frame.
	NextFrame(fn func())
}

// DefaultFrameInterval approximates a 60Hz display
const DefaultFrameInterval = 16 * time.Millisecond

// Runner is the real Loop, driven by Run
type Runner struct {
	tasks         chan func()
	frameInterval time.Duration

	mu     sync.Mutex
	frames []func()

	done     chan struct{}
	doneOnce sync.Once
}

// NewRunner creates a loop that paints every frameInterval
func NewRunner(frameInterval time.Duration) *Runner {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Runner{
		tasks:         make(chan func(), 256),
		frameInterval: frameInterval,
		done:          make(chan struct{}),
	}
}

// Run drains tasks and frames until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.frameInterval)
	defer ticker.Stop()
	defer r.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.tasks:
			fn()
		case <-ticker.C:
			r.paint()
		}
	}
}

func (r *Runner) stop() {
	r.doneOnce.Do(func() { close(r.done) })
}

// Done is closed once Run has returned
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) paint() {
	r.mu.Lock()
	batch := r.frames
	r.frames = nil
	r.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

// Post queues fn. Tasks posted after the loop stopped are dropped.
func (r *Runner) Post(fn func()) {
	select {
	case <-r.done:
	case r.tasks <- fn:
	}
}

// NextFrame queues fn for the next tick
func (r *Runner) NextFrame(fn func()) {
	r.mu.Lock()
	r.frames = append(r.frames, fn)
	r.mu.Unlock()
}

// AfterFunc posts fn once d elapses unless stopped first
func (r *Runner) AfterFunc(d time.Duration, fn func()) Timer {
	t := &runnerTimer{}
	t.timer = time.AfterFunc(d, func() {
		r.Post(func() {
			if t.fire() {
				fn()
			}
		})
	})
	return t
}

type runnerTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

// fire runs on the loop; a Stop that won the race suppresses the callback
func (t *runnerTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.fired = true
	return true
}

func (t *runnerTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
