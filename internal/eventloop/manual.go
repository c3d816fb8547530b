package eventloop

import (
	"sort"
	"time"
)

// Manual is a deterministic Loop driven by the caller with virtual time.
// Nothing runs until Drain, Frame, Advance or Settle is called.
type Manual struct {
	now    time.Time
	seq    uint64
	tasks  []func()
	frames []func()
	timers []*manualTimer
}

// NewManual creates a manual loop whose clock starts at the Unix epoch
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0)}
}

type manualTimer struct {
	loop    *Manual
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Now returns the virtual clock
func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Post(fn func()) {
	m.tasks = append(m.tasks, fn)
}

func (m *Manual) NextFrame(fn func()) {
	m.frames = append(m.frames, fn)
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{loop: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Drain runs posted tasks, including ones posted while draining
func (m *Manual) Drain() {
	for len(m.tasks) > 0 {
		fn := m.tasks[0]
		m.tasks = m.tasks[1:]
		fn()
	}
}

// Frame runs the callbacks queued for the next frame, then drains tasks.
// It reports whether any frame callback ran.
func (m *Manual) Frame() bool {
	m.Drain()
	batch := m.frames
	m.frames = nil
	for _, fn := range batch {
		fn()
	}
	m.Drain()
	return len(batch) > 0
}

// PendingFrames reports how many callbacks wait for the next frame
func (m *Manual) PendingFrames() int {
	return len(m.frames)
}

// PendingTimers reports how many timers are armed
func (m *Manual) PendingTimers() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in deadline
// order. Queued frames are flushed before each timer so paint-deferred work
// keeps pace with the clock.
func (m *Manual) Advance(d time.Duration) {
	deadline := m.now.Add(d)
	for {
		m.flushFrames()
		t := m.nextDue(deadline)
		if t == nil {
			break
		}
		if t.at.After(m.now) {
			m.now = t.at
		}
		t.fired = true
		t.fn()
	}
	m.now = deadline
}

// Settle flushes frames until none are queued
func (m *Manual) Settle() {
	m.flushFrames()
}

func (m *Manual) flushFrames() {
	for i := 0; i < 64 && (len(m.frames) > 0 || len(m.tasks) > 0); i++ {
		m.Frame()
	}
}

func (m *Manual) nextDue(deadline time.Time) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if len(m.timers) == 0 || m.timers[0].at.After(deadline) {
		return nil
	}
	return m.timers[0]
}
