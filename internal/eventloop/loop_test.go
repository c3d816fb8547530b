package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_Timers(t *testing.T) {
	t.Run("fires timers in deadline order", func(t *testing.T) {
		m := NewManual()
		var order []string
		m.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
		m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
		m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

		m.Advance(25 * time.Millisecond)
		assert.Equal(t, []string{"a", "b"}, order)

		m.Advance(5 * time.Millisecond)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("stopped timer never fires", func(t *testing.T) {
		m := NewManual()
		fired := false
		timer := m.AfterFunc(10*time.Millisecond, func() { fired = true })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		m.Advance(time.Second)
		assert.False(t, fired)
	})

	t.Run("timers armed by callbacks fire within the same advance", func(t *testing.T) {
		m := NewManual()
		count := 0
		m.AfterFunc(10*time.Millisecond, func() {
			count++
			m.AfterFunc(10*time.Millisecond, func() { count++ })
		})

		m.Advance(20 * time.Millisecond)
		assert.Equal(t, 2, count)
		assert.Equal(t, 0, m.PendingTimers())
	})
}

func TestManual_Frames(t *testing.T) {
	t.Run("nested frame requests wait for the following frame", func(t *testing.T) {
		m := NewManual()
		var order []int
		m.NextFrame(func() {
			order = append(order, 1)
			m.NextFrame(func() { order = append(order, 2) })
		})

		require.True(t, m.Frame())
		assert.Equal(t, []int{1}, order)
		assert.Equal(t, 1, m.PendingFrames())

		require.True(t, m.Frame())
		assert.Equal(t, []int{1, 2}, order)
		assert.False(t, m.Frame())
	})

	t.Run("posted tasks run before the frame batch", func(t *testing.T) {
		m := NewManual()
		var order []string
		m.NextFrame(func() { order = append(order, "frame") })
		m.Post(func() { order = append(order, "task") })

		m.Frame()
		assert.Equal(t, []string{"task", "frame"}, order)
	})
}

func TestRunner(t *testing.T) {
	t.Run("runs posted tasks and timers on the loop", func(t *testing.T) {
		r := NewRunner(time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go r.Run(ctx)

		var hits atomic.Int32
		r.Post(func() { hits.Add(1) })
		r.AfterFunc(5*time.Millisecond, func() { hits.Add(1) })
		r.NextFrame(func() { hits.Add(1) })

		assert.Eventually(t, func() bool { return hits.Load() == 3 }, time.Second, time.Millisecond)
	})

	t.Run("stop suppresses a pending timer", func(t *testing.T) {
		r := NewRunner(time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go r.Run(ctx)

		var fired atomic.Bool
		timer := r.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
		assert.True(t, timer.Stop())

		time.Sleep(40 * time.Millisecond)
		assert.False(t, fired.Load())
	})

	t.Run("post after shutdown does not block", func(t *testing.T) {
		r := NewRunner(time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		go r.Run(ctx)
		cancel()
		<-r.Done()

		for i := 0; i < 1000; i++ {
			r.Post(func() {})
		}
	})
}
