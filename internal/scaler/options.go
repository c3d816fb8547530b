package scaler

import (
	"fmt"
	"time"
)

// Options tunes a surface controller
type Options struct {
	MarginFactor     float64
	InitialDelay     time.Duration
	MaxAttempts      int
	RetryInterval    time.Duration
	MinContentWidth  float64
	MinContentHeight float64
	MinViewport      float64
	ResizeDebounce   time.Duration
	VisibilityDelay  time.Duration
	ElementStagger   time.Duration
	ContainerStagger time.Duration
	ChildStagger     time.Duration
	HintCooldown     time.Duration
}

// DefaultOptions mirrors the timings slides were authored against
func DefaultOptions() Options {
	return Options{
		MarginFactor:     0.95,
		InitialDelay:     50 * time.Millisecond,
		MaxAttempts:      5,
		RetryInterval:    150 * time.Millisecond,
		MinContentWidth:  10,
		MinContentHeight: 10,
		MinViewport:      10,
		ResizeDebounce:   50 * time.Millisecond,
		VisibilityDelay:  100 * time.Millisecond,
		ElementStagger:   20 * time.Millisecond,
		ContainerStagger: 100 * time.Millisecond,
		ChildStagger:     50 * time.Millisecond,
		HintCooldown:     5 * time.Second,
	}
}

// Validate rejects settings that would scale against degenerate input
// or retry forever
func (o Options) Validate() error {
	if o.MarginFactor <= 0 || o.MarginFactor >= 1 {
		return fmt.Errorf("margin factor must be in (0,1), got %v", o.MarginFactor)
	}
	if o.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", o.MaxAttempts)
	}
	if o.RetryInterval <= 0 {
		return fmt.Errorf("retry interval must be positive")
	}
	if o.MinContentWidth <= 0 || o.MinContentHeight <= 0 {
		return fmt.Errorf("minimum content size must be positive")
	}
	return nil
}
