package shiftmatrix

import "time"

// Clock is the monotonic time source and sleep primitive used for frame
// pacing.
type Clock interface {
	// Now returns monotonic time since an arbitrary fixed origin.
	Now() time.Duration
	// Sleep suspends the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// SystemClock reads the runtime monotonic clock.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a clock whose origin is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (c *SystemClock) Now() time.Duration { return time.Since(c.epoch) }

func (c *SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
