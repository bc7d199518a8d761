package view

import "time"

// Clock schedules deferred callbacks for effect expiry. The production
// implementation delegates to time.AfterFunc; tests substitute a manual
// clock so expiry can be driven deterministically without sleeping.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// CancelFunc stops a pending callback. Calling it after the callback fired,
// or calling it twice, is a no-op.
type CancelFunc func()

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// NewClock returns the wall-clock implementation.
func NewClock() Clock {
	return realClock{}
}
