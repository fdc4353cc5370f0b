// Package clock provides an injectable time source so that schedule and
// timer logic can be driven by a fake clock in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
