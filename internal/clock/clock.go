// Package clock supplies the injectable monotonic "now"/sleep this repo
// uses everywhere a real clock would otherwise make tests timing-sensitive,
// grounded on the same kind of seam the teacher repo's periodic cleanup
// tick is built around, generalised into an interface.
package clock

import "time"

// Clock supplies the current time and a sleep.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is the production Clock, backed by the time package.
type Real struct{}

func (Real) Now() time.Time        { return time.Now() }
func (Real) Sleep(d time.Duration) { time.Sleep(d) }
