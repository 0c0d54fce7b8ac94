// internal/session/clock.go
// Package session records what happened and when during one participant
// session: an append-only event log, finalized trial results, and the
// end-of-session summary, all mirrored to durable storage as they occur.
package session

import "time"

// Clock yields monotonically non-decreasing seconds since its start. All
// session timestamps are relative to one Clock.
type Clock struct {
	start time.Time
}

// NewClock starts a clock at the current instant.
func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

// Seconds returns the elapsed session time. time.Since reads the monotonic
// component, so wall-clock adjustments never move it backwards.
func (c *Clock) Seconds() float64 {
	return time.Since(c.start).Seconds()
}

// Reset restarts the clock at zero.
func (c *Clock) Reset() {
	c.start = time.Now()
}
