package sketch

import (
	"sync"
	"time"
)

// Clock supplies sketch-time timestamps in milliseconds.
//
// Successive calls never go backwards.
type Clock interface {
	NowMs() uint32
}

// SessionClock measures milliseconds since it was created.
type SessionClock struct {
	mu    sync.Mutex
	start time.Time
	last  uint32
	now   func() time.Time
}

// NewSessionClock starts a clock at zero.
func NewSessionClock() *SessionClock {
	return &SessionClock{start: time.Now(), now: time.Now}
}

// NowMs returns the elapsed session time. A wall clock step backwards
// repeats the previous value.
func (c *SessionClock) NowMs() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.now().Sub(c.start)
	ms := uint32(0)
	if d > 0 {
		ms = uint32(d / time.Millisecond)
	}
	if ms < c.last {
		ms = c.last
	}
	c.last = ms
	return ms
}

// ManualClock is a Clock advanced explicitly. It is used for playback of
// recorded input and in tests.
type ManualClock struct {
	mu sync.Mutex
	ms uint32
}

// NowMs returns the current time.
func (c *ManualClock) NowMs() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ms += uint32(d / time.Millisecond)
	c.mu.Unlock()
}

// Set moves the clock to ms unless that would move it backwards.
func (c *ManualClock) Set(ms uint32) {
	c.mu.Lock()
	if ms > c.ms {
		c.ms = ms
	}
	c.mu.Unlock()
}
