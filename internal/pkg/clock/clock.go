package clock

import (
	"sync"
	"time"
)

// Clock is the single source of "now" for attendance and leave rules.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real returns a Clock backed by the wall clock.
func Real() Clock {
	return realClock{}
}

// Func adapts a plain function to Clock. A nil function falls back to time.Now.
type Func func() time.Time

func (f Func) Now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// Manual is a controllable Clock for tests and replays.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

// NewManual returns a manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{current: start}
}

// Now returns the current instant tracked by the clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	m.current = m.current.Add(d)
	updated := m.current
	m.mu.Unlock()
	return updated
}
