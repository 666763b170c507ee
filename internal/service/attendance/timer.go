package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// DefaultTimerInterval is how often a running LiveTimer refreshes.
const DefaultTimerInterval = time.Minute

// TimerReading is one display value of the running work time.
type TimerReading struct {
	At      time.Time
	Elapsed time.Duration
	Display string
}

// LiveTimer estimates working time while checked in. Readings are for
// display only; the authoritative working hours come from the server at
// check-out.
type LiveTimer struct {
	clock    clock.Clock
	interval time.Duration
}

func NewLiveTimer(clk clock.Clock, interval time.Duration) *LiveTimer {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultTimerInterval
	}
	return &LiveTimer{clock: clk, interval: interval}
}

// Estimate samples the clock once.
func (l *LiveTimer) Estimate(checkIn time.Time) TimerReading {
	now := l.clock.Now()
	elapsed := attendance.Elapsed(checkIn, now)
	return TimerReading{
		At:      now,
		Elapsed: elapsed,
		Display: attendance.FormatDuration(elapsed),
	}
}

// Run emits a reading immediately and then on every interval until ctx is
// done. Each reading is recomputed from checkIn, so a missed tick never
// accumulates drift.
func (l *LiveTimer) Run(ctx context.Context, checkIn time.Time, emit func(TimerReading)) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	emit(l.Estimate(checkIn))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			emit(l.Estimate(checkIn))
		}
	}
}
