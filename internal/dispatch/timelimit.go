package dispatch

import "time"

// TimeLimiter bounds one dispatch invocation to a wall-clock budget.
// Purely cooperative: the orchestrator consults it between recipients
// and it never preempts a send in flight.
type TimeLimiter struct {
	max   time.Duration
	start time.Time
	now   func() time.Time
}

// NewTimeLimiter creates a limiter with the given budget. A zero or
// negative budget never stops.
func NewTimeLimiter(max time.Duration) *TimeLimiter {
	return &TimeLimiter{
		max: max,
		now: time.Now,
	}
}

// Start records the wall-clock baseline.
func (l *TimeLimiter) Start() {
	l.start = l.now()
}

// ShouldStop reports whether the budget has been exhausted.
func (l *TimeLimiter) ShouldStop() bool {
	if l.max <= 0 {
		return false
	}
	return l.now().Sub(l.start) >= l.max
}
