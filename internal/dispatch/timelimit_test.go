package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeLimiterStopsAfterBudget(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewTimeLimiter(25 * time.Second)
	l.now = func() time.Time { return now }

	l.Start()
	assert.False(t, l.ShouldStop())

	now = now.Add(24 * time.Second)
	assert.False(t, l.ShouldStop())

	now = now.Add(time.Second)
	assert.True(t, l.ShouldStop(), "stops once the budget is reached")
}

func TestTimeLimiterZeroBudgetNeverStops(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewTimeLimiter(0)
	l.now = func() time.Time { return now }

	l.Start()
	now = now.Add(24 * time.Hour)
	assert.False(t, l.ShouldStop())
}
