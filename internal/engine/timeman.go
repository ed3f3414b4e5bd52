package engine

import (
	"time"
)

// TimeManager handles time allocation for searches.
type TimeManager struct {
	optimumTime time.Duration // Target time for this move, 0 = none
	maximumTime time.Duration // Hard deadline, 0 = none
	startTime   time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new search.
func (tm *TimeManager) Init(limits SearchLimits) {
	tm.startTime = time.Now()
	tm.optimumTime = 0
	tm.maximumTime = 0

	if limits.Infinite || limits.MoveTime <= 0 {
		return
	}

	// No new iteration starts after half the budget; the budget is the hard stop.
	tm.maximumTime = limits.MoveTime
	tm.optimumTime = limits.MoveTime / 2
	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Deadline returns the hard deadline, or the zero time if there is none.
func (tm *TimeManager) Deadline() time.Time {
	if tm.maximumTime == 0 {
		return time.Time{}
	}
	return tm.startTime.Add(tm.maximumTime)
}

// ShouldStop returns true once the hard deadline has passed.
func (tm *TimeManager) ShouldStop() bool {
	return tm.maximumTime > 0 && tm.Elapsed() >= tm.maximumTime
}

// PastOptimum returns true if no new iteration should be started.
func (tm *TimeManager) PastOptimum() bool {
	return tm.optimumTime > 0 && tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability shortens the optimum when the best move has not
// changed for several depths.
// stability: number of consecutive depths with same best move
func (tm *TimeManager) AdjustForStability(stability int) {
	if stability >= 4 {
		tm.optimumTime = tm.optimumTime * 60 / 100
	} else if stability >= 2 {
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}
