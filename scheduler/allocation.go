// Package scheduler spreads a fixed budget of playlist units across the calendar days
// left in a study plan. Every function is a pure function of its arguments; "today" is
// always passed in.
package scheduler

import (
	"math"
	"time"
)

// Window is the [Start, End] calendar range a plan is scheduled over.
type Window struct {
	Start time.Time
	End   time.Time
}

// TotalDays is the length of the window in days, never less than 1.
func (w Window) TotalDays() int {
	days := DaysBetween(w.Start, w.End)
	if days < 1 {
		return 1
	}
	return days
}

// RemainingDays counts the days left until End, floored at 0.
func (w Window) RemainingDays(today time.Time) int {
	days := DaysBetween(today, w.End)
	if days < 0 {
		return 0
	}
	return days
}

// Contains reports whether day lies inside the window, both ends included.
func (w Window) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(w.Start)) && !d.After(DateOf(w.End))
}

// ComputeInitialAllocation returns the units due per day for a fresh plan.
// When the window has already run out the whole load is due now.
func ComputeInitialAllocation(w Window, totalUnits int, today time.Time) int {
	return allocate(nonNegative(totalUnits), w.RemainingDays(today))
}

// RecomputeAllocation returns the units due per day once unitsDone have been completed.
func RecomputeAllocation(w Window, totalUnits, unitsDone int, today time.Time) int {
	unitsRemaining := nonNegative(totalUnits - nonNegative(unitsDone))
	return allocate(unitsRemaining, w.RemainingDays(today))
}

// ProgressPercentage is the share of the window's days marked completed, capped at 100.
func ProgressPercentage(completedDays, totalDays int) int {
	if totalDays < 1 {
		totalDays = 1
	}
	pct := int(math.Round(100 * float64(nonNegative(completedDays)) / float64(totalDays)))
	if pct > 100 {
		return 100
	}
	return pct
}

func allocate(units, daysRemaining int) int {
	if daysRemaining <= 0 {
		return units
	}
	return ceilDiv(units, daysRemaining)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
