package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return base.AddDate(0, 0, n)
}

func TestComputeInitialAllocation(t *testing.T) {
	tests := []struct {
		name       string
		window     Window
		totalUnits int
		today      time.Time
		want       int
	}{
		{"even split", Window{day(0), day(4)}, 20, day(0), 5},
		{"rounds up", Window{day(0), day(3)}, 10, day(0), 4},
		{"single unit over many days", Window{day(0), day(30)}, 1, day(0), 1},
		{"empty playlist", Window{day(0), day(5)}, 0, day(0), 0},
		{"ends today", Window{day(-3), day(0)}, 7, day(0), 7},
		{"already ended", Window{day(-10), day(-2)}, 7, day(0), 7},
		{"time of day ignored", Window{day(0), day(4).Add(23 * time.Hour)}, 20, day(0).Add(22 * time.Hour), 5},
		{"negative total treated as empty", Window{day(0), day(4)}, -3, day(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeInitialAllocation(tt.window, tt.totalUnits, tt.today))
		})
	}
}

func TestAllocationCoversRemainingUnits(t *testing.T) {
	for total := 0; total <= 120; total++ {
		for days := 1; days <= 40; days++ {
			w := Window{Start: day(0), End: day(days)}
			got := ComputeInitialAllocation(w, total, day(0))

			assert.Equal(t, (total+days-1)/days, got, "total=%d days=%d", total, days)
			assert.GreaterOrEqual(t, got*days, total, "total=%d days=%d", total, days)
			if total >= 1 {
				assert.GreaterOrEqual(t, got, 1)
			}
		}
	}
}

func TestOverdueAllocationIsWholeLoad(t *testing.T) {
	w := Window{Start: day(-8), End: day(-1)}
	for total := 0; total <= 50; total++ {
		assert.Equal(t, total, ComputeInitialAllocation(w, total, day(0)))
		assert.Equal(t, total/2, RecomputeAllocation(w, total, total-total/2, day(0)))
	}
}

func TestRecomputeAllocation(t *testing.T) {
	w := Window{Start: day(0), End: day(4)}

	tests := []struct {
		name      string
		unitsDone int
		today     time.Time
		want      int
	}{
		{"nothing done", 0, day(0), 5},
		{"day one completed", 5, day(1), 5},
		{"day two missed", 5, day(2), 8},
		{"ahead of schedule", 18, day(1), 1},
		{"all done", 20, day(2), 0},
		{"over-completed floors at zero", 25, day(2), 0},
		{"overdue keeps the rest", 12, day(6), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecomputeAllocation(w, 20, tt.unitsDone, tt.today))
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	w := Window{Start: day(0), End: day(9)}
	first := RecomputeAllocation(w, 37, 11, day(3))
	second := RecomputeAllocation(w, 37, 11, day(3))
	assert.Equal(t, first, second)
}

func TestWindowDays(t *testing.T) {
	w := Window{Start: day(0), End: day(4)}

	assert.Equal(t, 4, w.TotalDays())
	assert.Equal(t, 4, w.RemainingDays(day(0)))
	assert.Equal(t, 1, w.RemainingDays(day(3)))
	assert.Equal(t, 0, w.RemainingDays(day(4)))
	assert.Equal(t, 0, w.RemainingDays(day(9)))

	assert.Equal(t, 1, Window{Start: day(2), End: day(2)}.TotalDays())
	assert.Equal(t, 1, Window{Start: day(2), End: day(1)}.TotalDays())
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: day(0), End: day(4)}

	assert.True(t, w.Contains(day(0)))
	assert.True(t, w.Contains(day(4).Add(20*time.Hour)))
	assert.False(t, w.Contains(day(-1)))
	assert.False(t, w.Contains(day(5)))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0, ProgressPercentage(0, 4))
	assert.Equal(t, 25, ProgressPercentage(1, 4))
	assert.Equal(t, 33, ProgressPercentage(1, 3))
	assert.Equal(t, 67, ProgressPercentage(2, 3))
	assert.Equal(t, 100, ProgressPercentage(4, 4))
	assert.Equal(t, 100, ProgressPercentage(6, 4))
	assert.Equal(t, 100, ProgressPercentage(1, 0))
}

func TestProgressIsMonotonic(t *testing.T) {
	for total := 1; total <= 60; total++ {
		prev := -1
		for done := 0; done <= total+2; done++ {
			pct := ProgressPercentage(done, total)
			assert.GreaterOrEqual(t, pct, prev, "total=%d done=%d", total, done)
			prev = pct
		}
	}
}
