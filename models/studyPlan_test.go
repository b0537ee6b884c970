package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestGetTotalUnits(t *testing.T) {
	assert.Equal(t, 42, GetTotalUnits(Manual{TotalUnits: 42}))
	assert.Equal(t, 17, GetTotalUnits(Fetched{AvailableUnits: 17, PrivateUnits: 3}))
	assert.Equal(t, 0, GetTotalUnits(nil))
}

func TestAsSource(t *testing.T) {
	manual := &PlaylistSource{Kind: SourceManual, ManualTotal: 12, AvailableUnits: 99}
	fetched := &PlaylistSource{Kind: SourceFetched, ManualTotal: 99, AvailableUnits: 20, PrivateUnits: 2}

	s, err := manual.AsSource()
	require.NoError(t, err)
	assert.Equal(t, Manual{TotalUnits: 12}, s)
	assert.Equal(t, 12, manual.TotalUnits())

	s, err = fetched.AsSource()
	require.NoError(t, err)
	assert.Equal(t, Fetched{AvailableUnits: 20, PrivateUnits: 2}, s)
	assert.Equal(t, 20, fetched.TotalUnits())

	_, err = (&PlaylistSource{Kind: "RSS"}).AsSource()
	assert.Error(t, err)
	assert.Equal(t, 0, (&PlaylistSource{Kind: "RSS"}).TotalUnits())
}

func TestPlanDayLedger(t *testing.T) {
	plan := StudyPlan{
		StartDate: date(2026, 10, 19),
		EndDate:   date(2026, 10, 23),
		CompletedDays: []CompletedDay{
			{Day: date(2026, 10, 19), UnitsCompleted: 5},
			{Day: date(2026, 10, 20), UnitsCompleted: 3},
		},
		MissedDays: []MissedDay{{Day: date(2026, 10, 21), Reason: "travel"}},
	}

	assert.Equal(t, 8, plan.UnitsCompleted())
	assert.True(t, plan.HasCompletedDay(time.Date(2026, 10, 20, 18, 30, 0, 0, time.UTC)))
	assert.False(t, plan.HasCompletedDay(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)))
	assert.True(t, plan.HasMissedDay(time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, plan.Window().TotalDays())
	assert.Equal(t, 50, plan.ProgressPercentage())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{PlanActive, PlanCompleted, true},
		{PlanActive, PlanCancelled, true},
		{PlanActive, PlanActive, true},
		{PlanCompleted, PlanActive, false},
		{PlanCompleted, PlanCancelled, false},
		{PlanCancelled, PlanActive, false},
		{PlanCancelled, PlanCompleted, false},
		{PlanCancelled, PlanCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			plan := StudyPlan{Status: tt.from}
			assert.Equal(t, tt.want, plan.CanTransitionTo(tt.to))
		})
	}
}

func TestIsValidPlanStatus(t *testing.T) {
	assert.True(t, IsValidPlanStatus(PlanActive))
	assert.False(t, IsValidPlanStatus("paused"))
}
