package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studytrack/scheduler"
)

// Plan status values
const (
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanCancelled = "cancelled"
)

const (
	PlanNameMaxLength     = 100
	MissedReasonMaxLength = 200
)

// StudyPlan schedules one playlist source over a calendar window.
// DailyAllocation is derived and rewritten whenever the window, the source or the day ledgers change.
type StudyPlan struct {
	gorm.Model
	OwnerID          uint           `gorm:"index;not null" json:"ownerId"`
	PlaylistSourceID uint           `gorm:"index;not null" json:"playlistSourceId"`
	Name             string         `gorm:"type:varchar(100);not null" json:"name"`
	StartDate        datatypes.Date `gorm:"not null" json:"startDate"`
	EndDate          datatypes.Date `gorm:"not null" json:"endDate"`
	DailyAllocation  int            `gorm:"default:0" json:"dailyAllocation"`
	Status           string         `gorm:"type:varchar(12);default:'active'" json:"status"` // active, completed, cancelled

	CompletedDays []CompletedDay `gorm:"foreignKey:PlanID" json:"completedDays"`
	MissedDays    []MissedDay    `gorm:"foreignKey:PlanID" json:"missedDays"`
}

func (StudyPlan) TableName() string {
	return "study_plans"
}

// CompletedDay records the units finished on one calendar date. One row per (plan, day).
type CompletedDay struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PlanID         uint           `gorm:"not null;uniqueIndex:idx_completed_plan_day" json:"planId"`
	Day            datatypes.Date `gorm:"not null;uniqueIndex:idx_completed_plan_day" json:"day"`
	UnitsCompleted int            `gorm:"default:0" json:"unitsCompleted"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (CompletedDay) TableName() string {
	return "plan_completed_days"
}

// MissedDay records a calendar date the user skipped. One row per (plan, day).
type MissedDay struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PlanID    uint           `gorm:"not null;uniqueIndex:idx_missed_plan_day" json:"planId"`
	Day       datatypes.Date `gorm:"not null;uniqueIndex:idx_missed_plan_day" json:"day"`
	Reason    string         `gorm:"type:varchar(200)" json:"reason"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (MissedDay) TableName() string {
	return "plan_missed_days"
}

func (p *StudyPlan) Window() scheduler.Window {
	return scheduler.Window{
		Start: time.Time(p.StartDate),
		End:   time.Time(p.EndDate),
	}
}

// UnitsCompleted sums the units of every completed day.
func (p *StudyPlan) UnitsCompleted() int {
	total := 0
	for _, d := range p.CompletedDays {
		total += d.UnitsCompleted
	}
	return total
}

func (p *StudyPlan) HasCompletedDay(day time.Time) bool {
	for _, d := range p.CompletedDays {
		if scheduler.SameDay(time.Time(d.Day), day) {
			return true
		}
	}
	return false
}

func (p *StudyPlan) HasMissedDay(day time.Time) bool {
	for _, d := range p.MissedDays {
		if scheduler.SameDay(time.Time(d.Day), day) {
			return true
		}
	}
	return false
}

// ProgressPercentage is derived from the number of completed days over the window length.
func (p *StudyPlan) ProgressPercentage() int {
	return scheduler.ProgressPercentage(len(p.CompletedDays), p.Window().TotalDays())
}

// CanTransitionTo reports whether the status machine allows moving to next.
// completed and cancelled are terminal.
func (p *StudyPlan) CanTransitionTo(next string) bool {
	if p.Status == next {
		return true
	}
	if p.Status != PlanActive {
		return false
	}
	return next == PlanCompleted || next == PlanCancelled
}

// IsValidPlanStatus checks a raw status value.
func IsValidPlanStatus(status string) bool {
	switch status {
	case PlanActive, PlanCompleted, PlanCancelled:
		return true
	}
	return false
}
