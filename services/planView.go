package services

import (
	"context"
	"sort"
	"time"

	"studytrack/models"
	"studytrack/scheduler"
)

// CompletedDayView is one entry of a plan's completed ledger.
type CompletedDayView struct {
	Date           string `json:"date"`
	UnitsCompleted int    `json:"unitsCompleted"`
}

// MissedDayView is one entry of a plan's missed ledger.
type MissedDayView struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// PlanView is a study plan with its derived fields attached.
type PlanView struct {
	ID               uint               `json:"id"`
	OwnerID          uint               `json:"ownerId"`
	PlaylistSourceID uint               `json:"playlistSourceId"`
	Name             string             `json:"name"`
	StartDate        string             `json:"startDate"`
	EndDate          string             `json:"endDate"`
	DailyAllocation  int                `json:"dailyAllocation"`
	Status           string             `json:"status"`
	CompletedDays    []CompletedDayView `json:"completedDays"`
	MissedDays       []MissedDayView    `json:"missedDays"`

	TotalDays          int `json:"totalDays"`
	RemainingDays      int `json:"remainingDays"`
	ProgressPercentage int `json:"progressPercentage"`
	TotalUnits         int `json:"totalUnits"`
	UnitsCompleted     int `json:"unitsCompleted"`
	UnitsRemaining     int `json:"unitsRemaining"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPlanView(plan *models.StudyPlan, totalUnits int, today time.Time) PlanView {
	w := plan.Window()
	done := plan.UnitsCompleted()
	remaining := totalUnits - done
	if remaining < 0 {
		remaining = 0
	}

	view := PlanView{
		ID:                 plan.ID,
		OwnerID:            plan.OwnerID,
		PlaylistSourceID:   plan.PlaylistSourceID,
		Name:               plan.Name,
		StartDate:          scheduler.FormatDate(w.Start),
		EndDate:            scheduler.FormatDate(w.End),
		DailyAllocation:    plan.DailyAllocation,
		Status:             plan.Status,
		CompletedDays:      make([]CompletedDayView, 0, len(plan.CompletedDays)),
		MissedDays:         make([]MissedDayView, 0, len(plan.MissedDays)),
		TotalDays:          w.TotalDays(),
		RemainingDays:      w.RemainingDays(today),
		ProgressPercentage: plan.ProgressPercentage(),
		TotalUnits:         totalUnits,
		UnitsCompleted:     done,
		UnitsRemaining:     remaining,
		CreatedAt:          plan.CreatedAt,
		UpdatedAt:          plan.UpdatedAt,
	}
	for _, d := range plan.CompletedDays {
		view.CompletedDays = append(view.CompletedDays, CompletedDayView{
			Date:           scheduler.FormatDate(time.Time(d.Day)),
			UnitsCompleted: d.UnitsCompleted,
		})
	}
	for _, d := range plan.MissedDays {
		view.MissedDays = append(view.MissedDays, MissedDayView{
			Date:   scheduler.FormatDate(time.Time(d.Day)),
			Reason: d.Reason,
		})
	}
	return view
}

// views attaches derived fields to each plan. A plan whose source has vanished reports 0 total units.
func (s *PlanService) views(ctx context.Context, plans []models.StudyPlan) ([]PlanView, error) {
	ids := make([]uint, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.PlaylistSourceID)
	}
	sources, err := s.sources.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	today := s.today()
	out := make([]PlanView, 0, len(plans))
	for i := range plans {
		total := 0
		if src, ok := sources[plans[i].PlaylistSourceID]; ok {
			total = src.TotalUnits()
		}
		out = append(out, newPlanView(&plans[i], total, today))
	}
	return out, nil
}

func (s *PlanService) view(ctx context.Context, plan *models.StudyPlan) (*PlanView, error) {
	views, err := s.views(ctx, []models.StudyPlan{*plan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func sortCompleted(days []models.CompletedDay) {
	sort.SliceStable(days, func(i, j int) bool {
		return time.Time(days[i].Day).Before(time.Time(days[j].Day))
	})
}

func sortMissed(days []models.MissedDay) {
	sort.SliceStable(days, func(i, j int) bool {
		return time.Time(days[i].Day).Before(time.Time(days[j].Day))
	})
}
