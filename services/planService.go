// Package services holds the study plan and playlist operations exposed to the HTTP layer.
// Every daily-allocation recompute is an explicit call at the operation that changes its inputs.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studytrack/apperr"
	"studytrack/logger"
	"studytrack/models"
	"studytrack/repository"
	"studytrack/scheduler"
)

// CreatePlanInput carries an already-parsed create request.
type CreatePlanInput struct {
	SourceID  uint
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// PlanPatch holds the fields an update changes. Nil fields are left alone.
type PlanPatch struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	SourceID  *uint
	Status    *string
}

type PlanService struct {
	plans   *repository.PlanRepository
	sources *repository.SourceRepository
	clock   func() time.Time
	loc     *time.Location
	log     *logger.Logger
}

// NewPlanService wires the plan operations. clock decides what "today" is in loc.
func NewPlanService(plans *repository.PlanRepository, sources *repository.SourceRepository, clock func() time.Time, loc *time.Location, log *logger.Logger) *PlanService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PlanService{plans: plans, sources: sources, clock: clock, loc: loc, log: log}
}

func (s *PlanService) today() time.Time {
	return scheduler.Today(s.clock, s.loc)
}

// CreatePlan validates the window, loads the source and stores the plan with its initial allocation.
func (s *PlanService) CreatePlan(ctx context.Context, ownerID uint, in CreatePlanInput) (*PlanView, error) {
	today := s.today()
	name := strings.TrimSpace(in.Name)

	errs := map[string]string{}
	if msg := checkPlanName(name); msg != "" {
		errs["name"] = msg
	}
	if in.SourceID == 0 {
		errs["playlistSourceId"] = "Playlist source is required"
	}
	checkWindow(errs, in.StartDate, in.EndDate, today, true)
	if len(errs) > 0 {
		return nil, apperr.ValidationFields(errs)
	}

	source, err := s.loadSource(ctx, ownerID, in.SourceID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := totalUnitsOf(source)
	if err != nil {
		return nil, err
	}

	start, end := scheduler.DateOf(in.StartDate), scheduler.DateOf(in.EndDate)
	window := scheduler.Window{Start: start, End: end}

	plan := &models.StudyPlan{
		OwnerID:          ownerID,
		PlaylistSourceID: source.ID,
		Name:             name,
		StartDate:        datatypes.Date(start),
		EndDate:          datatypes.Date(end),
		DailyAllocation:  scheduler.ComputeInitialAllocation(window, totalUnits, today),
		Status:           models.PlanActive,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.log.Info("study plan created", "planId", plan.ID, "ownerId", ownerID, "dailyAllocation", plan.DailyAllocation)
	view := newPlanView(plan, totalUnits, today)
	return &view, nil
}

// UpdatePlan applies a patch. The allocation is recomputed when the window or the source changes.
func (s *PlanService) UpdatePlan(ctx context.Context, ownerID, planID uint, patch PlanPatch) (*PlanView, error) {
	plan, err := s.loadPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	errs := map[string]string{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if msg := checkPlanName(name); msg != "" {
			errs["name"] = msg
		}
		plan.Name = name
	}

	window := plan.Window()
	start, end := window.Start, window.End
	if patch.StartDate != nil {
		start = scheduler.DateOf(*patch.StartDate)
	}
	if patch.EndDate != nil {
		end = scheduler.DateOf(*patch.EndDate)
	}
	startChanged := !scheduler.SameDay(start, window.Start)
	datesChanged := startChanged || !scheduler.SameDay(end, window.End)
	if datesChanged {
		checkWindow(errs, start, end, today, startChanged)
	}

	sourceChanged := patch.SourceID != nil && *patch.SourceID != plan.PlaylistSourceID
	if sourceChanged && *patch.SourceID == 0 {
		errs["playlistSourceId"] = "Playlist source is required"
	}

	if patch.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*patch.Status))
		switch {
		case !models.IsValidPlanStatus(status):
			errs["status"] = "Status must be one of active, completed, cancelled"
		case !plan.CanTransitionTo(status):
			errs["status"] = "Cannot move a " + plan.Status + " plan to " + status
		default:
			patch.Status = &status
		}
	}

	if (datesChanged || sourceChanged) && plan.Status != models.PlanActive {
		errs["status"] = "Only active plans can be rescheduled"
	}
	if len(errs) > 0 {
		return nil, apperr.ValidationFields(errs)
	}

	sourceID := plan.PlaylistSourceID
	if sourceChanged {
		sourceID = *patch.SourceID
	}
	source, err := s.loadSource(ctx, ownerID, sourceID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := totalUnitsOf(source)
	if err != nil {
		return nil, err
	}

	plan.PlaylistSourceID = source.ID
	plan.StartDate = datatypes.Date(start)
	plan.EndDate = datatypes.Date(end)
	if datesChanged || sourceChanged {
		plan.DailyAllocation = scheduler.RecomputeAllocation(plan.Window(), totalUnits, plan.UnitsCompleted(), today)
	}
	if patch.Status != nil {
		plan.Status = *patch.Status
	}

	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}

	view := newPlanView(plan, totalUnits, today)
	return &view, nil
}

// MarkDayCompleted appends a completed day and recomputes the allocation.
// The plan moves to completed once progress reaches 100% and every unit is done.
func (s *PlanService) MarkDayCompleted(ctx context.Context, ownerID, planID uint, date time.Time, unitsCompleted int) (*PlanView, error) {
	if unitsCompleted < 0 {
		return nil, apperr.ValidationFields(map[string]string{"unitsCompleted": "Units completed cannot be negative"})
	}
	plan, err := s.loadPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	day := scheduler.DateOf(date)
	if err := checkMarkable(plan, day); err != nil {
		return nil, err
	}
	if plan.HasCompletedDay(day) {
		return nil, apperr.Conflict("Day " + scheduler.FormatDate(day) + " is already marked completed")
	}

	source, err := s.loadSource(ctx, ownerID, plan.PlaylistSourceID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := totalUnitsOf(source)
	if err != nil {
		return nil, err
	}

	today := s.today()
	entry := models.CompletedDay{Day: datatypes.Date(day), UnitsCompleted: unitsCompleted}
	unitsDone := plan.UnitsCompleted() + unitsCompleted
	plan.DailyAllocation = scheduler.RecomputeAllocation(plan.Window(), totalUnits, unitsDone, today)
	// the window has TotalDays+1 markable dates, so a full day count alone does not finish the plan
	if scheduler.ProgressPercentage(len(plan.CompletedDays)+1, plan.Window().TotalDays()) >= 100 && unitsDone >= totalUnits {
		plan.Status = models.PlanCompleted
	}

	if err := s.plans.AddCompletedDay(ctx, plan, &entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateDay) {
			return nil, apperr.Conflict("Day " + scheduler.FormatDate(day) + " is already marked completed")
		}
		return nil, err
	}
	plan.CompletedDays = append(plan.CompletedDays, entry)
	sortCompleted(plan.CompletedDays)

	s.log.Debug("day completed", "planId", plan.ID, "day", scheduler.FormatDate(day), "dailyAllocation", plan.DailyAllocation)
	view := newPlanView(plan, totalUnits, today)
	return &view, nil
}

// MarkDayMissed appends a missed day and redistributes the remaining units.
// The deadline does not move.
func (s *PlanService) MarkDayMissed(ctx context.Context, ownerID, planID uint, date time.Time, reason string) (*PlanView, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > models.MissedReasonMaxLength {
		return nil, apperr.ValidationFields(map[string]string{"reason": "Reason must be at most 200 characters"})
	}
	plan, err := s.loadPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	day := scheduler.DateOf(date)
	if err := checkMarkable(plan, day); err != nil {
		return nil, err
	}
	if plan.HasMissedDay(day) {
		return nil, apperr.Conflict("Day " + scheduler.FormatDate(day) + " is already marked missed")
	}

	source, err := s.loadSource(ctx, ownerID, plan.PlaylistSourceID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := totalUnitsOf(source)
	if err != nil {
		return nil, err
	}

	today := s.today()
	entry := models.MissedDay{Day: datatypes.Date(day), Reason: reason}
	plan.DailyAllocation = scheduler.RecomputeAllocation(plan.Window(), totalUnits, plan.UnitsCompleted(), today)

	if err := s.plans.AddMissedDay(ctx, plan, &entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateDay) {
			return nil, apperr.Conflict("Day " + scheduler.FormatDate(day) + " is already marked missed")
		}
		return nil, err
	}
	plan.MissedDays = append(plan.MissedDays, entry)
	sortMissed(plan.MissedDays)

	view := newPlanView(plan, totalUnits, today)
	return &view, nil
}

// Recalculate refreshes the stored allocation of an active plan against today's date.
func (s *PlanService) Recalculate(ctx context.Context, ownerID, planID uint) (*PlanView, error) {
	plan, err := s.loadPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	source, err := s.loadSource(ctx, ownerID, plan.PlaylistSourceID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := totalUnitsOf(source)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if plan.Status == models.PlanActive {
		allocation := scheduler.RecomputeAllocation(plan.Window(), totalUnits, plan.UnitsCompleted(), today)
		if allocation != plan.DailyAllocation {
			plan.DailyAllocation = allocation
			if err := s.plans.Save(ctx, plan); err != nil {
				return nil, err
			}
		}
	}

	view := newPlanView(plan, totalUnits, today)
	return &view, nil
}

// DeletePlan removes the plan and its ledgers. The source is untouched.
func (s *PlanService) DeletePlan(ctx context.Context, ownerID, planID uint) error {
	if err := s.plans.Delete(ctx, ownerID, planID); err != nil {
		return planError(err)
	}
	s.log.Info("study plan deleted", "planId", planID, "ownerId", ownerID)
	return nil
}

func (s *PlanService) GetPlan(ctx context.Context, ownerID, planID uint) (*PlanView, error) {
	plan, err := s.loadPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, plan)
}

// GetPlansForOwner lists the owner's plans, newest first, with derived fields.
func (s *PlanService) GetPlansForOwner(ctx context.Context, ownerID uint) ([]PlanView, error) {
	plans, err := s.plans.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, plans)
}

func (s *PlanService) loadPlan(ctx context.Context, ownerID, planID uint) (*models.StudyPlan, error) {
	plan, err := s.plans.FindForOwner(ctx, ownerID, planID)
	if err != nil {
		return nil, planError(err)
	}
	return plan, nil
}

func (s *PlanService) loadSource(ctx context.Context, ownerID, sourceID uint) (*models.PlaylistSource, error) {
	source, err := s.sources.FindForOwner(ctx, ownerID, sourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Playlist source not found")
		}
		return nil, apperr.Dependency("Could not load playlist source", err)
	}
	return source, nil
}

func planError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Study plan not found")
	}
	return err
}

func totalUnitsOf(source *models.PlaylistSource) (int, error) {
	variant, err := source.AsSource()
	if err != nil {
		return 0, apperr.Dependency("Could not read playlist source", err)
	}
	return models.GetTotalUnits(variant), nil
}

func checkPlanName(name string) string {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return "Name is required"
	}
	if n > models.PlanNameMaxLength {
		return "Name must be at most 100 characters"
	}
	return ""
}

// checkWindow enforces end > start and, when checkStart is set, start >= today.
func checkWindow(errs map[string]string, start, end, today time.Time, checkStart bool) {
	if start.IsZero() {
		errs["startDate"] = "Start date is required"
	}
	if end.IsZero() {
		errs["endDate"] = "End date is required"
	}
	if start.IsZero() || end.IsZero() {
		return
	}
	if checkStart && scheduler.DaysBetween(today, start) < 0 {
		errs["startDate"] = "Start date cannot be in the past"
	}
	if scheduler.DaysBetween(start, end) <= 0 {
		errs["endDate"] = "End date must be after start date"
	}
}

func checkMarkable(plan *models.StudyPlan, day time.Time) error {
	if plan.Status != models.PlanActive {
		return apperr.Validation("Only active plans can be updated")
	}
	if !plan.Window().Contains(day) {
		return apperr.ValidationFields(map[string]string{"date": "Date must fall within the plan window"})
	}
	return nil
}
