package services

import (
	"context"
	"time"

	"studytrack/models"
	"studytrack/repository"
	"studytrack/scheduler"
	"studytrack/utils"
)

// ReminderService assembles the daily digest from active plans. It only reads.
type ReminderService struct {
	plans *repository.PlanRepository
	users *repository.UserRepository
	clock func() time.Time
	loc   *time.Location
}

// NewReminderService builds the digest source. loc is used for users without a timezone of their own.
func NewReminderService(plans *repository.PlanRepository, users *repository.UserRepository, clock func() time.Time, loc *time.Location) *ReminderService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{plans: plans, users: users, clock: clock, loc: loc}
}

// ReminderDigests groups running plans by owner. "Today" is taken in each owner's timezone.
// Plans that have not started yet are skipped, as are users who turned reminders off.
func (s *ReminderService) ReminderDigests(ctx context.Context) ([]utils.ReminderDigest, error) {
	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var owners []uint
	byOwner := map[uint][]*models.StudyPlan{}
	for i := range plans {
		p := &plans[i]
		if _, seen := byOwner[p.OwnerID]; !seen {
			owners = append(owners, p.OwnerID)
		}
		byOwner[p.OwnerID] = append(byOwner[p.OwnerID], p)
	}

	users, err := s.users.FindByIDs(ctx, owners)
	if err != nil {
		return nil, err
	}

	digests := make([]utils.ReminderDigest, 0, len(owners))
	for _, id := range owners {
		u, ok := users[id]
		if !ok || !u.Reminders {
			continue
		}
		today := scheduler.Today(s.clock, s.locationOf(&u))

		var lines []utils.ReminderLine
		for _, p := range byOwner[id] {
			w := p.Window()
			if scheduler.DaysBetween(w.Start, today) < 0 {
				continue
			}
			lines = append(lines, utils.ReminderLine{
				PlanName:        p.Name,
				DailyAllocation: p.DailyAllocation,
				RemainingDays:   w.RemainingDays(today),
				Progress:        p.ProgressPercentage(),
			})
		}
		if len(lines) == 0 {
			continue
		}
		digests = append(digests, utils.ReminderDigest{Email: u.Email, Name: u.Name, Lines: lines})
	}
	return digests, nil
}

func (s *ReminderService) locationOf(u *models.User) *time.Location {
	if u.Timezone == "" {
		return s.loc
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return s.loc
	}
	return loc
}
