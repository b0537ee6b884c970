package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studytrack/models"
)

// ErrDuplicateDay is returned when a plan already has an entry for that calendar date.
var ErrDuplicateDay = errors.New("day already recorded for plan")

// planColumns are the scalar columns a plan update may touch.
var planColumns = []string{"Name", "PlaylistSourceID", "StartDate", "EndDate", "DailyAllocation", "Status"}

// PlanRepository persists study plans and their day ledgers.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(plan).Error; err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// FindForOwner loads a plan with both day ledgers ordered by date.
func (r *PlanRepository) FindForOwner(ctx context.Context, ownerID, planID uint) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	if err := withLedgers(r.db.WithContext(ctx)).
		Where("id = ? AND owner_id = ?", planID, ownerID).
		First(&plan).Error; err != nil {
		return nil, fmt.Errorf("find plan %d: %w", planID, err)
	}
	return &plan, nil
}

func (r *PlanRepository) ListForOwner(ctx context.Context, ownerID uint) ([]models.StudyPlan, error) {
	var plans []models.StudyPlan
	if err := withLedgers(r.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// ListActive returns every active plan across owners.
func (r *PlanRepository) ListActive(ctx context.Context) ([]models.StudyPlan, error) {
	var plans []models.StudyPlan
	if err := withLedgers(r.db.WithContext(ctx)).
		Where("status = ?", models.PlanActive).
		Order("owner_id asc, id asc").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) CountForSource(ctx context.Context, sourceID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudyPlan{}).
		Where("playlist_source_id = ?", sourceID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count plans for source %d: %w", sourceID, err)
	}
	return count, nil
}

// Save writes the plan's scalar columns. Day ledgers are only appended through AddCompletedDay/AddMissedDay.
func (r *PlanRepository) Save(ctx context.Context, plan *models.StudyPlan) error {
	if err := r.db.WithContext(ctx).Model(plan).Select(planColumns).Updates(plan).Error; err != nil {
		return fmt.Errorf("save plan %d: %w", plan.ID, err)
	}
	return nil
}

// AddCompletedDay inserts the day and stores the plan's recomputed allocation and status in one transaction.
func (r *PlanRepository) AddCompletedDay(ctx context.Context, plan *models.StudyPlan, day *models.CompletedDay) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day.PlanID = plan.ID
		if err := tx.Create(day).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateDay
			}
			return fmt.Errorf("insert completed day: %w", err)
		}
		return savePlan(tx, plan)
	})
}

// AddMissedDay inserts the day and stores the plan's recomputed allocation in one transaction.
func (r *PlanRepository) AddMissedDay(ctx context.Context, plan *models.StudyPlan, day *models.MissedDay) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day.PlanID = plan.ID
		if err := tx.Create(day).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateDay
			}
			return fmt.Errorf("insert missed day: %w", err)
		}
		return savePlan(tx, plan)
	})
}

// Delete removes a plan and its day ledgers. The referenced source is left alone.
func (r *PlanRepository) Delete(ctx context.Context, ownerID, planID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", planID, ownerID).Delete(&models.StudyPlan{})
		if res.Error != nil {
			return fmt.Errorf("delete plan %d: %w", planID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete plan %d: %w", planID, gorm.ErrRecordNotFound)
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.CompletedDay{}).Error; err != nil {
			return fmt.Errorf("delete completed days: %w", err)
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.MissedDay{}).Error; err != nil {
			return fmt.Errorf("delete missed days: %w", err)
		}
		return nil
	})
}

func savePlan(tx *gorm.DB, plan *models.StudyPlan) error {
	if err := tx.Model(plan).Select(planColumns).Updates(plan).Error; err != nil {
		return fmt.Errorf("save plan %d: %w", plan.ID, err)
	}
	return nil
}

func withLedgers(db *gorm.DB) *gorm.DB {
	byDay := func(db *gorm.DB) *gorm.DB { return db.Order("day asc") }
	return db.Preload("CompletedDays", byDay).Preload("MissedDays", byDay)
}
