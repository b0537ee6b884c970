package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studytrack/models"
)

// UserRepository handles account lookups.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return &user, nil
}

// UpdateSettings writes the reminder preferences. A map is used so that false and "" are stored.
func (r *UserRepository) UpdateSettings(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"reminders": user.Reminders,
		"timezone":  user.Timezone,
	}).Error; err != nil {
		return fmt.Errorf("update user %d settings: %w", user.ID, err)
	}
	return nil
}

// Delete soft-deletes the account. Lookups no longer find it afterwards.
func (r *UserRepository) Delete(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByIDs returns users that are not deleted, keyed by id.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
