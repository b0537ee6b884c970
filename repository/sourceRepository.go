package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studytrack/models"
)

// SourceRepository persists playlist sources and their per-item ledgers.
type SourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create stores the source together with any items attached to it.
func (r *SourceRepository) Create(ctx context.Context, source *models.PlaylistSource) error {
	if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
		return fmt.Errorf("create playlist source: %w", err)
	}
	return nil
}

func (r *SourceRepository) FindForOwner(ctx context.Context, ownerID, sourceID uint) (*models.PlaylistSource, error) {
	var source models.PlaylistSource
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", sourceID, ownerID).
		First(&source).Error; err != nil {
		return nil, fmt.Errorf("find playlist source %d: %w", sourceID, err)
	}
	return &source, nil
}

// FindWithItems loads the source and its items in playlist order.
func (r *SourceRepository) FindWithItems(ctx context.Context, ownerID, sourceID uint) (*models.PlaylistSource, error) {
	var source models.PlaylistSource
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("id = ? AND owner_id = ?", sourceID, ownerID).
		First(&source).Error; err != nil {
		return nil, fmt.Errorf("find playlist source %d: %w", sourceID, err)
	}
	return &source, nil
}

func (r *SourceRepository) ListForOwner(ctx context.Context, ownerID uint) ([]models.PlaylistSource, error) {
	var sources []models.PlaylistSource
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("list playlist sources: %w", err)
	}
	return sources, nil
}

// FindByIDs returns sources keyed by id. Missing ids are simply absent.
func (r *SourceRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.PlaylistSource, error) {
	out := make(map[uint]models.PlaylistSource, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var sources []models.PlaylistSource
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("find playlist sources: %w", err)
	}
	for _, s := range sources {
		out[s.ID] = s
	}
	return out, nil
}

// UpdateCounts writes the unit counters of a source.
func (r *SourceRepository) UpdateCounts(ctx context.Context, source *models.PlaylistSource) error {
	if err := r.db.WithContext(ctx).Model(source).
		Select("Title", "ManualTotal", "AvailableUnits", "PrivateUnits", "CompletedCount", "LastSyncedAt").
		Updates(source).Error; err != nil {
		return fmt.Errorf("update playlist source %d: %w", source.ID, err)
	}
	return nil
}

// ReplaceItems swaps the item ledger for a freshly fetched one and stores the new counters.
func (r *SourceRepository) ReplaceItems(ctx context.Context, source *models.PlaylistSource, items []models.PlaylistItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", source.ID).Delete(&models.PlaylistItem{}).Error; err != nil {
			return fmt.Errorf("clear playlist items: %w", err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].SourceID = source.ID
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(&items, 100).Error; err != nil {
				return fmt.Errorf("insert playlist items: %w", err)
			}
		}
		if err := tx.Model(source).
			Select("Title", "AvailableUnits", "PrivateUnits", "CompletedCount", "LastSyncedAt").
			Updates(source).Error; err != nil {
			return fmt.Errorf("update playlist source %d: %w", source.ID, err)
		}
		source.Items = items
		return nil
	})
}

// SetItemCompleted flips one item's completion flag and refreshes the source's completed count.
func (r *SourceRepository) SetItemCompleted(ctx context.Context, source *models.PlaylistSource, itemID uint, done bool, at time.Time) (*models.PlaylistItem, error) {
	var item models.PlaylistItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND source_id = ?", itemID, source.ID).First(&item).Error; err != nil {
			return fmt.Errorf("find playlist item %d: %w", itemID, err)
		}

		item.IsCompleted = done
		item.CompletedAt = nil
		if done {
			item.CompletedAt = &at
		}
		if err := tx.Model(&item).Select("IsCompleted", "CompletedAt").Updates(&item).Error; err != nil {
			return fmt.Errorf("update playlist item %d: %w", itemID, err)
		}

		var completed int64
		if err := tx.Model(&models.PlaylistItem{}).
			Where("source_id = ? AND is_completed = ? AND is_private = ?", source.ID, true, false).
			Count(&completed).Error; err != nil {
			return fmt.Errorf("count completed items: %w", err)
		}
		source.CompletedCount = int(completed)
		if err := tx.Model(source).Select("CompletedCount").Updates(source).Error; err != nil {
			return fmt.Errorf("update playlist source %d: %w", source.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the source and its items.
func (r *SourceRepository) Delete(ctx context.Context, ownerID, sourceID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", sourceID, ownerID).Delete(&models.PlaylistSource{})
		if res.Error != nil {
			return fmt.Errorf("delete playlist source %d: %w", sourceID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete playlist source %d: %w", sourceID, gorm.ErrRecordNotFound)
		}
		if err := tx.Where("source_id = ?", sourceID).Delete(&models.PlaylistItem{}).Error; err != nil {
			return fmt.Errorf("delete playlist items: %w", err)
		}
		return nil
	})
}
