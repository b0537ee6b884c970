package models

import (
	"time"

	"gorm.io/gorm"
)

// Source kinds
const (
	SourceManual  = "MANUAL"
	SourceFetched = "FETCHED"
)

// Manual trackers accept between these many units.
const (
	ManualTotalMin = 1
	ManualTotalMax = 1000
)

// PlaylistSource supplies the unit count a study plan is scheduled against.
// Manual trackers carry an operator-entered total; fetched playlists carry the
// available (non-private) video count read from the video host.
type PlaylistSource struct {
	gorm.Model
	OwnerID        uint       `gorm:"index;not null" json:"ownerId"`
	Kind           string     `gorm:"type:varchar(10);not null" json:"kind"` // MANUAL, FETCHED
	Title          string     `gorm:"not null" json:"title"`
	ExternalID     string     `gorm:"index" json:"externalId,omitempty"`
	ManualTotal    int        `gorm:"default:0" json:"manualTotal,omitempty"`
	AvailableUnits int        `gorm:"default:0" json:"availableUnits"`
	PrivateUnits   int        `gorm:"default:0" json:"privateUnits"`
	CompletedCount int        `gorm:"default:0" json:"completedCount"`
	LastSyncedAt   *time.Time `json:"lastSyncedAt,omitempty"`

	Items []PlaylistItem `gorm:"foreignKey:SourceID" json:"items,omitempty"`
}

func (PlaylistSource) TableName() string {
	return "playlist_sources"
}

// PlaylistItem is one video of a fetched playlist together with its completion flag.
type PlaylistItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SourceID    uint       `gorm:"index;not null" json:"sourceId"`
	Position    int        `gorm:"default:0" json:"position"`
	VideoID     string     `gorm:"index" json:"videoId"`
	Title       string     `json:"title"`
	IsPrivate   bool       `gorm:"default:false" json:"isPrivate"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (PlaylistItem) TableName() string {
	return "playlist_items"
}
