package models

import (
	"gorm.io/gorm"
)

// User is an account. Deleted accounts are soft-deleted through gorm.Model.DeletedAt.
type User struct {
	gorm.Model
	Name      string `gorm:"default:''" json:"name"`
	Email     string `gorm:"unique;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Timezone  string `gorm:"type:varchar(64)" json:"timezone"` // IANA name, empty means the server timezone
	Reminders bool   `gorm:"not null" json:"reminders"`        // daily digest email opt-in
}
