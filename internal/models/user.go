package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a site member mirrored from the host identity service.
// Capabilities holds the membership-derived capability names written by the
// last capability sync; it is a cache of a derived value, not a source of truth.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex" json:"email"`
	DisplayName  string         `json:"display_name"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
	Capabilities pq.StringArray `gorm:"type:text[]" json:"capabilities"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// BeforeCreate generates a new UUID for the user if ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
