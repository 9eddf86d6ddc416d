package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ListingPublished = "publish"
	ListingDraft     = "draft"
)

// Listing is a directory entry. Attorney profiles carry ListingType
// config.AttorneyListingType plus the credential columns below.
type Listing struct {
	ID                  string         `gorm:"primaryKey" json:"id"`
	Title               string         `gorm:"type:text;not null" json:"title"`
	ListingType         string         `gorm:"type:text;not null;index" json:"listing_type"`
	Status              string         `gorm:"type:text;not null;default:'publish'" json:"status"`
	OwnerID             *string        `gorm:"type:text;index" json:"owner_id,omitempty"`
	BarNumber           string         `gorm:"type:text" json:"bar_number"`
	StateAdmission      string         `gorm:"type:text" json:"state_admission"`
	PracticeAreas       pq.StringArray `gorm:"type:text[]" json:"practice_areas"`
	YearsExperience     int            `json:"years_experience"`
	LawFirm             string         `gorm:"type:text" json:"law_firm"`
	LicenseStatus       string         `gorm:"type:text" json:"license_status"`
	DisciplinaryHistory string         `gorm:"type:text" json:"disciplinary_history"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

// IsOwnedBy reports whether userID has claimed the listing.
func (l *Listing) IsOwnedBy(userID string) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}
