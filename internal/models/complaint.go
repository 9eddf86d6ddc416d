package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus is the review state of a complaint.
type ComplaintStatus string

const (
	StatusPending     ComplaintStatus = "pending"
	StatusUnderReview ComplaintStatus = "under_review"
	StatusResolved    ComplaintStatus = "resolved"
	StatusDismissed   ComplaintStatus = "dismissed"
)

// Complaint is a grievance filed by a member against an attorney listing.
// AttorneyID is not a foreign key: deleting the listing leaves the complaint.
type Complaint struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	AuthorID       string          `gorm:"type:text;not null;index" json:"author_id"`
	AttorneyID     string          `gorm:"type:text;not null;index" json:"attorney_id"`
	Title          string          `gorm:"type:text;not null" json:"title"`
	Body           string          `gorm:"type:text;not null" json:"body"`
	EvidenceFileID *string         `gorm:"type:text" json:"evidence_file_id,omitempty"`
	Status         ComplaintStatus `gorm:"type:text;not null;index" json:"status"`
	FiledAt        time.Time       `gorm:"not null" json:"filed_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Attachment is an evidence file stored for a complaint.
type Attachment struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:text;not null;index" json:"complaint_id"`
	FileName    string    `gorm:"type:text;not null" json:"file_name"`
	ContentType string    `gorm:"type:text;not null" json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `gorm:"type:text;not null" json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// ComplaintCount is one row of a complaint count grouped by target and status.
type ComplaintCount struct {
	AttorneyID string          `json:"attorney_id"`
	Status     ComplaintStatus `json:"status"`
	Count      int             `json:"count"`
}
