package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
	SubscriptionSuspended = "suspended"
)

// Subscription is a membership purchase reported by the membership provider.
type Subscription struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"type:text;not null;index" json:"user_id"`
	ProductSlug string     `gorm:"type:text;not null" json:"product_slug"`
	Status      string     `gorm:"type:text;not null;index" json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActive reports whether the subscription grants access at now.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

// Transaction is a single billing event on a subscription.
type Transaction struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"type:text;not null;index" json:"user_id"`
	SubscriptionID string    `gorm:"type:text;index" json:"subscription_id"`
	Amount         string    `gorm:"type:text;not null" json:"amount"`
	PaymentMethod  string    `gorm:"type:text" json:"payment_method"`
	Status         string    `gorm:"type:text;not null" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
