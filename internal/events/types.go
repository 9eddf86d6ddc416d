package events

import (
	"attorneyhub/backend/internal/models"
	"time"
)

// SubscriptionSignup fires when a member completes a membership purchase.
type SubscriptionSignup struct {
	UserID        string
	TransactionID string
}

// SubscriptionStatusChanged fires when the provider moves a subscription
// between active, expired, cancelled and suspended.
type SubscriptionStatusChanged struct {
	UserID         string
	SubscriptionID string
	OldStatus      string
	NewStatus      string
}

type TransactionStatusChanged struct {
	UserID        string
	TransactionID string
	OldStatus     string
	NewStatus     string
}

// UserUpdated fires when the host reports a profile change.
type UserUpdated struct {
	UserID string
}

// ComplaintFiled fires once per successful complaint submission.
type ComplaintFiled struct {
	ComplaintID   string
	AuthorID      string
	AuthorName    string
	AttorneyID    string
	AttorneyTitle string
	FiledAt       time.Time
	HasEvidence   bool
}

type ComplaintStatusChanged struct {
	ComplaintID string
	AuthorID    string
	AttorneyID  string
	OldStatus   models.ComplaintStatus
	NewStatus   models.ComplaintStatus
}

// ListingUpdated fires after a claim or a credential edit.
type ListingUpdated struct {
	ListingID string
	OwnerID   string
}

func (SubscriptionSignup) EventName() string        { return "membership.signup" }
func (SubscriptionStatusChanged) EventName() string { return "membership.subscription_status" }
func (TransactionStatusChanged) EventName() string  { return "membership.transaction_status" }
func (UserUpdated) EventName() string               { return "membership.user_updated" }
func (ComplaintFiled) EventName() string            { return "complaint.filed" }
func (ComplaintStatusChanged) EventName() string    { return "complaint.status_changed" }
func (ListingUpdated) EventName() string            { return "listing.updated" }
