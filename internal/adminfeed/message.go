// Package adminfeed streams complaint activity to administrators over
// websockets. Events are relayed through Redis so every server instance
// reaches its own connected admins.
package adminfeed

import (
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/models"
	"time"
)

const (
	TypeComplaintFiled         = "complaint_filed"
	TypeComplaintStatusChanged = "complaint_status_changed"
)

// Message is one feed entry as sent to the browser.
type Message struct {
	Type          string    `json:"type"`
	ComplaintID   string    `json:"complaint_id"`
	AttorneyID    string    `json:"attorney_id"`
	AttorneyTitle string    `json:"attorney_title,omitempty"`
	AuthorName    string    `json:"author_name,omitempty"`
	HasEvidence   bool      `json:"has_evidence,omitempty"`
	OldStatus     string    `json:"old_status,omitempty"`
	Status        string    `json:"status"`
	At            time.Time `json:"at"`
}

func filedMessage(e events.ComplaintFiled) Message {
	return Message{
		Type:          TypeComplaintFiled,
		ComplaintID:   e.ComplaintID,
		AttorneyID:    e.AttorneyID,
		AttorneyTitle: e.AttorneyTitle,
		AuthorName:    e.AuthorName,
		HasEvidence:   e.HasEvidence,
		Status:        string(models.StatusPending),
		At:            e.FiledAt,
	}
}

func statusMessage(e events.ComplaintStatusChanged, at time.Time) Message {
	return Message{
		Type:        TypeComplaintStatusChanged,
		ComplaintID: e.ComplaintID,
		AttorneyID:  e.AttorneyID,
		OldStatus:   string(e.OldStatus),
		Status:      string(e.NewStatus),
		At:          at,
	}
}
