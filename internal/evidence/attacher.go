package evidence

import (
	"attorneyhub/backend/internal/models"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AttachmentStore records attachments and links them to complaints.
type AttachmentStore interface {
	SaveAttachment(ctx context.Context, attachment *models.Attachment) error
	SetComplaintEvidence(ctx context.Context, complaintID, attachmentID string) error
}

// Attacher validates an upload, stores its bytes and links the resulting
// attachment to a complaint.
type Attacher struct {
	Files   Store
	Records AttachmentStore
}

func NewAttacher(files Store, records AttachmentStore) *Attacher {
	return &Attacher{Files: files, Records: records}
}

func (a *Attacher) Attach(ctx context.Context, complaintID string, u *Upload) (*models.Attachment, error) {
	file, err := Validate(u)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		ID:          uuid.New().String(),
		ComplaintID: complaintID,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Size:        file.Size(),
	}
	attachment.StorageKey = Key(complaintID, attachment.ID, file.Name)

	if err := a.Files.Put(ctx, attachment.StorageKey, file.ContentType, file.Data); err != nil {
		return nil, fmt.Errorf("store evidence: %w", err)
	}
	if err := a.Records.SaveAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	if err := a.Records.SetComplaintEvidence(ctx, complaintID, attachment.ID); err != nil {
		return nil, fmt.Errorf("link evidence: %w", err)
	}
	return attachment, nil
}
