package telegram

import (
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
)

// StatusSetter moves complaints through their lifecycle.
type StatusSetter interface {
	SetStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error)
}

const statusUsage = "Usage: /status <complaint id> <pending|under_review|resolved|dismissed>"

// HandleStatusCommand processes "/status <id> <status>" arguments and returns
// the reply for the admin chat.
func HandleStatusCommand(ctx context.Context, args string, s StatusSetter) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return statusUsage
	}
	return applyStatus(ctx, s, fields[0], fields[1])
}

func applyStatus(ctx context.Context, s StatusSetter, id, name string) string {
	status, err := complaint.ParseStatus(name)
	if err != nil {
		return statusUsage
	}

	c, err := s.SetStatus(ctx, id, status)
	switch {
	case err == nil:
		return fmt.Sprintf("Complaint %s is now %s.", c.ID, c.Status)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Sprintf("Complaint %s not found.", id)
	case errors.Is(err, complaint.ErrTerminalStatus), errors.Is(err, complaint.ErrInvalidTransition):
		return fmt.Sprintf("Cannot move complaint %s to %s: %v", id, status, err)
	default:
		return "Failed to update the complaint. Check the server logs."
	}
}
