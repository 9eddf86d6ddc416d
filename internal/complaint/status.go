package complaint

import (
	"attorneyhub/backend/internal/models"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrTerminalStatus is returned when leaving resolved or dismissed.
	ErrTerminalStatus = errors.New("complaint status is final")
	// ErrInvalidTransition is returned for a move the lifecycle does not allow.
	ErrInvalidTransition = errors.New("complaint status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown complaint status")
)

var transitions = map[models.ComplaintStatus][]models.ComplaintStatus{
	models.StatusPending:     {models.StatusUnderReview, models.StatusResolved, models.StatusDismissed},
	models.StatusUnderReview: {models.StatusResolved, models.StatusDismissed},
	models.StatusResolved:    nil,
	models.StatusDismissed:   nil,
}

// Statuses lists every status in lifecycle order.
var Statuses = []models.ComplaintStatus{
	models.StatusPending,
	models.StatusUnderReview,
	models.StatusResolved,
	models.StatusDismissed,
}

// ParseStatus validates a status name.
func ParseStatus(s string) (models.ComplaintStatus, error) {
	st := models.ComplaintStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.ComplaintStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition checks a move from one status to another. Staying in the
// same status is always allowed and changes nothing.
func CanTransition(from, to models.ComplaintStatus) error {
	if _, ok := transitions[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return nil
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}
	if !slices.Contains(transitions[from], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
