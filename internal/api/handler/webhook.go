package handler

import (
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret of the membership provider.
const WebhookSecretHeader = "X-Webhook-Secret"

const (
	WebhookSignup             = "signup"
	WebhookSubscriptionStatus = "subscription_status"
	WebhookTransactionStatus  = "transaction_status"
	WebhookUserUpdated        = "user_updated"
)

type webhookUser struct {
	ID          string `json:"id" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// optionalTime tells an absent field from an explicit null, which means
// the subscription never expires.
type optionalTime struct {
	Set  bool
	Time *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Time = &t
	return nil
}

type webhookSubscription struct {
	ID          string       `json:"id" binding:"required"`
	ProductSlug string       `json:"product_slug"`
	Status      string       `json:"status"`
	ExpiresAt   optionalTime `json:"expires_at"`
}

type webhookTransaction struct {
	ID             string `json:"id" binding:"required"`
	SubscriptionID string `json:"subscription_id"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"payment_method"`
	Status         string `json:"status"`
}

type webhookPayload struct {
	Event        string               `json:"event" binding:"required"`
	User         webhookUser          `json:"user" binding:"required"`
	Subscription *webhookSubscription `json:"subscription"`
	Transaction  *webhookTransaction  `json:"transaction"`
}

// MembershipWebhook records subscription lifecycle changes reported by the
// membership provider and publishes the matching events.
func (h *Handler) MembershipWebhook(c *gin.Context) {
	if h.Opts.WebhookSecret == "" {
		jsonError(c, http.StatusServiceUnavailable, "membership webhook is not configured")
		return
	}
	got := c.GetHeader(WebhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.Opts.WebhookSecret)) != 1 {
		h.Log.Warn("membership webhook rejected", zap.String("ip", c.ClientIP()))
		jsonError(c, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var p webhookPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	ctx := c.Request.Context()
	if err := h.upsertUser(ctx, p.User); err != nil {
		h.internalError(c, "webhook user", err)
		return
	}

	var event events.Event
	switch p.Event {
	case WebhookSignup:
		var txnID string
		if p.Subscription != nil {
			if _, err := h.saveSubscription(ctx, p.User.ID, p.Subscription); err != nil {
				h.internalError(c, "webhook subscription", err)
				return
			}
		}
		if p.Transaction != nil {
			if _, err := h.saveTransaction(ctx, p.User.ID, p.Transaction); err != nil {
				h.internalError(c, "webhook transaction", err)
				return
			}
			txnID = p.Transaction.ID
		}
		event = events.SubscriptionSignup{UserID: p.User.ID, TransactionID: txnID}

	case WebhookSubscriptionStatus:
		if p.Subscription == nil {
			jsonError(c, http.StatusBadRequest, "subscription is required")
			return
		}
		old, err := h.saveSubscription(ctx, p.User.ID, p.Subscription)
		if err != nil {
			h.internalError(c, "webhook subscription", err)
			return
		}
		event = events.SubscriptionStatusChanged{
			UserID:         p.User.ID,
			SubscriptionID: p.Subscription.ID,
			OldStatus:      old,
			NewStatus:      p.Subscription.Status,
		}

	case WebhookTransactionStatus:
		if p.Transaction == nil {
			jsonError(c, http.StatusBadRequest, "transaction is required")
			return
		}
		old, err := h.saveTransaction(ctx, p.User.ID, p.Transaction)
		if err != nil {
			h.internalError(c, "webhook transaction", err)
			return
		}
		event = events.TransactionStatusChanged{
			UserID:        p.User.ID,
			TransactionID: p.Transaction.ID,
			OldStatus:     old,
			NewStatus:     p.Transaction.Status,
		}

	case WebhookUserUpdated:
		event = events.UserUpdated{UserID: p.User.ID}

	default:
		jsonError(c, http.StatusBadRequest, fmt.Sprintf("unknown event %q", p.Event))
		return
	}

	h.Bus.Publish(ctx, event)
	c.JSON(http.StatusOK, gin.H{"ok": true, "event": event.EventName()})
}

// upsertUser mirrors the host's profile fields without touching the admin
// flag or the synced capabilities.
func (h *Handler) upsertUser(ctx context.Context, u webhookUser) error {
	user, err := h.Storage.GetUserByID(ctx, u.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user = &models.User{ID: u.ID}
	case err != nil:
		return err
	}
	if u.Email != "" {
		user.Email = u.Email
	}
	if u.DisplayName != "" {
		user.DisplayName = u.DisplayName
	}
	return h.Storage.SaveUser(ctx, user)
}

// saveSubscription stores s and returns the status it had before.
func (h *Handler) saveSubscription(ctx context.Context, userID string, s *webhookSubscription) (string, error) {
	sub, err := h.Storage.GetSubscriptionByID(ctx, s.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sub = &models.Subscription{ID: s.ID}
	case err != nil:
		return "", err
	}
	old := sub.Status
	sub.UserID = userID
	if s.ProductSlug != "" {
		sub.ProductSlug = s.ProductSlug
	}
	if s.Status != "" {
		sub.Status = s.Status
	}
	if s.ExpiresAt.Set {
		sub.ExpiresAt = s.ExpiresAt.Time
	}
	return old, h.Storage.SaveSubscription(ctx, sub)
}

// saveTransaction stores t and returns the status it had before.
func (h *Handler) saveTransaction(ctx context.Context, userID string, t *webhookTransaction) (string, error) {
	txn, err := h.Storage.GetTransactionByID(ctx, t.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		txn = &models.Transaction{ID: t.ID}
	case err != nil:
		return "", err
	}
	old := txn.Status
	txn.UserID = userID
	if t.SubscriptionID != "" {
		txn.SubscriptionID = t.SubscriptionID
	}
	if t.Amount != "" {
		txn.Amount = t.Amount
	}
	if t.PaymentMethod != "" {
		txn.PaymentMethod = t.PaymentMethod
	}
	if t.Status != "" {
		txn.Status = t.Status
	}
	return old, h.Storage.SaveTransaction(ctx, txn)
}
