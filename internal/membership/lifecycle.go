package membership

import (
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/localization"
	"attorneyhub/backend/internal/logger"
	"attorneyhub/backend/internal/notify"
	"context"
	"strings"

	"go.uber.org/zap"
)

// Lifecycle keeps persisted capabilities and caches in step with
// subscription changes reported by the membership provider.
type Lifecycle struct {
	Resolver *Resolver
	Notifier notify.MemberChannel
	Text     *localization.Localizer
	Log      *zap.Logger

	SiteName     string
	DirectoryURL string
	DashboardURL string
}

// Register subscribes the lifecycle handlers to bus.
func (l *Lifecycle) Register(bus *events.Bus) {
	events.Subscribe(bus, l.HandleSignup)
	events.Subscribe(bus, l.HandleSubscriptionStatusChange)
	events.Subscribe(bus, l.HandleTransactionStatusChange)
	events.Subscribe(bus, l.HandleUserUpdated)
}

func (l *Lifecycle) HandleSignup(ctx context.Context, e events.SubscriptionSignup) {
	l.refresh(ctx, e.UserID)
	tier := l.Resolver.ResolveTier(ctx, e.UserID)
	logger.Security(l.Log, "membership signup",
		zap.String("user_id", e.UserID),
		zap.String("transaction_id", e.TransactionID),
		zap.String("tier", string(tier)))
	l.sendWelcome(ctx, e.UserID, tier)
}

func (l *Lifecycle) HandleSubscriptionStatusChange(ctx context.Context, e events.SubscriptionStatusChanged) {
	l.refresh(ctx, e.UserID)
	logger.Security(l.Log, "subscription status changed",
		zap.String("user_id", e.UserID),
		zap.String("subscription_id", e.SubscriptionID),
		zap.String("old_status", e.OldStatus),
		zap.String("new_status", e.NewStatus))
	if e.OldStatus != e.NewStatus {
		l.sendStatusChange(ctx, e.UserID, e.OldStatus, e.NewStatus)
	}
}

func (l *Lifecycle) HandleTransactionStatusChange(ctx context.Context, e events.TransactionStatusChanged) {
	l.refresh(ctx, e.UserID)
	logger.Security(l.Log, "transaction status changed",
		zap.String("user_id", e.UserID),
		zap.String("transaction_id", e.TransactionID),
		zap.String("old_status", e.OldStatus),
		zap.String("new_status", e.NewStatus))
}

func (l *Lifecycle) HandleUserUpdated(ctx context.Context, e events.UserUpdated) {
	l.refresh(ctx, e.UserID)
}

func (l *Lifecycle) refresh(ctx context.Context, userID string) {
	if err := l.Resolver.SyncCapabilities(ctx, userID); err != nil {
		l.Log.Warn("capability sync failed", zap.String("user_id", userID), zap.Error(err))
	}
	l.Resolver.Cache.ForgetUser(ctx, userID)
}

func (l *Lifecycle) sendWelcome(ctx context.Context, userID string, tier Tier) {
	if l.Notifier == nil {
		return
	}
	user, err := l.Resolver.Users.GetUserByID(ctx, userID)
	if err != nil {
		return
	}
	lang := localization.DefaultLanguage
	name := l.Text.GetString(lang, MembershipName(tier))

	var body strings.Builder
	body.WriteString(l.Text.Format(lang, "mail.welcome.body", l.SiteName, name))
	for _, feature := range TierFeatures(tier) {
		body.WriteString("- " + l.Text.GetString(lang, feature) + "\n")
	}
	body.WriteString(l.Text.Format(lang, "mail.welcome.footer", l.DirectoryURL, l.SiteName))

	_ = l.Notifier.NotifyMember(ctx, notify.MemberNotice{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.DisplayName,
		Subject: l.Text.Format(lang, "mail.welcome.subject", l.SiteName, name),
		Body:    body.String(),
	})
}

func (l *Lifecycle) sendStatusChange(ctx context.Context, userID, oldStatus, newStatus string) {
	if l.Notifier == nil {
		return
	}
	user, err := l.Resolver.Users.GetUserByID(ctx, userID)
	if err != nil {
		return
	}
	lang := localization.DefaultLanguage
	_ = l.Notifier.NotifyMember(ctx, notify.MemberNotice{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.DisplayName,
		Subject: l.Text.Format(lang, "mail.status.subject", l.SiteName),
		Body: l.Text.Format(lang, "mail.status.body",
			user.DisplayName,
			l.Text.GetString(lang, "subscription."+oldStatus),
			l.Text.GetString(lang, "subscription."+newStatus),
			l.DashboardURL,
			l.SiteName),
	})
}
