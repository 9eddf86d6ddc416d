// Package notify delivers notices to administrators and members. Delivery is
// best effort: callers never see a failure, it is logged here.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AdminNotice is sent to the site administrators.
type AdminNotice struct {
	Subject     string
	Body        string
	Link        string
	ComplaintID string
}

// MemberNotice is sent to a single member.
type MemberNotice struct {
	UserID  string
	Email   string
	Name    string
	Subject string
	Body    string
}

type AdminChannel interface {
	NotifyAdmin(ctx context.Context, n AdminNotice) error
}

type MemberChannel interface {
	NotifyMember(ctx context.Context, n MemberNotice) error
}

// Notifier reaches both audiences.
type Notifier interface {
	AdminChannel
	MemberChannel
}

// sendTimeout bounds a detached delivery.
const sendTimeout = 15 * time.Second

// Router sends admin notices to Admin and member notices to Member. A nil
// channel falls back to logging. Sends run in their own goroutine so the
// request that triggered them is never held up.
type Router struct {
	Admin  AdminChannel
	Member MemberChannel
	Log    *zap.Logger

	// Sync disables the background goroutine, used by tests.
	Sync bool
}

func NewRouter(admin AdminChannel, member MemberChannel, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	fallback := &LogNotifier{Log: log}
	if admin == nil {
		admin = fallback
	}
	if member == nil {
		member = fallback
	}
	return &Router{Admin: admin, Member: member, Log: log}
}

func (r *Router) NotifyAdmin(ctx context.Context, n AdminNotice) error {
	r.deliver(ctx, "admin", func(ctx context.Context) error { return r.Admin.NotifyAdmin(ctx, n) },
		zap.String("subject", n.Subject))
	return nil
}

func (r *Router) NotifyMember(ctx context.Context, n MemberNotice) error {
	r.deliver(ctx, "member", func(ctx context.Context) error { return r.Member.NotifyMember(ctx, n) },
		zap.String("user_id", n.UserID), zap.String("subject", n.Subject))
	return nil
}

func (r *Router) deliver(ctx context.Context, audience string, send func(context.Context) error, fields ...zap.Field) {
	run := func(ctx context.Context) {
		if err := send(ctx); err != nil {
			r.Log.Warn("notification failed",
				append(fields, zap.String("audience", audience), zap.Error(err))...)
		}
	}
	if r.Sync {
		run(ctx)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		run(ctx)
	}()
}

// LogNotifier writes notices to the log instead of sending them.
type LogNotifier struct {
	Log *zap.Logger
}

func (l *LogNotifier) NotifyAdmin(_ context.Context, n AdminNotice) error {
	l.Log.Info("admin notice",
		zap.String("subject", n.Subject), zap.String("link", n.Link), zap.String("complaint_id", n.ComplaintID))
	return nil
}

func (l *LogNotifier) NotifyMember(_ context.Context, n MemberNotice) error {
	l.Log.Info("member notice",
		zap.String("user_id", n.UserID), zap.String("email", n.Email), zap.String("subject", n.Subject))
	return nil
}
