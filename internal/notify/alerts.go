package notify

import (
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/localization"
	"context"
	"strings"
)

// ComplaintAlerts turns filed complaints into admin notices.
type ComplaintAlerts struct {
	Admin    AdminChannel
	Text     *localization.Localizer
	AdminURL string
}

// Register subscribes the alerts to the bus.
func (a *ComplaintAlerts) Register(bus *events.Bus) {
	events.Subscribe(bus, a.onComplaintFiled)
}

func (a *ComplaintAlerts) onComplaintFiled(ctx context.Context, e events.ComplaintFiled) {
	_ = a.Admin.NotifyAdmin(ctx, a.notice(e))
}

func (a *ComplaintAlerts) notice(e events.ComplaintFiled) AdminNotice {
	lang := localization.DefaultLanguage
	link := ComplaintAdminLink(a.AdminURL, e.ComplaintID)
	return AdminNotice{
		Subject: a.Text.GetString(lang, "admin.complaint.subject"),
		Body: a.Text.Format(lang, "admin.complaint.body",
			e.AttorneyTitle, e.AuthorName, e.FiledAt.Format("January 2, 2006 3:04 pm"), link),
		Link:        link,
		ComplaintID: e.ComplaintID,
	}
}

// ComplaintAdminLink is the admin page of a complaint.
func ComplaintAdminLink(adminURL, complaintID string) string {
	return strings.TrimRight(adminURL, "/") + "/complaints/" + complaintID
}
