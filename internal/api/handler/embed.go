package handler

import (
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/directory"
	"attorneyhub/backend/internal/membership"
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type formLabels struct {
	Attorney     string
	Select       string
	Text         string
	TextHelp     string
	Evidence     string
	EvidenceHelp string
	Submit       string
}

type complaintFormView struct {
	LoginRequired bool
	LoginText     string
	LoginLink     string
	LoginURL      string

	UpgradeRequired bool
	UpgradeNotice   string
	UpgradeButton   string
	PricingURL      string

	Success   string
	Error     string
	Action    string
	CSRF      string
	Attorneys []directory.Option
	Selected  string
	MinLength int
	Labels    formLabels
}

type menuItem struct {
	Label string
	URL   string
}

type userMenuView struct {
	LoggedIn  bool
	LoginURL  string
	LoginText string
	Name      string
	TierName  string
	Badge     string
	Items     []menuItem
}

func (h *Handler) render(c *gin.Context, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.Log.Error("render template", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ComplaintForm renders the complaint form fragment, or the login or upgrade
// prompt when the visitor cannot file.
func (h *Handler) ComplaintForm(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	view := complaintFormView{}
	switch {
	case userID == "":
		view.LoginRequired = true
		view.LoginText = h.t(c, "complaint.login_required")
		view.LoginLink = h.t(c, "menu.login")
		view.LoginURL = h.loginURL(c)
	case !h.Members.UserHas(ctx, userID, membership.CapFileComplaint):
		view.UpgradeRequired = true
		view.UpgradeNotice = h.t(c, "complaint.upgrade_notice")
		view.UpgradeButton = h.t(c, "complaint.upgrade_button")
		view.PricingURL = h.Opts.PricingURL
	default:
		token, err := h.CSRF.Issue(userID, ActionSubmitComplaint)
		if err != nil {
			h.internalError(c, "issue csrf token", err)
			return
		}
		attorneys, err := h.Directory.AttorneyOptions(ctx)
		if err != nil {
			h.internalError(c, "list attorneys", err)
			return
		}
		view.Action = "/complaints"
		view.CSRF = token
		view.Attorneys = attorneys
		view.Selected = c.Query("attorney_id")
		view.MinLength = config.MinComplaintLength
		view.Error = c.Query("error")
		if c.Query("success") == "1" {
			view.Success = h.t(c, "complaint.success")
		}
		view.Labels = formLabels{
			Attorney:     h.t(c, "form.attorney"),
			Select:       h.t(c, "form.select_attorney"),
			Text:         h.t(c, "form.complaint_text"),
			TextHelp:     h.t(c, "form.complaint_help", config.MinComplaintLength),
			Evidence:     h.t(c, "form.evidence"),
			EvidenceHelp: h.t(c, "form.evidence_help", config.MaxEvidenceSize/(1024*1024)),
			Submit:       h.t(c, "form.submit"),
		}
	}
	h.render(c, "complaint_form", view)
}

// UserMenu renders the account menu fragment.
func (h *Handler) UserMenu(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	if userID == "" {
		h.render(c, "user_menu", userMenuView{LoginURL: h.loginURL(c), LoginText: h.t(c, "menu.login")})
		return
	}

	tier := h.Members.ResolveTier(ctx, userID)
	view := userMenuView{
		LoggedIn: true,
		TierName: h.t(c, membership.MembershipName(tier)),
		Items:    []menuItem{{Label: h.t(c, "menu.dashboard"), URL: h.Opts.DashboardURL}},
	}
	if user, err := h.Storage.GetUserByID(ctx, userID); err == nil {
		view.Name = user.DisplayName
	}
	if h.Directory.ReviewerBadge(ctx, userID) {
		view.Badge = h.t(c, "badge.verified_reviewer")
	}
	if h.Members.HasFeature(ctx, userID, membership.FeatureComplaints) {
		view.Items = append(view.Items, menuItem{Label: h.t(c, "menu.file_complaint"), URL: withQuery(h.Opts.DashboardURL, "tab", "complaints")})
	}
	if h.Members.HasFeature(ctx, userID, membership.FeatureClaimListing) {
		view.Items = append(view.Items, menuItem{Label: h.t(c, "menu.add_listing"), URL: h.Opts.AddListingURL})
	}
	if tier == membership.TierAttorneyPro {
		view.Items = append(view.Items, menuItem{Label: h.t(c, "menu.complaints_received"), URL: withQuery(h.Opts.DashboardURL, "tab", "complaints-received")})
	}
	view.Items = append(view.Items, menuItem{Label: h.t(c, "menu.logout"), URL: h.Opts.LogoutURL})
	h.render(c, "user_menu", view)
}
