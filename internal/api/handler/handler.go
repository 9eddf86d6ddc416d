// Package handler exposes the hub over HTTP: the complaint form endpoint,
// embeddable fragments, member and directory JSON endpoints, the membership
// webhook and the admin routes.
package handler

import (
	"attorneyhub/backend/internal/adminfeed"
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/dashboard"
	"attorneyhub/backend/internal/directory"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/localization"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/storage"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options are the site settings the handlers need.
type Options struct {
	SiteURL       string
	LoginURL      string
	DashboardURL  string
	PricingURL    string
	AddListingURL string
	LogoutURL     string
	WebhookSecret string
}

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Storage    storage.Storage
	Members    *membership.Resolver
	Complaints *complaint.Service
	Directory  *directory.Service
	Dashboard  *dashboard.Service
	Feed       *adminfeed.Hub
	Bus        *events.Bus
	Cache      *cache.Cache
	Text       *localization.Localizer
	CSRF       *CSRF
	Log        *zap.Logger
	Opts       Options
}

// Register mounts every route on r. Session auth must already be in r's chain.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/complaints", h.SubmitComplaint)
	r.GET("/embed/complaint-form", h.ComplaintForm)
	r.GET("/embed/user-menu", h.UserMenu)
	r.GET("/directory/search-fields", h.SearchFields)
	r.GET("/listings/:id/credentials", h.ListingCredentials)
	r.POST("/webhooks/membership", h.MembershipWebhook)

	member := r.Group("/", middleware.RequireUser())
	member.GET("/me/capabilities", h.MyCapabilities)
	member.GET("/dashboard/tabs", h.DashboardTabs)
	member.GET("/dashboard/membership", h.DashboardMembership)
	member.GET("/dashboard/billing", h.DashboardBilling)
	member.GET("/dashboard/complaints", h.DashboardComplaints)
	member.GET("/dashboard/complaints-received", h.DashboardComplaintsReceived)
	member.GET("/listings/:id/permissions", h.ListingPermissions)
	member.POST("/listings/:id/claim", h.ClaimListing)
	member.PATCH("/listings/:id/credentials", h.UpdateCredentials)

	admin := r.Group("/admin", middleware.RequireAdmin(h.Members, h.Log))
	admin.GET("/stats/complaints", h.AdminComplaintStats)
	admin.GET("/complaints/:id", h.AdminGetComplaint)
	admin.PATCH("/complaints/:id/status", h.AdminSetComplaintStatus)
	admin.POST("/cache/clear", h.AdminClearCache)
	admin.POST("/users/:id/sync", h.AdminSyncUser)
	admin.GET("/feed", h.AdminFeed)
}

// lang picks the response language from Accept-Language.
func (h *Handler) lang(c *gin.Context) string {
	return h.Text.Match(c.GetHeader("Accept-Language"))
}

func (h *Handler) t(c *gin.Context, key string, args ...any) string {
	if len(args) == 0 {
		return h.Text.GetString(h.lang(c), key)
	}
	return h.Text.Format(h.lang(c), key, args...)
}

func jsonError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Message: message})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.Log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	jsonError(c, http.StatusInternalServerError, "Internal Server Error")
}
