package handler

import (
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/dashboard"
	"attorneyhub/backend/internal/membership"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type capabilitiesResponse struct {
	UserID       string          `json:"user_id"`
	Tier         membership.Tier `json:"tier"`
	TierName     string          `json:"tier_name"`
	IsAdmin      bool            `json:"is_admin"`
	Capabilities []string        `json:"capabilities"`
}

// MyCapabilities reports the caller's tier and effective capabilities.
func (h *Handler) MyCapabilities(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	tier := h.Members.ResolveTier(ctx, userID)
	c.JSON(http.StatusOK, capabilitiesResponse{
		UserID:       userID,
		Tier:         tier,
		TierName:     h.t(c, membership.MembershipName(tier)),
		IsAdmin:      h.Members.IsAdmin(ctx, userID),
		Capabilities: h.Members.Capabilities(ctx, userID).Strings(),
	})
}

func (h *Handler) DashboardTabs(c *gin.Context) {
	tabs := h.Dashboard.Tabs(c.Request.Context(), middleware.UserID(c))
	for i := range tabs {
		tabs[i].Label = h.t(c, tabs[i].Label)
	}
	c.JSON(http.StatusOK, gin.H{"tabs": tabs})
}

func (h *Handler) DashboardMembership(c *gin.Context) {
	view, err := h.Dashboard.Membership(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.internalError(c, "dashboard membership", err)
		return
	}
	view.TierName = h.t(c, view.TierName)
	for i, b := range view.Benefits {
		view.Benefits[i] = h.t(c, b)
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DashboardBilling(c *gin.Context) {
	txns, err := h.Dashboard.Billing(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.internalError(c, "dashboard billing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h *Handler) DashboardComplaints(c *gin.Context) {
	view, err := h.Dashboard.MyComplaints(c.Request.Context(), middleware.UserID(c), pageFrom(c))
	h.writeComplaints(c, view, err)
}

func (h *Handler) DashboardComplaintsReceived(c *gin.Context) {
	view, err := h.Dashboard.ComplaintsAgainstMe(c.Request.Context(), middleware.UserID(c), pageFrom(c))
	h.writeComplaints(c, view, err)
}

func (h *Handler) writeComplaints(c *gin.Context, view *dashboard.ComplaintsView, err error) {
	switch {
	case errors.Is(err, dashboard.ErrTabNotAvailable):
		jsonError(c, http.StatusForbidden, err.Error())
	case err != nil:
		h.internalError(c, "dashboard complaints", err)
	default:
		c.JSON(http.StatusOK, view)
	}
}

// pageFrom reads limit and offset query parameters. Bad values fall back to
// the defaults.
func pageFrom(c *gin.Context) complaint.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return complaint.Page{Limit: limit, Offset: offset}
}
