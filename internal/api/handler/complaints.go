package handler

import (
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/evidence"
	"attorneyhub/backend/internal/logger"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/storage"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitComplaint handles the complaint form post. Every outcome is a
// redirect or a short text page, matching a classic form submission.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	if userID == "" {
		c.Redirect(http.StatusFound, h.loginURL(c))
		return
	}
	if !h.Members.UserHas(ctx, userID, membership.CapFileComplaint) {
		c.String(http.StatusForbidden, h.t(c, "complaint.not_permitted"))
		return
	}
	if err := h.CSRF.Verify(c.PostForm("_csrf"), userID, ActionSubmitComplaint); err != nil {
		logger.Security(h.Log, "csrf check failed",
			zap.String("event_type", "csrf_failure"),
			zap.String("user_id", userID),
			zap.String("ip", c.ClientIP()),
			zap.String("action", ActionSubmitComplaint),
			zap.Error(err))
		c.String(http.StatusForbidden, h.t(c, "complaint.security_failed"))
		return
	}

	req := complaint.SubmitRequest{
		UserID:     userID,
		AttorneyID: strings.TrimSpace(c.PostForm("attorney_id")),
		Text:       c.PostForm("complaint_text"),
	}
	if fh, err := c.FormFile("evidence"); err == nil {
		upload, closeFn, err := openUpload(fh)
		if err != nil {
			h.Log.Warn("evidence upload unreadable", zap.String("user_id", userID), zap.Error(err))
		} else {
			defer closeFn()
			req.Evidence = upload
		}
	}

	_, err := h.Complaints.Submit(ctx, req)
	var verr *complaint.ValidationError
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, h.successURL())
	case errors.As(err, &verr):
		lang := h.lang(c)
		msgs := verr.Messages(func(code string, args ...any) string {
			return h.Text.Format(lang, code, args...)
		})
		c.Redirect(http.StatusFound, h.backURL(c, strings.Join(msgs, "; ")))
	case errors.Is(err, complaint.ErrNotAuthenticated):
		c.Redirect(http.StatusFound, h.loginURL(c))
	case errors.Is(err, complaint.ErrNotPermitted):
		c.String(http.StatusForbidden, h.t(c, "complaint.not_permitted"))
	default:
		h.Log.Error("submit complaint", zap.String("user_id", userID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}

func openUpload(fh *multipart.FileHeader) (*evidence.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &evidence.Upload{FileName: fh.Filename, Size: fh.Size, Reader: f}, func() { f.Close() }, nil
}

func (h *Handler) loginURL(c *gin.Context) string {
	back := c.GetHeader("Referer")
	if !h.sameSite(back) {
		back = h.Opts.DashboardURL
	}
	return withQuery(h.Opts.LoginURL, "redirect_to", back)
}

func (h *Handler) successURL() string {
	u := withQuery(h.Opts.DashboardURL, "tab", "complaints")
	return withQuery(u, "success", "1")
}

// backURL returns the page the form was posted from with the error attached.
// Foreign or missing referers fall back to the dashboard.
func (h *Handler) backURL(c *gin.Context, message string) string {
	back := c.GetHeader("Referer")
	if !h.sameSite(back) {
		back = h.Opts.DashboardURL
	}
	return withQuery(back, "error", message)
}

// sameSite accepts relative URLs and absolute URLs on the site's host.
func (h *Handler) sameSite(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return u.Scheme == "" && strings.HasPrefix(u.Path, "/")
	}
	site, err := url.Parse(h.Opts.SiteURL)
	return err == nil && strings.EqualFold(u.Host, site.Host)
}

// withQuery sets key=value on raw, replacing any previous value.
func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminSetComplaintStatus moves a complaint through its lifecycle.
func (h *Handler) AdminSetComplaintStatus(c *gin.Context) {
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "status is required")
		return
	}
	status, err := complaint.ParseStatus(body.Status)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Complaints.SetStatus(c.Request.Context(), c.Param("id"), status)
	switch {
	case err == nil:
		h.Log.Info("complaint status set by admin",
			zap.String("complaint_id", updated.ID),
			zap.String("status", string(updated.Status)),
			zap.String("admin_id", middleware.UserID(c)))
		c.JSON(http.StatusOK, updated)
	case errors.Is(err, storage.ErrNotFound):
		jsonError(c, http.StatusNotFound, "complaint not found")
	case errors.Is(err, complaint.ErrTerminalStatus), errors.Is(err, complaint.ErrInvalidTransition):
		jsonError(c, http.StatusConflict, err.Error())
	default:
		h.internalError(c, "set complaint status", err)
	}
}

func (h *Handler) AdminGetComplaint(c *gin.Context) {
	found, err := h.Complaints.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(c, http.StatusNotFound, "complaint not found")
		return
	}
	if err != nil {
		h.internalError(c, "get complaint", err)
		return
	}
	c.JSON(http.StatusOK, found)
}
