package handler

import (
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/directory"
	"attorneyhub/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SearchFields returns the directory's extra search filters, translated.
func (h *Handler) SearchFields(c *gin.Context) {
	fields := directory.SearchFields()
	for i := range fields {
		fields[i].Label = h.t(c, fields[i].Label)
		if fields[i].Placeholder != "" {
			fields[i].Placeholder = h.t(c, fields[i].Placeholder)
		}
		for j := range fields[i].Options {
			fields[i].Options[j].Label = h.t(c, fields[i].Options[j].Label)
		}
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

// ListingCredentials returns the public credentials of an attorney listing.
// Disciplinary history is never part of it.
func (h *Handler) ListingCredentials(c *gin.Context) {
	creds, err := h.Directory.Credentials(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

func (h *Handler) ListingPermissions(c *gin.Context) {
	p, err := h.Directory.Permissions(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ClaimListing(c *gin.Context) {
	l, err := h.Directory.Claim(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.directoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) UpdateCredentials(c *gin.Context) {
	var body directory.CredentialUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid credential payload")
		return
	}
	l, refused, err := h.Directory.UpdateCredentials(c.Request.Context(), middleware.UserID(c), c.Param("id"), body)
	if err != nil {
		h.directoryError(c, err)
		return
	}
	if refused == nil {
		refused = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"listing": l, "refused": refused})
}

func (h *Handler) directoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		jsonError(c, http.StatusNotFound, "listing not found")
	case errors.Is(err, directory.ErrNotPermitted), errors.Is(err, directory.ErrNotOwner):
		jsonError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, directory.ErrAlreadyClaimed):
		jsonError(c, http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrNotAttorney), errors.Is(err, directory.ErrInvalidArgument):
		jsonError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.internalError(c, "directory", err)
	}
}
