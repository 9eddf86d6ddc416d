package handler

import (
	"attorneyhub/backend/internal/adminfeed"
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/logger"
	"attorneyhub/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// AdminClearCache drops every cached entry.
func (h *Handler) AdminClearCache(c *gin.Context) {
	if err := h.Cache.ClearAll(c.Request.Context()); err != nil {
		h.internalError(c, "clear cache", err)
		return
	}
	logger.Security(h.Log, "cache cleared",
		zap.String("event_type", "cache_cleared"),
		zap.String("admin_id", middleware.UserID(c)))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AdminSyncUser recomputes one user's persisted capabilities.
func (h *Handler) AdminSyncUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")
	err := h.Members.SyncCapabilities(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.internalError(c, "sync capabilities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "capabilities": h.Members.Capabilities(ctx, userID).Strings()})
}

// AdminComplaintStats reports complaint totals by status and per listing.
func (h *Handler) AdminComplaintStats(c *gin.Context) {
	report, err := h.Complaints.Stats(c.Request.Context())
	if err != nil {
		h.internalError(c, "complaint stats", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AdminFeed upgrades to a websocket that streams complaint activity.
func (h *Handler) AdminFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Log.Debug("admin feed upgrade failed", zap.Error(err))
		return
	}

	client := adminfeed.NewWebSocketClient(middleware.UserID(c), conn, h.Feed)
	if !h.Feed.Join(client) {
		conn.Close()
		return
	}
	client.Run()
}
