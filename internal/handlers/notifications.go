package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary      Notifications
// @Description  Newest alarms and faults across every visible device
// @Tags         notifications
// @Produce      json
// @Success      200  {array}   models.LogEntry
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/notifications [get]
// @Security     BearerAuth
func (h *Handler) getNotifications(c *gin.Context) {
	out, err := h.services.GetNotifications(c.Request.Context(), principal(c))
	if err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "notifications_list_failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Mark notification read
// @Tags         notifications
// @Param        type  path  string  true  "Event type"  Enums(alarm,fault)
// @Param        id    path  int     true  "Event id"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/notifications/{type}/{id}/read [post]
// @Security     BearerAuth
func (h *Handler) markRead(c *gin.Context) {
	typ := c.Param("type")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return
	}

	if err := h.services.MarkRead(c.Request.Context(), principal(c), typ, id); err != nil {
		h.respondServiceError(c, err, errBatteryNotFound, "notification_mark_read_failed", "type", typ, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
