package handler

import (
	"net/http"

	"woms/internal/middleware"
	"woms/internal/service"
	"woms/pkg/pagination"
	"woms/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifier service.Notifier
}

// NewNotificationHandler sets up the routing dependencies for notifications
func NewNotificationHandler(notifier service.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notification", middleware.Authenticate())
	{
		notifications.GET("", h.List)
		notifications.PATCH("/:id/read", h.MarkRead)
	}
}

// List returns the caller's notifications, newest first
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Page
// @Router       /notification [get]
func (h *NotificationHandler) List(c *gin.Context) {
	params := pagination.Parse(c, rolePageSize)
	results, total, err := h.notifier.List(c.Request.Context(), c.GetString(middleware.CtxUserID), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// MarkRead marks one of the caller's notifications as read
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notification/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ok, err := h.notifier.MarkRead(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "notification not found"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "notification marked as read"}))
}
