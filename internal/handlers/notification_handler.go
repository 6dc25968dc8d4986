package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/realtime"
	"teamtasks/internal/services"
)

type NotificationHandler struct {
	service services.NotificationService
	hub     *realtime.Hub
	log     zerolog.Logger
}

func NewNotificationHandler(service services.NotificationService, hub *realtime.Hub, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub, log: log}
}

// @Summary  List notifications
// @Tags     Notifications
// @Security BearerAuth
// @Param    unread  query  bool  false  "Only unread"
// @Success  200 {array}  models.Notification
// @Router   /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), a, queryBool(c, "unread"))
	if err != nil {
		fail(c, h.log, "[notification][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary  Mark notification read
// @Tags     Notifications
// @Security BearerAuth
// @Param    id  path  string  true  "Notification id"
// @Success  200 {object}  models.Notification
// @Router   /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, h.log, "[notification][read]", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary  Mark all notifications read
// @Tags     Notifications
// @Security BearerAuth
// @Success  200 {object}  map[string]int
// @Router   /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[notification][read-all]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// @Summary  Delete notification
// @Tags     Notifications
// @Security BearerAuth
// @Param    id  path  string  true  "Notification id"
// @Success  204
// @Router   /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, h.log, "[notification][delete]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a websocket that receives every new notification of the
// caller until the client disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.log.Debug().Err(err).Msg("[notification][ws] upgrade failed")
		badRequest(c, err.Error())
		return
	}
	h.hub.Register(a.ID, conn)
	h.log.Debug().Str("user", a.ID).Msg("[notification][ws] connected")
	defer h.hub.Unregister(a.ID, conn)
	_ = conn.Drain()
}
