package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/services"
)

type InvitationHandler struct {
	service services.InvitationService
	log     zerolog.Logger
}

func NewInvitationHandler(service services.InvitationService, log zerolog.Logger) *InvitationHandler {
	return &InvitationHandler{service: service, log: log}
}

// @Summary      Preview invitation
// @Description  Public. Reports the team, role and status; an expired invitation is marked as such.
// @Tags         Invitations
// @Param        token  path  string  true  "Invitation token"
// @Success      200 {object}  models.TeamInvitation
// @Failure      404 {object}  errorResponse
// @Router       /invitations/{token} [get]
func (h *InvitationHandler) Preview(c *gin.Context) {
	inv, err := h.service.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, h.log, "[invitation][preview]", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// @Summary  Accept invitation
// @Tags     Invitations
// @Security BearerAuth
// @Param    token  path  string  true  "Invitation token"
// @Success  200 {object}  models.Team
// @Failure  409 {object}  errorResponse
// @Router   /invitations/{token}/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	team, err := h.service.Accept(c.Request.Context(), a, c.Param("token"))
	if err != nil {
		fail(c, h.log, "[invitation][accept]", err)
		return
	}
	h.log.Info().Str("user", a.ID).Str("team", team.ID).Msg("[invitation][accept] joined")
	c.JSON(http.StatusOK, team)
}

// @Summary  Reject invitation
// @Tags     Invitations
// @Security BearerAuth
// @Param    token  path  string  true  "Invitation token"
// @Success  200 {object}  models.TeamInvitation
// @Router   /invitations/{token}/reject [post]
func (h *InvitationHandler) Reject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	inv, err := h.service.Reject(c.Request.Context(), a, c.Param("token"))
	if err != nil {
		fail(c, h.log, "[invitation][reject]", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
