package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/models"
	"teamtasks/internal/services"
)

type TeamHandler struct {
	teams       services.TeamService
	invitations services.InvitationService
	log         zerolog.Logger
}

func NewTeamHandler(teams services.TeamService, invitations services.InvitationService, log zerolog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, invitations: invitations, log: log}
}

func (h *TeamHandler) teamCall(c *gin.Context, tag string, status int, fn func(a services.Actor) (*models.Team, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	team, err := fn(a)
	if err != nil {
		fail(c, h.log, tag, err)
		return
	}
	c.JSON(status, team)
}

type teamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type memberRequest struct {
	UserID string          `json:"userId"`
	Role   models.TeamRole `json:"role"`
}

// @Summary  Create team
// @Tags     Teams
// @Accept   json
// @Security BearerAuth
// @Param    body  body  teamRequest  true  "Team"
// @Success  201 {object}  models.Team
// @Router   /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.teamCall(c, "[team][create]", http.StatusCreated, func(a services.Actor) (*models.Team, error) {
		return h.teams.Create(c.Request.Context(), a, req.Name, req.Description)
	})
}

// @Summary  List my teams
// @Tags     Teams
// @Security BearerAuth
// @Success  200 {array}  models.Team
// @Router   /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	teams, err := h.teams.ListForUser(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[team][list]", err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// @Summary  Get team
// @Tags     Teams
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  200 {object}  models.Team
// @Router   /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	h.teamCall(c, "[team][get]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.Get(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Update team
// @Tags     Teams
// @Accept   json
// @Security BearerAuth
// @Param    id    path  string            true  "Team id"
// @Param    body  body  models.TeamPatch  true  "Patch"
// @Success  200 {object}  models.Team
// @Router   /teams/{id} [patch]
func (h *TeamHandler) Update(c *gin.Context) {
	var patch models.TeamPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.teamCall(c, "[team][update]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.Update(c.Request.Context(), a, c.Param("id"), patch)
	})
}

// @Summary  Add team member
// @Tags     Teams
// @Accept   json
// @Security BearerAuth
// @Param    id    path  string         true  "Team id"
// @Param    body  body  memberRequest  true  "Member"
// @Success  200 {object}  models.Team
// @Router   /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.teamCall(c, "[team][member][add]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.AddMember(c.Request.Context(), a, c.Param("id"), req.UserID, req.Role)
	})
}

// @Summary  Change member role
// @Tags     Teams
// @Accept   json
// @Security BearerAuth
// @Param    id      path  string  true  "Team id"
// @Param    userId  path  string  true  "User id"
// @Success  200 {object}  models.Team
// @Router   /teams/{id}/members/{userId} [put]
func (h *TeamHandler) ChangeRole(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.teamCall(c, "[team][member][role]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.ChangeRole(c.Request.Context(), a, c.Param("id"), c.Param("userId"), req.Role)
	})
}

// @Summary  Remove team member
// @Tags     Teams
// @Security BearerAuth
// @Param    id      path  string  true  "Team id"
// @Param    userId  path  string  true  "User id"
// @Success  200 {object}  models.Team
// @Router   /teams/{id}/members/{userId} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	h.teamCall(c, "[team][member][remove]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.RemoveMember(c.Request.Context(), a, c.Param("id"), c.Param("userId"))
	})
}

// @Summary  Leave team
// @Tags     Teams
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  204
// @Router   /teams/{id}/leave [post]
func (h *TeamHandler) Leave(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.teams.Leave(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, h.log, "[team][leave]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  Move team to trash
// @Tags     Teams
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  200 {object}  models.Team
// @Router   /teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	h.teamCall(c, "[team][delete]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.Delete(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Restore team
// @Tags     Teams
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  200 {object}  models.Team
// @Router   /teams/{id}/restore [post]
func (h *TeamHandler) Restore(c *gin.Context) {
	h.teamCall(c, "[team][restore]", http.StatusOK, func(a services.Actor) (*models.Team, error) {
		return h.teams.Restore(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Delete team permanently
// @Tags     Teams
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  204
// @Router   /teams/{id}/permanent [delete]
func (h *TeamHandler) PermanentlyDelete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.teams.PermanentlyDelete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, h.log, "[team][purge]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  List trashed teams
// @Tags     Teams
// @Security BearerAuth
// @Success  200 {array}  models.Team
// @Router   /teams/trash [get]
func (h *TeamHandler) ListTrash(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	teams, err := h.teams.ListTrash(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[team][trash]", err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// @Summary      Invite to team
// @Description  With an email the invitation is mailed and bound to that address; without one a shareable link is returned.
// @Tags         Invitations
// @Accept       json
// @Security     BearerAuth
// @Param        id  path  string  true  "Team id"
// @Success      201 {object}  models.TeamInvitation
// @Router       /teams/{id}/invitations [post]
func (h *TeamHandler) Invite(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Email string          `json:"email"`
		Role  models.TeamRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var (
		inv *models.TeamInvitation
		err error
	)
	if req.Email != "" {
		inv, err = h.invitations.CreateEmailInvitation(c.Request.Context(), a, c.Param("id"), req.Email, req.Role)
	} else {
		inv, err = h.invitations.CreateLinkInvitation(c.Request.Context(), a, c.Param("id"), req.Role)
	}
	if err != nil {
		fail(c, h.log, "[team][invite]", err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// @Summary  List team invitations
// @Tags     Invitations
// @Security BearerAuth
// @Param    id  path  string  true  "Team id"
// @Success  200 {array}  models.TeamInvitation
// @Router   /teams/{id}/invitations [get]
func (h *TeamHandler) Invitations(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.invitations.ListForTeam(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, h.log, "[team][invitations]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
