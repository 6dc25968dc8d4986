package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/middleware"
	"teamtasks/internal/models"
	"teamtasks/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
	log     zerolog.Logger
}

func NewProjectHandler(service services.ProjectService, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, log: log}
}

func (h *ProjectHandler) projectCall(c *gin.Context, tag string, status int, fn func(a services.Actor) (*models.Project, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := fn(a)
	if err != nil {
		fail(c, h.log, tag, err)
		return
	}
	c.JSON(status, p)
}

// @Summary  Create project
// @Tags     Projects
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      services.ProjectInput  true  "Project"
// @Success  201   {object}  models.Project
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var in services.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.projectCall(c, "[project][create]", http.StatusCreated, func(a services.Actor) (*models.Project, error) {
		return h.service.Create(c.Request.Context(), a, in)
	})
}

// @Summary  Get project
// @Tags     Projects
// @Security BearerAuth
// @Param    id  path  string  true  "Project id"
// @Success  200 {object}  models.Project
// @Router   /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	h.projectCall(c, "[project][get]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.Get(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  List projects
// @Tags     Projects
// @Security BearerAuth
// @Param    mode    query  string  false  "personal or team"
// @Param    teamId  query  string  false  "Team id for team mode"
// @Success  200 {array}  models.Project
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), a, middleware.ScopeFrom(c))
	if err != nil {
		fail(c, h.log, "[project][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary  Update project
// @Tags     Projects
// @Accept   json
// @Security BearerAuth
// @Param    id    path  string               true  "Project id"
// @Param    body  body  models.ProjectPatch  true  "Patch"
// @Success  200 {object}  models.Project
// @Router   /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.projectCall(c, "[project][update]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.Update(c.Request.Context(), a, c.Param("id"), patch)
	})
}

// @Summary  Add or update project member
// @Tags     Projects
// @Accept   json
// @Security BearerAuth
// @Param    id  path  string  true  "Project id"
// @Success  200 {object}  models.Project
// @Router   /projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req struct {
		UserID string             `json:"userId" binding:"required"`
		Role   models.ProjectRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.projectCall(c, "[project][member][add]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.AddMember(c.Request.Context(), a, c.Param("id"), req.UserID, req.Role)
	})
}

// @Summary  Remove project member
// @Tags     Projects
// @Security BearerAuth
// @Param    id      path  string  true  "Project id"
// @Param    userId  path  string  true  "User id"
// @Success  200 {object}  models.Project
// @Router   /projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	h.projectCall(c, "[project][member][remove]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.RemoveMember(c.Request.Context(), a, c.Param("id"), c.Param("userId"))
	})
}

// @Summary      Complete project
// @Description  Completes every open task of the project
// @Tags         Projects
// @Security     BearerAuth
// @Param        id  path  string  true  "Project id"
// @Success      200 {object}  models.Project
// @Failure      409 {object}  errorResponse
// @Router       /projects/{id}/complete [post]
func (h *ProjectHandler) Complete(c *gin.Context) {
	h.projectCall(c, "[project][complete]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.Complete(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Move project to trash
// @Tags     Projects
// @Security BearerAuth
// @Param    id         path   string  true   "Project id"
// @Param    withTasks  query  bool    false  "Trash the tasks too instead of detaching them"
// @Success  200 {object}  models.Project
// @Router   /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	h.projectCall(c, "[project][delete]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.Delete(c.Request.Context(), a, c.Param("id"), queryBool(c, "withTasks"))
	})
}

// @Summary  Restore project from trash
// @Tags     Projects
// @Security BearerAuth
// @Param    id         path   string  true   "Project id"
// @Param    withTasks  query  bool    false  "Restore its tasks as well"
// @Success  200 {object}  models.Project
// @Router   /projects/{id}/restore [post]
func (h *ProjectHandler) Restore(c *gin.Context) {
	h.projectCall(c, "[project][restore]", http.StatusOK, func(a services.Actor) (*models.Project, error) {
		return h.service.Restore(c.Request.Context(), a, c.Param("id"), queryBool(c, "withTasks"))
	})
}

// @Summary  Delete project permanently
// @Tags     Projects
// @Security BearerAuth
// @Param    id  path  string  true  "Project id"
// @Success  204
// @Router   /projects/{id}/permanent [delete]
func (h *ProjectHandler) PermanentlyDelete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.service.PermanentlyDelete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, h.log, "[project][purge]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  List trashed projects
// @Tags     Projects
// @Security BearerAuth
// @Success  200 {array}  models.Project
// @Router   /projects/trash [get]
func (h *ProjectHandler) ListTrash(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.service.ListTrash(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[project][trash]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary  Run project date check
// @Tags     Projects
// @Security BearerAuth
// @Param    id  path  string  true  "Project id"
// @Success  200 {object}  services.ProjectDateCheck
// @Router   /projects/{id}/date-check [post]
func (h *ProjectHandler) DateCheck(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.service.RunDateCheck(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, h.log, "[project][date-check]", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary  Project report
// @Tags     Projects
// @Produce  application/pdf
// @Security BearerAuth
// @Param    id  path  string  true  "Project id"
// @Success  200 {file}  binary
// @Router   /projects/{id}/report [get]
func (h *ProjectHandler) Report(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	data, err := h.service.Report(c.Request.Context(), a, id)
	if err != nil {
		fail(c, h.log, "[project][report]", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=project-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", data)
}
