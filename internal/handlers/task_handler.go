package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/middleware"
	"teamtasks/internal/models"
	"teamtasks/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	log     zerolog.Logger
}

func NewTaskHandler(service services.TaskService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{service: service, log: log}
}

// taskCall binds the actor and runs fn, writing its task or error.
func (h *TaskHandler) taskCall(c *gin.Context, tag string, status int, fn func(a services.Actor) (*models.Task, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	task, err := fn(a)
	if err != nil {
		fail(c, h.log, tag, err)
		return
	}
	c.JSON(status, task)
}

// @Summary  Create task
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      services.TaskInput  true  "Task"
// @Success  201   {object}  models.Task
// @Failure  400   {object}  errorResponse
// @Failure  403   {object}  errorResponse
// @Router   /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Debug().Err(err).Msg("[task][create] bind failed")
		badRequest(c, err.Error())
		return
	}
	h.taskCall(c, "[task][create]", http.StatusCreated, func(a services.Actor) (*models.Task, error) {
		return h.service.Create(c.Request.Context(), a, in)
	})
}

// @Summary  Get task
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    id  path      string  true  "Task id"
// @Success  200 {object}  models.Task
// @Failure  404 {object}  errorResponse
// @Router   /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	h.taskCall(c, "[task][get]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.Get(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  List tasks
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    mode    query  string  false  "personal or team"
// @Param    teamId  query  string  false  "Team id for team mode"
// @Success  200 {array}  models.Task
// @Router   /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	tasks, err := h.service.List(c.Request.Context(), a, middleware.ScopeFrom(c))
	if err != nil {
		fail(c, h.log, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Update task
// @Description  Partial update. An absent key keeps the value, null clears it.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Task id"
// @Param        body  body      models.TaskPatch  true  "Patch"
// @Success      200   {object}  models.Task
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.taskCall(c, "[task][update]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.Update(c.Request.Context(), a, c.Param("id"), patch)
	})
}

// @Summary  Change task status
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/status [put]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.taskCall(c, "[task][status]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.ChangeStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	})
}

// @Summary  Move task to trash
// @Tags     Tasks
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	h.taskCall(c, "[task][delete]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.Delete(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Restore task from trash
// @Tags     Tasks
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/restore [post]
func (h *TaskHandler) Restore(c *gin.Context) {
	h.taskCall(c, "[task][restore]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.Restore(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  Delete task permanently
// @Tags     Tasks
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  204
// @Router   /tasks/{id}/permanent [delete]
func (h *TaskHandler) PermanentlyDelete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.service.PermanentlyDelete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, h.log, "[task][purge]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  List trashed tasks
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Success  200 {array}  models.Task
// @Router   /tasks/trash [get]
func (h *TaskHandler) ListTrash(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	tasks, err := h.service.ListTrash(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[task][trash]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary  Add comment
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  201 {object}  models.Task
// @Router   /tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.taskCall(c, "[task][comment]", http.StatusCreated, func(a services.Actor) (*models.Task, error) {
		return h.service.AddComment(c.Request.Context(), a, c.Param("id"), req.Text)
	})
}

// @Summary  Toggle subtask
// @Tags     Tasks
// @Security BearerAuth
// @Param    id         path  string  true  "Task id"
// @Param    subtaskId  path  string  true  "Subtask id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/subtasks/{subtaskId}/toggle [post]
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	h.taskCall(c, "[task][subtask]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.ToggleSubtask(c.Request.Context(), a, c.Param("id"), c.Param("subtaskId"))
	})
}

// @Summary  Start work session
// @Tags     Work sessions
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/sessions/start [post]
func (h *TaskHandler) StartWorkSession(c *gin.Context) {
	h.taskCall(c, "[task][session][start]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.StartWorkSession(c.Request.Context(), a, c.Param("id"))
	})
}

// @Summary  End work session
// @Tags     Work sessions
// @Accept   json
// @Security BearerAuth
// @Param    id  path  string  true  "Task id"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/sessions/end [post]
func (h *TaskHandler) EndWorkSession(c *gin.Context) {
	var req struct {
		BreakMinutes int `json:"breakMinutes"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	h.taskCall(c, "[task][session][end]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.EndWorkSession(c.Request.Context(), a, c.Param("id"), req.BreakMinutes)
	})
}

// @Summary  Edit finished work session
// @Tags     Work sessions
// @Accept   json
// @Security BearerAuth
// @Param    id         path  string                    true  "Task id"
// @Param    sessionId  path  string                    true  "Session id"
// @Param    body       body  services.WorkSessionEdit  true  "Changes"
// @Success  200 {object}  models.Task
// @Router   /tasks/{id}/sessions/{sessionId} [patch]
func (h *TaskHandler) EditWorkSession(c *gin.Context) {
	var edit services.WorkSessionEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.taskCall(c, "[task][session][edit]", http.StatusOK, func(a services.Actor) (*models.Task, error) {
		return h.service.EditWorkSession(c.Request.Context(), a, c.Param("id"), c.Param("sessionId"), edit)
	})
}

// @Summary      Run date check
// @Description  Applies automatic start and overdue rules to one task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200 {object}  services.TaskDateCheck
// @Router       /tasks/{id}/date-check [post]
func (h *TaskHandler) DateCheck(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.service.RunDateCheck(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, h.log, "[task][date-check]", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Roll recurring series
// @Description  Creates at most one new instance per open-ended series of the caller
// @Tags         Tasks
// @Security     BearerAuth
// @Success      200 {array}  models.Task
// @Router       /tasks/recurrences/check [post]
func (h *TaskHandler) CheckRecurrences(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	created, err := h.service.CheckRecurrences(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[task][recurrence]", err)
		return
	}
	h.log.Info().Str("user", a.ID).Int("created", len(created)).Msg("[task][recurrence] checked")
	c.JSON(http.StatusOK, created)
}

// @Summary  Next tasks to work on
// @Tags     Tasks
// @Security BearerAuth
// @Success  200 {array}  prioritize.Ranked
// @Router   /tasks/next [get]
func (h *TaskHandler) Next(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	ranked, err := h.service.NextTasks(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[task][next]", err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

// @Summary  Tasks grouped by urgency
// @Tags     Tasks
// @Security BearerAuth
// @Success  200 {object}  prioritize.Categories
// @Router   /tasks/categories [get]
func (h *TaskHandler) Categories(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	cats, err := h.service.Categories(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[task][categories]", err)
		return
	}
	c.JSON(http.StatusOK, cats)
}
