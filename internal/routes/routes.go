package routes

import (
	"github.com/gin-gonic/gin"

	"teamtasks/internal/handlers"
	"teamtasks/internal/middleware"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Passwords     *handlers.PasswordResetHandler
	Integrations  *handlers.IntegrationsHandler
	Tasks         *handlers.TaskHandler
	Projects      *handlers.ProjectHandler
	Teams         *handlers.TeamHandler
	Invitations   *handlers.InvitationHandler
	Notifications *handlers.NotificationHandler
	Health        gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens *middleware.Tokens) *gin.Engine {
	// ---- public
	r.POST("/login", h.Auth.Login)
	r.POST("/register", h.Auth.Register)
	r.POST("/password/forgot", h.Passwords.ForgotPassword)
	r.POST("/password/reset", h.Passwords.ResetPassword)
	r.GET("/healthz", h.Health)
	r.POST("/integrations/telegram/webhook", h.Integrations.TelegramWebhook)
	r.GET("/invitations/:token", h.Invitations.Preview)

	// ---- protected
	r.Use(middleware.AuthMiddleware(tokens))

	me := r.Group("/me")
	{
		me.GET("", h.Auth.Me)
		me.PATCH("", h.Auth.UpdateProfile)
		me.PUT("/preferences", h.Auth.UpdatePreferences)
		me.PUT("/push-token", h.Auth.SetPushToken)
		me.POST("/telegram-link", h.Integrations.RequestTelegramLink)
	}

	tasks := r.Group("/tasks")
	{
		tasks.POST("", h.Tasks.Create)
		tasks.GET("", middleware.RequireScope(), h.Tasks.List)
		tasks.GET("/trash", h.Tasks.ListTrash)
		tasks.GET("/next", h.Tasks.Next)
		tasks.GET("/categories", h.Tasks.Categories)
		tasks.POST("/recurrences/check", h.Tasks.CheckRecurrences)
		tasks.GET("/:id", h.Tasks.Get)
		tasks.PATCH("/:id", h.Tasks.Update)
		tasks.PUT("/:id/status", h.Tasks.ChangeStatus)
		tasks.DELETE("/:id", h.Tasks.Delete)
		tasks.POST("/:id/restore", h.Tasks.Restore)
		tasks.DELETE("/:id/permanent", h.Tasks.PermanentlyDelete)
		tasks.POST("/:id/date-check", h.Tasks.DateCheck)
		tasks.POST("/:id/comments", h.Tasks.AddComment)
		tasks.POST("/:id/subtasks/:subtaskId/toggle", h.Tasks.ToggleSubtask)
		tasks.POST("/:id/sessions/start", h.Tasks.StartWorkSession)
		tasks.POST("/:id/sessions/end", h.Tasks.EndWorkSession)
		tasks.PATCH("/:id/sessions/:sessionId", h.Tasks.EditWorkSession)
	}

	projects := r.Group("/projects")
	{
		projects.POST("", h.Projects.Create)
		projects.GET("", middleware.RequireScope(), h.Projects.List)
		projects.GET("/trash", h.Projects.ListTrash)
		projects.GET("/:id", h.Projects.Get)
		projects.PATCH("/:id", h.Projects.Update)
		projects.DELETE("/:id", h.Projects.Delete)
		projects.POST("/:id/restore", h.Projects.Restore)
		projects.DELETE("/:id/permanent", h.Projects.PermanentlyDelete)
		projects.POST("/:id/members", h.Projects.AddMember)
		projects.DELETE("/:id/members/:userId", h.Projects.RemoveMember)
		projects.POST("/:id/complete", h.Projects.Complete)
		projects.POST("/:id/date-check", h.Projects.DateCheck)
		projects.GET("/:id/report", h.Projects.Report)
	}

	teams := r.Group("/teams")
	{
		teams.POST("", h.Teams.Create)
		teams.GET("", h.Teams.List)
		teams.GET("/trash", h.Teams.ListTrash)
		teams.GET("/:id", h.Teams.Get)
		teams.PATCH("/:id", h.Teams.Update)
		teams.DELETE("/:id", h.Teams.Delete)
		teams.POST("/:id/restore", h.Teams.Restore)
		teams.DELETE("/:id/permanent", h.Teams.PermanentlyDelete)
		teams.POST("/:id/leave", h.Teams.Leave)
		teams.POST("/:id/members", h.Teams.AddMember)
		teams.PUT("/:id/members/:userId", h.Teams.ChangeRole)
		teams.DELETE("/:id/members/:userId", h.Teams.RemoveMember)
		teams.POST("/:id/invitations", h.Teams.Invite)
		teams.GET("/:id/invitations", h.Teams.Invitations)
	}

	invitations := r.Group("/invitations")
	{
		invitations.POST("/:token/accept", h.Invitations.Accept)
		invitations.POST("/:token/reject", h.Invitations.Reject)
	}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/read-all", h.Notifications.MarkAllRead)
		notifications.POST("/:id/read", h.Notifications.MarkRead)
		notifications.DELETE("/:id", h.Notifications.Delete)
	}
	r.GET("/ws/notifications", h.Notifications.Stream)

	return r
}
