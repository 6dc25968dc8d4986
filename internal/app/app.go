// Package app wires configuration, storage, services and the HTTP server.
//
// @title                       Team Tasks API
// @version                     1.0
// @description                 Personal and team task, project and invitation management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "teamtasks/docs"
	"teamtasks/internal/authz"
	"teamtasks/internal/config"
	"teamtasks/internal/docstore"
	"teamtasks/internal/handlers"
	"teamtasks/internal/middleware"
	"teamtasks/internal/pdf"
	"teamtasks/internal/realtime"
	"teamtasks/internal/repositories"
	"teamtasks/internal/routes"
	"teamtasks/internal/services"
)

//go:generate swag init --dir ../.. -g internal/app/app.go -o ../../docs

const (
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
	dateCheckSpec   = "5 0 * * *"
)

// App holds the wired services of one process.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Store docstore.Store
	Hub   *realtime.Hub

	Users         services.UserService
	Passwords     services.PasswordResetService
	Telegram      services.TelegramService
	Tasks         services.TaskService
	Projects      services.ProjectService
	Teams         services.TeamService
	Invitations   services.InvitationService
	Notifications services.NotificationService
	Reminders     services.ReminderService

	tokens *middleware.Tokens
}

// New opens the store and builds every service.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := docstore.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// === Repos ===
	taskRepo := repositories.NewTaskRepository(store)
	projectRepo := repositories.NewProjectRepository(store)
	teamRepo := repositories.NewTeamRepository(store)
	userRepo := repositories.NewUserRepository(store)
	invitationRepo := repositories.NewInvitationRepository(store)
	notificationRepo := repositories.NewNotificationRepository(store)

	// === Delivery ===
	push, err := services.NewPushSender(cfg.Telegram.BotToken, log)
	if err != nil {
		log.Warn().Err(err).Msg("[app] telegram unavailable, push disabled")
		push, _ = services.NewPushSender("", log)
	}
	emails := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	auth := services.NewAuthService()
	hub := realtime.NewHub(log)
	notifications := services.NewNotificationService(notificationRepo, userRepo, push, hub, log)

	// === Services ===
	lookup := services.NewAccessLookup(projectRepo, teamRepo, taskRepo)
	access := authz.NewResolver(lookup)
	taskOpts := services.TaskOptions{AutoStart: cfg.App.AutoStartTasks, Location: cfg.Location()}

	projects := services.NewProjectService(projectRepo, taskRepo, lookup, teamRepo, userRepo, access,
		notifications, pdf.NewReportGenerator(cfg.Files.FontPath), taskOpts, log)
	tasks := services.NewTaskService(taskRepo, projectRepo, teamRepo, access, notifications, projects, taskOpts, log)
	teams := services.NewTeamService(teamRepo, userRepo, notifications, log)
	invitations := services.NewInvitationService(invitationRepo, teamRepo, userRepo, emails, notifications,
		services.InvitationOptions{TTL: cfg.App.InvitationTTL, PublicURL: cfg.App.PublicURL}, log)
	passwords := services.NewPasswordResetService(userRepo, repositories.NewPasswordResetRepository(store),
		emails, auth, cfg.App.PublicURL, log)

	return &App{
		Config:        cfg,
		Log:           log,
		Store:         store,
		Hub:           hub,
		Users:         services.NewUserService(userRepo, auth, log),
		Passwords:     passwords,
		Telegram:      services.NewTelegramService(repositories.NewTelegramLinkRepository(store), userRepo, taskRepo, push, log),
		Tasks:         tasks,
		Projects:      projects,
		Teams:         teams,
		Invitations:   invitations,
		Notifications: notifications,
		Reminders:     services.NewReminderService(taskRepo, userRepo, push, notifications, log),
		tokens:        middleware.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(a.Log))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(a.Users, a.tokens, a.Log),
		Passwords:     handlers.NewPasswordResetHandler(a.Passwords, a.Log),
		Integrations:  handlers.NewIntegrationsHandler(a.Telegram, a.Config.Telegram.WebhookSecret, a.Log),
		Tasks:         handlers.NewTaskHandler(a.Tasks, a.Log),
		Projects:      handlers.NewProjectHandler(a.Projects, a.Log),
		Teams:         handlers.NewTeamHandler(a.Teams, a.Invitations, a.Log),
		Invitations:   handlers.NewInvitationHandler(a.Invitations, a.Log),
		Notifications: handlers.NewNotificationHandler(a.Notifications, a.Hub, a.Log),
		Health:        handlers.Health(a.Store),
	}, a.tokens)
	return router
}

// Scheduler registers the periodic reminder scan and the nightly date sweep.
func (a *App) Scheduler() (*services.SchedulerService, error) {
	sched := services.NewSchedulerService(a.Config.Location(), a.Log)
	if _, err := sched.Schedule("reminders", a.Config.Scheduler.ReminderSpec, jobTimeout, func(ctx context.Context) error {
		_, err := a.Reminders.Scan(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("schedule reminders: %w", err)
	}
	if _, err := sched.Schedule("date-check", dateCheckSpec, jobTimeout, a.SweepDates); err != nil {
		return nil, fmt.Errorf("schedule date check: %w", err)
	}
	return sched, nil
}

// SweepDates runs the daily date check over all tasks and projects.
func (a *App) SweepDates(ctx context.Context) error {
	tasks, err := a.Tasks.SweepDates(ctx)
	if err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	projects, err := a.Projects.SweepDates(ctx)
	if err != nil {
		return fmt.Errorf("projects: %w", err)
	}
	a.Log.Info().Int("tasks", tasks).Int("projects", projects).Msg("[app][date-check] swept")
	return nil
}

// Serve runs the HTTP server and, when enabled, the scheduler until ctx is
// cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	if a.Config.Scheduler.Enabled {
		sched, err := a.Scheduler()
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", server.Addr).Msg("[app] http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.Log.Info().Msg("[app] shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("[http]")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
