package services

import (
	"context"
	"time"

	"teamtasks/internal/authz"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Name string
}

// Clock is injected so services can be driven from tests.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// accessLookup feeds the permission resolver from the repositories.
type accessLookup struct {
	projects repositories.ProjectRepository
	teams    repositories.TeamRepository
	tasks    repositories.TaskRepository
}

// NewAccessLookup returns the authz.Lookup backed by the stores.
func NewAccessLookup(projects repositories.ProjectRepository, teams repositories.TeamRepository, tasks repositories.TaskRepository) authz.Lookup {
	return &accessLookup{projects: projects, teams: teams, tasks: tasks}
}

func (l *accessLookup) Project(ctx context.Context, id string) (*models.Project, error) {
	return l.projects.FindByID(ctx, id)
}

func (l *accessLookup) Team(ctx context.Context, id string) (*models.Team, error) {
	return l.teams.FindByID(ctx, id)
}

func (l *accessLookup) TasksForProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return l.tasks.ListByProject(ctx, projectID)
}
