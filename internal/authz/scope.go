package authz

import (
	"context"
	"sync"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
)

type Mode string

const (
	ModePersonal Mode = "personal"
	ModeTeam     Mode = "team"
)

// Scope is the view a listing is requested for. It is passed explicitly with
// every query.
type Scope struct {
	Mode   Mode   `json:"mode"`
	TeamID string `json:"teamId,omitempty"`
}

func PersonalScope() Scope { return Scope{Mode: ModePersonal} }

func TeamScope(teamID string) Scope { return Scope{Mode: ModeTeam, TeamID: teamID} }

func (s Scope) Validate() error {
	switch s.Mode {
	case ModePersonal:
		return nil
	case ModeTeam:
		if s.TeamID == "" {
			return apperr.Validation("team scope requires a team id")
		}
		return nil
	}
	return apperr.Validation("unknown scope mode %q", s.Mode)
}

// FilterTasks keeps the tasks the user may view inside the scope.
//
// Personal scope holds non-team tasks plus anything explicitly assigned to
// the user. Team scope holds the tasks of that team, directly or through the
// task's project.
func (r *Resolver) FilterTasks(ctx context.Context, userID string, scope Scope, tasks []models.Task) []models.Task {
	cr := r.cached()
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		var keep bool
		switch scope.Mode {
		case ModeTeam:
			keep = cr.taskTeamID(ctx, t) == scope.TeamID && cr.CanViewTask(ctx, userID, t)
		default:
			if t.AssigneeID == userID {
				keep = true
			} else {
				keep = cr.taskTeamID(ctx, t) == "" && cr.CanViewTask(ctx, userID, t)
			}
		}
		if keep {
			out = append(out, *t)
		}
	}
	return out
}

// FilterProjects keeps the projects the user may view inside the scope.
func (r *Resolver) FilterProjects(ctx context.Context, userID string, scope Scope, projects []models.Project) []models.Project {
	cr := r.cached()
	out := make([]models.Project, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		var keep bool
		switch scope.Mode {
		case ModeTeam:
			keep = p.TeamID == scope.TeamID && cr.CanViewProject(ctx, userID, p)
		default:
			if p.TeamID == "" {
				keep = cr.CanViewProject(ctx, userID, p)
			} else {
				keep = cr.VisibleInPersonalMode(ctx, userID, p)
			}
		}
		if keep {
			out = append(out, *p)
		}
	}
	return out
}

func (r *Resolver) taskTeamID(ctx context.Context, t *models.Task) string {
	if t.TeamID != "" {
		return t.TeamID
	}
	if p := r.project(ctx, t.ProjectID); p != nil {
		return p.TeamID
	}
	return ""
}

// cached returns a resolver that memoizes project and team reads for the
// duration of one listing.
func (r *Resolver) cached() *Resolver {
	if _, ok := r.lookup.(*memoLookup); ok {
		return r
	}
	return &Resolver{lookup: &memoLookup{
		Lookup:   r.lookup,
		projects: map[string]*models.Project{},
		teams:    map[string]*models.Team{},
	}}
}

type memoLookup struct {
	Lookup
	mu       sync.Mutex
	projects map[string]*models.Project
	teams    map[string]*models.Team
}

func (m *memoLookup) Project(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	p, ok := m.projects[id]
	m.mu.Unlock()
	if ok {
		if p == nil {
			return nil, apperr.NotFound("project not found")
		}
		return p, nil
	}
	p, err := m.Lookup.Project(ctx, id)
	if err != nil {
		p = nil
	}
	m.mu.Lock()
	m.projects[id] = p
	m.mu.Unlock()
	return p, err
}

func (m *memoLookup) Team(ctx context.Context, id string) (*models.Team, error) {
	m.mu.Lock()
	t, ok := m.teams[id]
	m.mu.Unlock()
	if ok {
		if t == nil {
			return nil, apperr.NotFound("team not found")
		}
		return t, nil
	}
	t, err := m.Lookup.Team(ctx, id)
	if err != nil {
		t = nil
	}
	m.mu.Lock()
	m.teams[id] = t
	m.mu.Unlock()
	return t, err
}
