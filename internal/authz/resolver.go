// Package authz decides what a user may do with tasks, projects and teams.
//
// Permissions are never stored. They are recomputed on every call from the
// task -> project -> team chain. Every check answers with a plain bool: a
// missing or unreadable document resolves to false.
package authz

import (
	"context"

	"teamtasks/internal/models"
)

// Lookup is the read-only view of the store the resolver follows.
type Lookup interface {
	Project(ctx context.Context, id string) (*models.Project, error)
	Team(ctx context.Context, id string) (*models.Team, error)
	TasksForProject(ctx context.Context, projectID string) ([]models.Task, error)
}

type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// taskChain holds the documents a task's permissions depend on.
type taskChain struct {
	project     *models.Project
	taskTeam    *models.Team
	projectTeam *models.Team
}

func (c taskChain) manages(userID string) bool {
	return CanManageTeam(c.taskTeam, userID) || CanManageTeam(c.projectTeam, userID)
}

func (c taskChain) member(userID string) bool {
	return IsTeamMember(c.taskTeam, userID) || IsTeamMember(c.projectTeam, userID)
}

func (c taskChain) teamScoped(t *models.Task) bool {
	return t.TeamID != "" || (c.project != nil && c.project.TeamID != "")
}

func (r *Resolver) project(ctx context.Context, id string) *models.Project {
	if id == "" {
		return nil
	}
	p, err := r.lookup.Project(ctx, id)
	if err != nil {
		return nil
	}
	return p
}

func (r *Resolver) team(ctx context.Context, id string) *models.Team {
	if id == "" {
		return nil
	}
	t, err := r.lookup.Team(ctx, id)
	if err != nil {
		return nil
	}
	return t
}

func (r *Resolver) chain(ctx context.Context, t *models.Task) taskChain {
	var c taskChain
	c.taskTeam = r.team(ctx, t.TeamID)
	c.project = r.project(ctx, t.ProjectID)
	if c.project != nil && c.project.TeamID != "" {
		if c.project.TeamID == t.TeamID {
			c.projectTeam = c.taskTeam
		} else {
			c.projectTeam = r.team(ctx, c.project.TeamID)
		}
	}
	return c
}

func (r *Resolver) CanViewTask(ctx context.Context, userID string, t *models.Task) bool {
	if t == nil || userID == "" {
		return false
	}
	if t.CreatorID == userID {
		return true
	}
	if t.IsTeamTask() && t.AssigneeID == userID {
		return true
	}
	c := r.chain(ctx, t)
	if c.member(userID) {
		return true
	}
	if p := c.project; p != nil {
		if t.AssigneeID == userID || p.AssigneeID == userID {
			return true
		}
		if projectRole(p, userID) != "" {
			return true
		}
	}
	return false
}

func (r *Resolver) CanEditTask(ctx context.Context, userID string, t *models.Task) bool {
	if t == nil || userID == "" {
		return false
	}
	if t.CreatorID == userID {
		return true
	}
	if t.IsTeamTask() && t.AssigneeID == userID {
		return true
	}
	c := r.chain(ctx, t)
	if c.manages(userID) {
		return true
	}
	if p := c.project; p != nil {
		return t.AssigneeID == userID || p.AssigneeID == userID || isProjectOwner(p, userID)
	}
	return false
}

func (r *Resolver) CanDeleteTask(ctx context.Context, userID string, t *models.Task) bool {
	if t == nil || userID == "" {
		return false
	}
	if t.CreatorID == userID {
		return true
	}
	c := r.chain(ctx, t)
	return c.manages(userID) || isProjectOwner(c.project, userID)
}

// CanRestoreTask mirrors CanDeleteTask.
func (r *Resolver) CanRestoreTask(ctx context.Context, userID string, t *models.Task) bool {
	return r.CanDeleteTask(ctx, userID, t)
}

// CanPermanentlyDeleteTask allows only the creator on personal tasks, and
// team managers or the project owner on team tasks.
func (r *Resolver) CanPermanentlyDeleteTask(ctx context.Context, userID string, t *models.Task) bool {
	if t == nil || userID == "" {
		return false
	}
	c := r.chain(ctx, t)
	if !c.teamScoped(t) {
		return t.CreatorID == userID
	}
	return c.manages(userID) || isProjectOwner(c.project, userID)
}

func (r *Resolver) CanViewProject(ctx context.Context, userID string, p *models.Project) bool {
	if p == nil || userID == "" {
		return false
	}
	if projectRole(p, userID) != "" || p.AssigneeID == userID {
		return true
	}
	return IsTeamMember(r.team(ctx, p.TeamID), userID)
}

func (r *Resolver) CanEditProject(ctx context.Context, userID string, p *models.Project) bool {
	if p == nil || userID == "" {
		return false
	}
	if canContribute(projectRole(p, userID)) || p.AssigneeID == userID {
		return true
	}
	return CanManageTeam(r.team(ctx, p.TeamID), userID)
}

func (r *Resolver) CanDeleteProject(ctx context.Context, userID string, p *models.Project) bool {
	if p == nil || userID == "" {
		return false
	}
	if isProjectOwner(p, userID) {
		return true
	}
	return CanManageTeam(r.team(ctx, p.TeamID), userID)
}

func (r *Resolver) CanRestoreProject(ctx context.Context, userID string, p *models.Project) bool {
	return r.CanDeleteProject(ctx, userID, p)
}

func (r *Resolver) CanPermanentlyDeleteProject(ctx context.Context, userID string, p *models.Project) bool {
	if p == nil || userID == "" {
		return false
	}
	if p.TeamID == "" {
		return p.OwnerID == userID
	}
	return p.OwnerID == userID || CanManageTeam(r.team(ctx, p.TeamID), userID)
}

// VisibleInPersonalMode lists a project in the personal view when the user is
// its effective assignee, is assigned a task in it, or created one of its
// unassigned tasks.
func (r *Resolver) VisibleInPersonalMode(ctx context.Context, userID string, p *models.Project) bool {
	if p == nil || userID == "" {
		return false
	}
	if p.EffectiveAssignee() == userID {
		return true
	}
	tasks, err := r.lookup.TasksForProject(ctx, p.ID)
	if err != nil {
		return false
	}
	for _, t := range tasks {
		if t.IsDeleted {
			continue
		}
		if t.AssigneeID == userID {
			return true
		}
		if t.AssigneeID == "" && t.CreatorID == userID {
			return true
		}
	}
	return false
}
