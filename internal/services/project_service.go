package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/authz"
	"teamtasks/internal/datecheck"
	"teamtasks/internal/models"
	"teamtasks/internal/pdf"
	"teamtasks/internal/repositories"
)

type ProjectInput struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	TeamID      string                 `json:"teamId"`
	AssigneeID  string                 `json:"assigneeId"`
	Members     []models.ProjectMember `json:"members"`
	Status      models.ProjectStatus   `json:"status"`
	StartDate   *time.Time             `json:"startDate"`
	EndDate     *time.Time             `json:"endDate"`
}

type ProjectDateCheck struct {
	datecheck.Result
	NeedsConfirmation bool            `json:"needsConfirmation"`
	Project           *models.Project `json:"project"`
}

// TaskLookup reads the tasks of a project.
type TaskLookup interface {
	TasksForProject(ctx context.Context, projectID string) ([]models.Task, error)
}

type ProjectService interface {
	ProjectRecalculator

	Create(ctx context.Context, actor Actor, in ProjectInput) (*models.Project, error)
	Get(ctx context.Context, actor Actor, id string) (*models.Project, error)
	List(ctx context.Context, actor Actor, scope authz.Scope) ([]models.Project, error)
	Update(ctx context.Context, actor Actor, id string, patch models.ProjectPatch) (*models.Project, error)
	AddMember(ctx context.Context, actor Actor, id, userID string, role models.ProjectRole) (*models.Project, error)
	RemoveMember(ctx context.Context, actor Actor, id, userID string) (*models.Project, error)
	// Complete completes every open task and snapshots the task ids.
	Complete(ctx context.Context, actor Actor, id string) (*models.Project, error)

	Delete(ctx context.Context, actor Actor, id string, withTasks bool) (*models.Project, error)
	Restore(ctx context.Context, actor Actor, id string, withTasks bool) (*models.Project, error)
	PermanentlyDelete(ctx context.Context, actor Actor, id string) error
	ListTrash(ctx context.Context, actor Actor) ([]models.Project, error)

	RunDateCheck(ctx context.Context, actor Actor, id string) (*ProjectDateCheck, error)
	SweepDates(ctx context.Context) (int, error)
	Report(ctx context.Context, actor Actor, id string) ([]byte, error)
}

type projectService struct {
	repo     repositories.ProjectRepository
	tasks    repositories.TaskRepository
	lookup   TaskLookup
	teams    repositories.TeamRepository
	users    repositories.UserRepository
	access   *authz.Resolver
	notifier Notifier
	reports  pdf.Generator
	opts     TaskOptions
	log      zerolog.Logger
	now      Clock
}

func NewProjectService(repo repositories.ProjectRepository, tasks repositories.TaskRepository, lookup TaskLookup,
	teams repositories.TeamRepository, users repositories.UserRepository, access *authz.Resolver,
	notifier Notifier, reports pdf.Generator, opts TaskOptions, log zerolog.Logger) ProjectService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &projectService{
		repo:     repo,
		tasks:    tasks,
		lookup:   lookup,
		teams:    teams,
		users:    users,
		access:   access,
		notifier: notifier,
		reports:  reports,
		opts:     opts,
		log:      log,
		now:      systemClock,
	}
}

func (s *projectService) clock() time.Time {
	return s.now().In(s.opts.Location)
}

func (s *projectService) Create(ctx context.Context, actor Actor, in ProjectInput) (*models.Project, error) {
	now := s.clock()
	p := &models.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		OwnerID:     actor.ID,
		TeamID:      in.TeamID,
		AssigneeID:  in.AssigneeID,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = models.ProjectNotStarted
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	var team *models.Team
	if p.TeamID != "" {
		t, err := s.teams.FindByID(ctx, p.TeamID)
		if err != nil {
			return nil, err
		}
		if t.IsDeleted {
			return nil, apperr.Validation("team %q is in the trash", t.Name)
		}
		switch authz.TeamRole(t, actor.ID) {
		case "":
			return nil, apperr.PermissionDenied("you are not a member of this team")
		case models.TeamRoleViewer:
			return nil, apperr.PermissionDenied("viewers cannot create team projects")
		}
		team = t
	}
	for _, m := range in.Members {
		if m.UserID == actor.ID {
			continue
		}
		if err := s.checkMember(ctx, team, m.UserID, m.Role); err != nil {
			return nil, err
		}
		p.Members = upsertMember(p.Members, m.UserID, m.Role)
	}
	if err := s.checkAssignee(p, team); err != nil {
		return nil, err
	}

	if err := s.repo.Store(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", p.ID).Str("user_id", actor.ID).Msg("[project][create] stored")
	for _, m := range p.Members {
		s.notifyMemberAdded(ctx, actor, p, m.UserID)
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, actor Actor, id string) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanViewProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you do not have access to this project")
	}
	s.applyDateCheck(ctx, p, false)
	return p, nil
}

// List scans the live projects; membership lives inside the documents, so
// visibility is decided by the resolver.
func (s *projectService) List(ctx context.Context, actor Actor, scope authz.Scope) ([]models.Project, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	live := false
	filter := models.ProjectFilter{IsDeleted: &live}
	if scope.Mode == authz.ModeTeam {
		team, err := s.teams.FindByID(ctx, scope.TeamID)
		if err != nil {
			return nil, err
		}
		if !authz.IsTeamMember(team, actor.ID) {
			return nil, apperr.PermissionDenied("you are not a member of this team")
		}
		filter.TeamID = &scope.TeamID
	}
	all, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	visible := s.access.FilterProjects(ctx, actor.ID, scope, all)
	for i := range visible {
		s.applyDateCheck(ctx, &visible[i], false)
	}
	return visible, nil
}

func (s *projectService) Update(ctx context.Context, actor Actor, id string, patch models.ProjectPatch) (*models.Project, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	prevAssignee := p.AssigneeID

	patch.Name.Apply(&p.Name)
	p.Name = strings.TrimSpace(p.Name)
	patch.Description.Apply(&p.Description)
	patch.AssigneeID.Apply(&p.AssigneeID)
	patch.StartDate.ApplyPtr(&p.StartDate)
	patch.EndDate.ApplyPtr(&p.EndDate)
	completing, reopening := false, false
	if patch.Status.IsSet() {
		to := patch.Status.Value()
		if !to.Valid() {
			return nil, apperr.Validation("unknown project status %q", to)
		}
		if !canTransition(p.Status, to, ProjectTransitions) {
			return nil, apperr.Validation("cannot change project status from %s to %s", p.Status, to)
		}
		completing = to == models.ProjectCompleted && p.Status != models.ProjectCompleted
		reopening = p.Status == models.ProjectCompleted && to != models.ProjectCompleted
		p.Status = to
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if p.AssigneeID != prevAssignee {
		team, err := s.projectTeam(ctx, p)
		if err != nil {
			return nil, err
		}
		if err := s.checkAssignee(p, team); err != nil {
			return nil, err
		}
	}

	if completing {
		if err := s.completeTasks(ctx, p, now); err != nil {
			return nil, err
		}
	}
	if reopening {
		if err := s.reopenTasks(ctx, p, now); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if completing {
		s.notifyCompleted(ctx, actor, p)
		return s.RecalculateCompletion(ctx, p.ID)
	}
	if reopening {
		return s.RecalculateCompletion(ctx, p.ID)
	}
	if p.AssigneeID != prevAssignee && p.AssigneeID != "" && p.AssigneeID != actor.ID {
		s.notifyMemberAdded(ctx, actor, p, p.AssigneeID)
	}
	return p, nil
}

func (s *projectService) AddMember(ctx context.Context, actor Actor, id, userID string, role models.ProjectRole) (*models.Project, error) {
	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if userID == p.OwnerID {
		return nil, apperr.Validation("the owner is already part of the project")
	}
	team, err := s.projectTeam(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.checkMember(ctx, team, userID, role); err != nil {
		return nil, err
	}
	_, existed := p.MemberRole(userID)
	p.Members = upsertMember(p.Members, userID, role)
	p.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if !existed {
		s.notifyMemberAdded(ctx, actor, p, userID)
	}
	return p, nil
}

func (s *projectService) RemoveMember(ctx context.Context, actor Actor, id, userID string) (*models.Project, error) {
	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if userID == p.OwnerID {
		return nil, apperr.Validation("the project owner cannot be removed")
	}
	idx := -1
	for i, m := range p.Members {
		if m.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("member not found")
	}
	p.Members = append(p.Members[:idx], p.Members[idx+1:]...)
	if p.AssigneeID == userID {
		p.AssigneeID = ""
	}
	p.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Complete(ctx context.Context, actor Actor, id string) (*models.Project, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.ProjectCompleted {
		return nil, apperr.StaleState("project is already completed")
	}
	now := s.clock()
	if err := s.completeTasks(ctx, p, now); err != nil {
		return nil, err
	}
	p.Status = models.ProjectCompleted
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.notifyCompleted(ctx, actor, p)
	return s.RecalculateCompletion(ctx, p.ID)
}

// completeTasks completes the open live tasks and records their ids in
// p.ClosedTaskIDs. p itself is not written.
func (s *projectService) completeTasks(ctx context.Context, p *models.Project, now time.Time) error {
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	p.ClosedTaskIDs = nil
	for i := range tasks {
		t := &tasks[i]
		if t.IsDeleted || t.Status == models.StatusCompleted {
			continue
		}
		p.ClosedTaskIDs = append(p.ClosedTaskIDs, t.ID)
		t.Status = models.StatusCompleted
		t.CompletedAt = &now
		t.UpdatedAt = now
		if err := s.tasks.Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// reopenTasks undoes completeTasks for the tasks that are still completed,
// live and in the project. p itself is not written.
func (s *projectService) reopenTasks(ctx context.Context, p *models.Project, now time.Time) error {
	for _, id := range p.ClosedTaskIDs {
		t, err := s.tasks.FindByID(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if t.IsDeleted || t.ProjectID != p.ID || t.Status != models.StatusCompleted {
			continue
		}
		t.Status = models.StatusNotStarted
		if len(t.WorkSessions) > 0 {
			t.Status = models.StatusInProgress
		}
		t.CompletedAt = nil
		t.DateCheckedAt = nil
		t.UpdatedAt = now
		if err := s.tasks.Update(ctx, t); err != nil {
			return err
		}
	}
	s.log.Info().Str("project_id", p.ID).Int("tasks", len(p.ClosedTaskIDs)).Msg("[project][reopen] tasks reopened")
	p.ClosedTaskIDs = nil
	return nil
}

// Delete moves the project to the trash. Its tasks go along when withTasks
// is set and are detached from it otherwise; either way their ids are kept
// for Restore.
func (s *projectService) Delete(ctx context.Context, actor Actor, id string, withTasks bool) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted {
		return nil, apperr.StaleState("project is already in the trash")
	}
	if !s.access.CanDeleteProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you cannot delete this project")
	}

	now := s.clock()
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.OriginalTaskIDs = nil
	for i := range tasks {
		t := &tasks[i]
		if t.IsDeleted {
			continue
		}
		p.OriginalTaskIDs = append(p.OriginalTaskIDs, t.ID)
		if withTasks {
			t.StatusBeforeDeletion = t.Status
			t.IsDeleted = true
			t.DeletedAt = &now
			t.DeletedBy = actor.ID
		} else {
			t.ProjectID = ""
		}
		t.UpdatedAt = now
		if err := s.tasks.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	p.StatusBeforeDeletion = p.Status
	p.IsDeleted = true
	p.DeletedAt = &now
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", p.ID).Bool("with_tasks", withTasks).Int("tasks", len(p.OriginalTaskIDs)).
		Msg("[project][delete] moved to trash")
	return p, nil
}

// Restore brings the project back. With withTasks its snapshot tasks are
// restored or re-attached.
func (s *projectService) Restore(ctx context.Context, actor Actor, id string, withTasks bool) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsDeleted {
		return nil, apperr.StaleState("project is not in the trash")
	}
	if !s.access.CanRestoreProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you cannot restore this project")
	}

	now := s.clock()
	if withTasks {
		for _, taskID := range p.OriginalTaskIDs {
			t, err := s.tasks.FindByID(ctx, taskID)
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			switch {
			case t.IsDeleted && t.ProjectID == p.ID:
				restoreTask(t, now)
			case !t.IsDeleted && t.ProjectID == "":
				t.ProjectID = p.ID
				t.UpdatedAt = now
			default:
				continue
			}
			if err := s.tasks.Update(ctx, t); err != nil {
				return nil, err
			}
		}
	}

	p.Status = p.StatusBeforeDeletion
	if p.Status == "" {
		p.Status = models.ProjectNotStarted
	}
	p.IsDeleted = false
	p.DeletedAt = nil
	p.StatusBeforeDeletion = ""
	p.OriginalTaskIDs = nil
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.RecalculateCompletion(ctx, p.ID)
}

func (s *projectService) PermanentlyDelete(ctx context.Context, actor Actor, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.access.CanPermanentlyDeleteProject(ctx, actor.ID, p) {
		return apperr.PermissionDenied("you cannot permanently delete this project")
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := s.tasks.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.log.Info().Str("project_id", p.ID).Int("tasks", len(tasks)).Msg("[project][purge] deleted")
	return nil
}

func (s *projectService) ListTrash(ctx context.Context, actor Actor) ([]models.Project, error) {
	deleted := true
	all, err := s.repo.FindAll(ctx, models.ProjectFilter{IsDeleted: &deleted})
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for i := range all {
		if s.access.CanRestoreProject(ctx, actor.ID, &all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// RecalculateCompletion recounts the live tasks. Writing only on change
// makes repeated calls cheap.
func (s *projectService) RecalculateCompletion(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.lookup.TasksForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	total, completed := 0, 0
	for _, t := range tasks {
		if t.IsDeleted {
			continue
		}
		total++
		if t.Status == models.StatusCompleted {
			completed++
		}
	}
	rate := 0
	if total > 0 {
		rate = completed * 100 / total
	}
	if p.TotalTasks == total && p.CompletedTasks == completed && p.CompletionRate == rate {
		return p, nil
	}
	p.TotalTasks, p.CompletedTasks, p.CompletionRate = total, completed, rate
	p.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) RunDateCheck(ctx context.Context, actor Actor, id string) (*ProjectDateCheck, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanViewProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you do not have access to this project")
	}
	res, _ := s.applyDateCheck(ctx, p, true)
	return &ProjectDateCheck{
		Result:            res,
		NeedsConfirmation: res.StartElapsed && !s.opts.AutoStart,
		Project:           p,
	}, nil
}

func (s *projectService) SweepDates(ctx context.Context) (int, error) {
	live := false
	projects, err := s.repo.FindAll(ctx, models.ProjectFilter{IsDeleted: &live})
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range projects {
		if _, stamped := s.applyDateCheck(ctx, &projects[i], false); stamped {
			changed++
		}
	}
	return changed, nil
}

func (s *projectService) Report(ctx context.Context, actor Actor, id string) ([]byte, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.lookup.TasksForProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.reports.ProjectReport(pdf.ProjectReportData{
		Project:     *p,
		Tasks:       tasks,
		GeneratedAt: s.clock(),
		GeneratedBy: actor.Name,
	})
}

// applyDateCheck starts a project whose start date passed and warns its
// assignee once a day while it is past its end date. Like the task check it
// leaves an unconfirmed start for the interactive check.
func (s *projectService) applyDateCheck(ctx context.Context, p *models.Project, prompted bool) (datecheck.Result, bool) {
	if p.IsDeleted {
		return datecheck.Result{}, false
	}
	now := s.clock()
	res := datecheck.CheckProject(*p, now)
	if !res.MarkChecked() {
		return res, false
	}
	if awaitsConfirmation(res, s.opts.AutoStart) && !prompted {
		return res, false
	}
	if res.StartElapsed && s.opts.AutoStart {
		p.Status = models.ProjectInProgress
	}
	p.DateCheckedAt = &now
	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("project_id", p.ID).Msg("[project][datecheck] persist failed")
		return res, false
	}
	if res.Overdue {
		s.notifier.Notify(ctx, models.Notification{
			UserID:    p.EffectiveAssignee(),
			Type:      models.NotifyProjectOverdue,
			Title:     "Project overdue",
			Message:   fmt.Sprintf("Project %q is past its end date", p.Name),
			ProjectID: p.ID,
			TeamID:    p.TeamID,
		})
	}
	return res, true
}

func (s *projectService) editable(ctx context.Context, actor Actor, id string) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted {
		return nil, apperr.StaleState("project is in the trash")
	}
	if !s.access.CanEditProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you cannot edit this project")
	}
	return p, nil
}

// managed loads a live project whose membership the actor controls: its
// owner or a manager of its team.
func (s *projectService) managed(ctx context.Context, actor Actor, id string) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted {
		return nil, apperr.StaleState("project is in the trash")
	}
	if !s.access.CanDeleteProject(ctx, actor.ID, p) {
		return nil, apperr.PermissionDenied("you cannot manage the members of this project")
	}
	return p, nil
}

func (s *projectService) projectTeam(ctx context.Context, p *models.Project) (*models.Team, error) {
	if p.TeamID == "" {
		return nil, nil
	}
	return s.teams.FindByID(ctx, p.TeamID)
}

func (s *projectService) checkMember(ctx context.Context, team *models.Team, userID string, role models.ProjectRole) error {
	if !role.Valid() {
		return apperr.Validation("unknown project role %q", role)
	}
	if team != nil {
		if !authz.IsTeamMember(team, userID) {
			return apperr.Validation("user is not a member of the team")
		}
		return nil
	}
	_, err := s.users.GetByID(ctx, userID)
	return err
}

func (s *projectService) checkAssignee(p *models.Project, team *models.Team) error {
	a := p.AssigneeID
	if a == "" || a == p.OwnerID {
		return nil
	}
	if team != nil {
		if !authz.IsTeamMember(team, a) {
			return apperr.Validation("assignee is not a member of the team")
		}
		return nil
	}
	if _, ok := p.MemberRole(a); !ok {
		return apperr.Validation("assignee is not a member of the project")
	}
	return nil
}

func (s *projectService) notifyMemberAdded(ctx context.Context, actor Actor, p *models.Project, userID string) {
	if userID == actor.ID {
		return
	}
	s.notifier.Notify(ctx, models.Notification{
		UserID:    userID,
		Type:      models.NotifyProjectAdded,
		Title:     "Added to project",
		Message:   fmt.Sprintf("%s added you to %q", actor.Name, p.Name),
		ProjectID: p.ID,
		TeamID:    p.TeamID,
	})
}

func (s *projectService) notifyCompleted(ctx context.Context, actor Actor, p *models.Project) {
	ids := []string{p.OwnerID, p.AssigneeID}
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	for _, userID := range uniqueExcept(actor.ID, ids...) {
		s.notifier.Notify(ctx, models.Notification{
			UserID:    userID,
			Type:      models.NotifyProjectCompleted,
			Title:     "Project completed",
			Message:   fmt.Sprintf("%s completed %q", actor.Name, p.Name),
			ProjectID: p.ID,
			TeamID:    p.TeamID,
		})
	}
}

func validateProject(p *models.Project) error {
	if p.Name == "" {
		return apperr.Validation("project name is required")
	}
	if !p.Status.Valid() {
		return apperr.Validation("unknown project status %q", p.Status)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return apperr.Validation("end date must not be before the start date")
	}
	return nil
}

func upsertMember(members []models.ProjectMember, userID string, role models.ProjectRole) []models.ProjectMember {
	for i := range members {
		if members[i].UserID == userID {
			members[i].Role = role
			return members
		}
	}
	return append(members, models.ProjectMember{UserID: userID, Role: role})
}
