// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/authz"
	"teamtasks/internal/datecheck"
	"teamtasks/internal/models"
	"teamtasks/internal/prioritize"
	"teamtasks/internal/recurrence"
	"teamtasks/internal/repositories"
)

// TaskInput carries the fields of a new task.
type TaskInput struct {
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Type              string                `json:"type"`
	ProjectID         string                `json:"projectId"`
	TeamID            string                `json:"teamId"`
	AssigneeID        string                `json:"assigneeId"`
	Priority          models.TaskPriority   `json:"priority"`
	Status            models.TaskStatus     `json:"status"`
	StartDate         time.Time             `json:"startDate"`
	EndDate           time.Time             `json:"endDate"`
	Subtasks          []models.Subtask      `json:"subtasks"`
	Reminders         []models.Reminder     `json:"reminders"`
	Recurrence        models.RecurrenceType `json:"recurrence"`
	RecurrenceEndDate *time.Time            `json:"recurrenceEndDate"`
}

// TaskDateCheck is the outcome of an explicit date check.
type TaskDateCheck struct {
	datecheck.Result
	// NeedsConfirmation is set when the start date passed but automatic
	// starting is disabled.
	NeedsConfirmation bool         `json:"needsConfirmation"`
	Task              *models.Task `json:"task"`
}

// ProjectRecalculator refreshes a project's completion counters after its
// tasks changed.
type ProjectRecalculator interface {
	RecalculateCompletion(ctx context.Context, projectID string) (*models.Project, error)
}

type TaskOptions struct {
	AutoStart bool
	Location  *time.Location
}

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, actor Actor, in TaskInput) (*models.Task, error)
	Get(ctx context.Context, actor Actor, id string) (*models.Task, error)
	List(ctx context.Context, actor Actor, scope authz.Scope) ([]models.Task, error)
	Update(ctx context.Context, actor Actor, id string, patch models.TaskPatch) (*models.Task, error)
	ChangeStatus(ctx context.Context, actor Actor, id string, to models.TaskStatus) (*models.Task, error)

	Delete(ctx context.Context, actor Actor, id string) (*models.Task, error)
	Restore(ctx context.Context, actor Actor, id string) (*models.Task, error)
	PermanentlyDelete(ctx context.Context, actor Actor, id string) error
	ListTrash(ctx context.Context, actor Actor) ([]models.Task, error)

	AddComment(ctx context.Context, actor Actor, id, text string) (*models.Task, error)
	ToggleSubtask(ctx context.Context, actor Actor, id, subtaskID string) (*models.Task, error)
	StartWorkSession(ctx context.Context, actor Actor, id string) (*models.Task, error)
	EndWorkSession(ctx context.Context, actor Actor, id string, breakMinutes int) (*models.Task, error)
	EditWorkSession(ctx context.Context, actor Actor, id, sessionID string, edit WorkSessionEdit) (*models.Task, error)

	// CheckRecurrences rolls every open-ended series of the user forward by
	// at most one instance and returns the instances it created.
	CheckRecurrences(ctx context.Context, actor Actor) ([]models.Task, error)
	RunDateCheck(ctx context.Context, actor Actor, id string) (*TaskDateCheck, error)
	// SweepDates runs the date check over every live task and returns how
	// many were changed.
	SweepDates(ctx context.Context) (int, error)
	NextTasks(ctx context.Context, actor Actor) ([]prioritize.Ranked, error)
	Categories(ctx context.Context, actor Actor) (prioritize.Categories, error)
}

type taskService struct {
	repo     repositories.TaskRepository
	projects repositories.ProjectRepository
	teams    repositories.TeamRepository
	access   *authz.Resolver
	notifier Notifier
	recalc   ProjectRecalculator
	opts     TaskOptions
	log      zerolog.Logger
	now      Clock
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository, projects repositories.ProjectRepository,
	teams repositories.TeamRepository, access *authz.Resolver, notifier Notifier,
	recalc ProjectRecalculator, opts TaskOptions, log zerolog.Logger) TaskService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &taskService{
		repo:     repo,
		projects: projects,
		teams:    teams,
		access:   access,
		notifier: notifier,
		recalc:   recalc,
		opts:     opts,
		log:      log,
		now:      systemClock,
	}
}

// clock returns the current time in the configured zone, which defines
// calendar days.
func (s *taskService) clock() time.Time {
	return s.now().In(s.opts.Location)
}

func (s *taskService) Create(ctx context.Context, actor Actor, in TaskInput) (*models.Task, error) {
	now := s.clock()
	task := &models.Task{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Type:              in.Type,
		ProjectID:         in.ProjectID,
		TeamID:            in.TeamID,
		AssigneeID:        in.AssigneeID,
		CreatorID:         actor.ID,
		CreatorName:       actor.Name,
		Status:            in.Status,
		Priority:          in.Priority,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Subtasks:          in.Subtasks,
		Reminders:         in.Reminders,
		Recurrence:        in.Recurrence,
		RecurrenceEndDate: in.RecurrenceEndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if task.Status == "" {
		task.Status = models.StatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	if task.Recurrence == "" {
		task.Recurrence = models.RecurrenceNone
	}
	if task.EndDate.IsZero() {
		task.EndDate = task.StartDate
	}
	if task.Status == models.StatusOverdue {
		return nil, apperr.Validation("overdue status is set automatically")
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if err := s.resolveOwnership(ctx, actor, task); err != nil {
		return nil, err
	}
	if task.Status == models.StatusCompleted {
		task.CompletedAt = &now
	}
	if !task.Recurrence.IsRecurring() {
		task.RecurrenceEndDate = nil
	}
	task.IsRecurrenceParent = task.Recurrence.IsRecurring()
	normalizeItems(task)

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info().Str("task_id", task.ID).Str("user_id", actor.ID).Msg("[task][create] stored")

	if task.IsRecurrenceParent && task.RecurrenceEndDate != nil {
		if _, err := s.generateBounded(ctx, task, now); err != nil {
			return nil, err
		}
	}
	s.recalculate(ctx, task.ProjectID)
	if task.AssigneeID != actor.ID {
		s.notifyAssigned(ctx, actor, task)
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanViewTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you do not have access to this task")
	}
	s.applyDateCheck(ctx, task, false)
	return task, nil
}

func (s *taskService) List(ctx context.Context, actor Actor, scope authz.Scope) ([]models.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	live := false
	var lists [][]models.Task
	if scope.Mode == authz.ModeTeam {
		team, err := s.teams.FindByID(ctx, scope.TeamID)
		if err != nil {
			return nil, err
		}
		if !authz.IsTeamMember(team, actor.ID) {
			return nil, apperr.PermissionDenied("you are not a member of this team")
		}
		tasks, err := s.repo.FindAll(ctx, models.TaskFilter{TeamID: &scope.TeamID, IsDeleted: &live})
		if err != nil {
			return nil, err
		}
		lists = append(lists, tasks)
	} else {
		own, err := s.repo.FindAll(ctx, models.TaskFilter{CreatorID: &actor.ID, IsDeleted: &live})
		if err != nil {
			return nil, err
		}
		assigned, err := s.repo.FindAll(ctx, models.TaskFilter{AssigneeID: &actor.ID, IsDeleted: &live})
		if err != nil {
			return nil, err
		}
		lists = append(lists, own, assigned)
	}

	visible := s.access.FilterTasks(ctx, actor.ID, scope, mergeTasks(lists...))
	for i := range visible {
		s.applyDateCheck(ctx, &visible[i], false)
	}
	return visible, nil
}

func (s *taskService) Update(ctx context.Context, actor Actor, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	isInstance := task.ParentTaskID != ""
	if isInstance && (!patch.Recurrence.IsKeep() || !patch.RecurrenceEndDate.IsKeep()) {
		return nil, apperr.Validation("recurrence is configured on the series, not on a single instance")
	}

	now := s.clock()
	prev := recurrence.SettingsOf(*task)
	prevProject, prevAssignee := task.ProjectID, task.AssigneeID
	prevStart, prevEnd := task.StartDate, task.EndDate

	patch.Title.Apply(&task.Title)
	task.Title = strings.TrimSpace(task.Title)
	patch.Description.Apply(&task.Description)
	patch.Type.Apply(&task.Type)
	patch.Priority.Apply(&task.Priority)
	patch.StartDate.Apply(&task.StartDate)
	patch.EndDate.Apply(&task.EndDate)
	patch.Subtasks.Apply(&task.Subtasks)
	patch.Reminders.Apply(&task.Reminders)
	patch.AssigneeID.Apply(&task.AssigneeID)
	patch.ProjectID.Apply(&task.ProjectID)
	patch.Recurrence.Apply(&task.Recurrence)
	patch.RecurrenceEndDate.ApplyPtr(&task.RecurrenceEndDate)

	if patch.Status.IsSet() {
		if err := changeStatus(task, patch.Status.Value(), now); err != nil {
			return nil, err
		}
	} else if task.Status == models.StatusOverdue && !task.EndDate.Equal(prevEnd) {
		s.reopenIfExtended(task, now)
	}
	if !isInstance {
		if task.Recurrence == "" {
			task.Recurrence = models.RecurrenceNone
		}
		if !task.Recurrence.IsRecurring() {
			task.RecurrenceEndDate = nil
		}
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if task.ProjectID != prevProject || task.AssigneeID != prevAssignee {
		if err := s.resolveOwnership(ctx, actor, task); err != nil {
			return nil, err
		}
	}
	if !task.StartDate.Equal(prevStart) || !task.EndDate.Equal(prevEnd) {
		rearmRelativeReminders(task)
	}
	normalizeItems(task)

	var tr recurrence.Transition
	next := recurrence.SettingsOf(*task)
	if !isInstance {
		tr = recurrence.Classify(prev, next)
		switch tr {
		case recurrence.Stop:
			task.IsRecurrenceParent = false
		case recurrence.Start:
			task.IsRecurrenceParent = true
			task.RecurrenceInstance = 0
		}
	}
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	if tr != recurrence.Unchanged {
		s.log.Info().Str("task_id", task.ID).Stringer("transition", tr).Msg("[task][update] recurrence changed")
		if err := s.applyTransition(ctx, task, tr, prev, next, now); err != nil {
			return nil, err
		}
	}

	s.recalculate(ctx, prevProject)
	if task.ProjectID != prevProject {
		s.recalculate(ctx, task.ProjectID)
	}
	switch {
	case task.AssigneeID != prevAssignee && task.AssigneeID != actor.ID:
		s.notifyAssigned(ctx, actor, task)
	case task.EffectiveAssignee() != actor.ID:
		s.notifier.Notify(ctx, models.Notification{
			UserID:  task.EffectiveAssignee(),
			Type:    models.NotifyTaskUpdated,
			Title:   "Task updated",
			Message: fmt.Sprintf("%s updated %q", actor.Name, task.Title),
			TaskID:  task.ID,
		})
	}
	return task, nil
}

// reopenIfExtended lifts the overdue status once the end date moved past now.
// The task goes back to in_progress when work was logged or the start was
// applied automatically, else to not_started; the cleared dateCheckedAt lets
// the next check handle the start again.
func (s *taskService) reopenIfExtended(task *models.Task, now time.Time) {
	if now.After(datecheck.EffectiveEnd(task.EndDate.In(now.Location()))) {
		return
	}
	started := !now.Before(datecheck.EffectiveStart(task.StartDate.In(now.Location())))
	if len(task.WorkSessions) > 0 || (s.opts.AutoStart && started) {
		task.Status = models.StatusInProgress
	} else {
		task.Status = models.StatusNotStarted
	}
	task.DateCheckedAt = nil
	s.log.Info().Str("task_id", task.ID).Str("status", string(task.Status)).Msg("[task][update] deadline extended")
}

// applyTransition removes the children a recurrence change invalidates and
// generates the instances of the new configuration.
func (s *taskService) applyTransition(ctx context.Context, task *models.Task, tr recurrence.Transition,
	prev, next recurrence.Settings, now time.Time) error {
	if tr == recurrence.Start {
		_, err := s.generate(ctx, task, now)
		return err
	}

	children, err := s.repo.ListChildren(ctx, task.ID)
	if err != nil {
		return err
	}
	stale := recurrence.StaleChildren(tr, children, next, now)
	removed := make(map[string]bool, len(stale))
	for _, c := range stale {
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return err
		}
		removed[c.ID] = true
	}
	remaining := slices.DeleteFunc(children, func(c models.Task) bool { return removed[c.ID] })

	switch tr {
	case recurrence.ChangeUnit:
		if task.RecurrenceEndDate != nil {
			_, err := s.planBounded(ctx, task, remaining, now)
			return err
		}
		child, ok := recurrence.Restart(*task, remaining, now)
		if !ok {
			return nil
		}
		return s.storeInstance(ctx, &child, now)
	case recurrence.ChangeEndDate:
		if recurrence.Extends(prev, next) {
			_, err := s.planBounded(ctx, task, remaining, now)
			return err
		}
	}
	return nil
}

// generate creates the instances a series needs right now: the whole bounded
// window, or the next rolling instance.
func (s *taskService) generate(ctx context.Context, parent *models.Task, now time.Time) ([]models.Task, error) {
	if parent.RecurrenceEndDate != nil {
		return s.generateBounded(ctx, parent, now)
	}
	child, err := s.rollOne(ctx, parent, now)
	if err != nil || child == nil {
		return nil, err
	}
	return []models.Task{*child}, nil
}

func (s *taskService) generateBounded(ctx context.Context, parent *models.Task, now time.Time) ([]models.Task, error) {
	existing, err := s.repo.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	return s.planBounded(ctx, parent, existing, now)
}

// planBounded stores children one by one; a failure leaves the ones already
// written in place.
func (s *taskService) planBounded(ctx context.Context, parent *models.Task, existing []models.Task, now time.Time) ([]models.Task, error) {
	plan, err := recurrence.PlanBounded(*parent, existing, now)
	if err != nil {
		return nil, err
	}
	for i := range plan {
		if err := s.storeInstance(ctx, &plan[i], now); err != nil {
			return plan[:i], err
		}
	}
	s.log.Info().Str("task_id", parent.ID).Int("created", len(plan)).Msg("[task][recurrence] bounded generation")
	return plan, nil
}

func (s *taskService) rollOne(ctx context.Context, parent *models.Task, now time.Time) (*models.Task, error) {
	children, err := s.repo.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	child, ok := recurrence.NextRolling(*parent, children, now)
	if !ok {
		return nil, nil
	}
	if err := s.storeInstance(ctx, &child, now); err != nil {
		return nil, err
	}
	return &child, nil
}

func (s *taskService) storeInstance(ctx context.Context, child *models.Task, now time.Time) error {
	child.CreatedAt = now
	child.UpdatedAt = now
	if err := s.repo.Store(ctx, child); err != nil {
		return fmt.Errorf("store instance %d: %w", child.RecurrenceInstance, err)
	}
	return nil
}

func (s *taskService) ChangeStatus(ctx context.Context, actor Actor, id string, to models.TaskStatus) (*models.Task, error) {
	task, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := changeStatus(task, to, now); err != nil {
		return nil, err
	}
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.recalculate(ctx, task.ProjectID)
	if to == models.StatusCompleted && task.CreatorID != actor.ID {
		s.notifier.Notify(ctx, models.Notification{
			UserID:  task.CreatorID,
			Type:    models.NotifyTaskCompleted,
			Title:   "Task completed",
			Message: fmt.Sprintf("%s completed %q", actor.Name, task.Title),
			TaskID:  task.ID,
		})
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is already in the trash")
	}
	if !s.access.CanDeleteTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot delete this task")
	}

	now := s.clock()
	task.StatusBeforeDeletion = task.Status
	task.IsDeleted = true
	task.DeletedAt = &now
	task.DeletedBy = actor.ID
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	if task.IsRecurrenceParent {
		if err := s.deleteChildren(ctx, task.ID); err != nil {
			return nil, err
		}
	}
	s.recalculate(ctx, task.ProjectID)
	if assignee := task.EffectiveAssignee(); assignee != actor.ID {
		s.notifier.Notify(ctx, models.Notification{
			UserID:  assignee,
			Type:    models.NotifyTaskDeleted,
			Title:   "Task deleted",
			Message: fmt.Sprintf("%s moved %q to the trash", actor.Name, task.Title),
			TaskID:  task.ID,
		})
	}
	return task, nil
}

func (s *taskService) Restore(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsDeleted {
		return nil, apperr.StaleState("task is not in the trash")
	}
	if !s.access.CanRestoreTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot restore this task")
	}

	now := s.clock()
	restoreTask(task, now)
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	if task.IsRecurrenceParent {
		if _, err := s.generate(ctx, task, now); err != nil {
			return nil, err
		}
	}
	s.recalculate(ctx, task.ProjectID)
	return task, nil
}

func (s *taskService) PermanentlyDelete(ctx context.Context, actor Actor, id string) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.access.CanPermanentlyDeleteTask(ctx, actor.ID, task) {
		return apperr.PermissionDenied("you cannot permanently delete this task")
	}
	if task.IsRecurrenceParent {
		if err := s.deleteChildren(ctx, task.ID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, task.ID); err != nil {
		return err
	}
	s.log.Info().Str("task_id", task.ID).Str("user_id", actor.ID).Msg("[task][purge] deleted")
	s.recalculate(ctx, task.ProjectID)
	return nil
}

// ListTrash returns the user's own deleted tasks and those of teams they
// manage.
func (s *taskService) ListTrash(ctx context.Context, actor Actor) ([]models.Task, error) {
	deleted := true
	own, err := s.repo.FindAll(ctx, models.TaskFilter{CreatorID: &actor.ID, IsDeleted: &deleted})
	if err != nil {
		return nil, err
	}
	lists := [][]models.Task{own}
	teams, err := s.teams.ListForUser(ctx, actor.ID, false)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if !authz.CanManageTeam(&teams[i], actor.ID) {
			continue
		}
		tasks, err := s.repo.FindAll(ctx, models.TaskFilter{TeamID: &teams[i].ID, IsDeleted: &deleted})
		if err != nil {
			return nil, err
		}
		lists = append(lists, tasks)
	}
	return slices.DeleteFunc(mergeTasks(lists...), func(t models.Task) bool {
		return !s.access.CanRestoreTask(ctx, actor.ID, &t)
	}), nil
}

func (s *taskService) CheckRecurrences(ctx context.Context, actor Actor) ([]models.Task, error) {
	parent, live := true, false
	own, err := s.repo.FindAll(ctx, models.TaskFilter{CreatorID: &actor.ID, IsRecurrenceParent: &parent, IsDeleted: &live})
	if err != nil {
		return nil, err
	}
	assigned, err := s.repo.FindAll(ctx, models.TaskFilter{AssigneeID: &actor.ID, IsRecurrenceParent: &parent, IsDeleted: &live})
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var created []models.Task
	for _, p := range mergeTasks(own, assigned) {
		if p.RecurrenceEndDate != nil {
			continue
		}
		child, err := s.rollOne(ctx, &p, now)
		if err != nil {
			return created, err
		}
		if child != nil {
			created = append(created, *child)
		}
	}
	if len(created) > 0 {
		s.log.Info().Str("user_id", actor.ID).Int("created", len(created)).Msg("[task][recurrence] rolling check")
	}
	return created, nil
}

func (s *taskService) RunDateCheck(ctx context.Context, actor Actor, id string) (*TaskDateCheck, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanViewTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you do not have access to this task")
	}
	res, _ := s.applyDateCheck(ctx, task, true)
	return &TaskDateCheck{
		Result:            res,
		NeedsConfirmation: res.StartElapsed && !s.opts.AutoStart,
		Task:              task,
	}, nil
}

func (s *taskService) SweepDates(ctx context.Context) (int, error) {
	live := false
	tasks, err := s.repo.FindAll(ctx, models.TaskFilter{IsDeleted: &live})
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range tasks {
		if _, stamped := s.applyDateCheck(ctx, &tasks[i], false); stamped {
			changed++
		}
	}
	return changed, nil
}

func (s *taskService) NextTasks(ctx context.Context, actor Actor) ([]prioritize.Ranked, error) {
	tasks, err := s.workload(ctx, actor)
	if err != nil {
		return nil, err
	}
	return prioritize.NextTasks(tasks, actor.ID, s.clock()), nil
}

func (s *taskService) Categories(ctx context.Context, actor Actor) (prioritize.Categories, error) {
	tasks, err := s.workload(ctx, actor)
	if err != nil {
		return nil, err
	}
	return prioritize.Categorize(tasks, s.clock()), nil
}

// workload is every live task the user is effectively assigned to.
func (s *taskService) workload(ctx context.Context, actor Actor) ([]models.Task, error) {
	live, unassigned := false, ""
	assigned, err := s.repo.FindAll(ctx, models.TaskFilter{AssigneeID: &actor.ID, IsDeleted: &live})
	if err != nil {
		return nil, err
	}
	own, err := s.repo.FindAll(ctx, models.TaskFilter{CreatorID: &actor.ID, AssigneeID: &unassigned, IsDeleted: &live})
	if err != nil {
		return nil, err
	}
	tasks := mergeTasks(assigned, own)
	for i := range tasks {
		s.applyDateCheck(ctx, &tasks[i], false)
	}
	return tasks, nil
}

// applyDateCheck runs the daily start and overdue rules and persists the
// outcome, reporting whether dateCheckedAt was stamped. Without auto-start a
// passed start date only consumes the day when prompted is set, i.e. the
// user is being asked to confirm the start. Failures are logged; the read
// still succeeds.
func (s *taskService) applyDateCheck(ctx context.Context, task *models.Task, prompted bool) (datecheck.Result, bool) {
	if task.IsDeleted {
		return datecheck.Result{}, false
	}
	now := s.clock()
	res := datecheck.CheckTask(*task, now)
	if !res.MarkChecked() {
		return res, false
	}
	if awaitsConfirmation(res, s.opts.AutoStart) && !prompted {
		return res, false
	}
	if res.StartElapsed && s.opts.AutoStart {
		task.Status = models.StatusInProgress
	}
	if res.Overdue {
		task.Status = models.StatusOverdue
	}
	task.DateCheckedAt = &now
	if err := s.repo.Update(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("task_id", task.ID).Msg("[task][datecheck] persist failed")
		return res, false
	}
	if res.Overdue {
		s.notifier.Notify(ctx, models.Notification{
			UserID:  task.EffectiveAssignee(),
			Type:    models.NotifyTaskOverdue,
			Title:   "Task overdue",
			Message: fmt.Sprintf("%q is past its end date", task.Title),
			TaskID:  task.ID,
		})
	}
	return res, true
}

// awaitsConfirmation is a start-only result that needs the user's go-ahead.
func awaitsConfirmation(res datecheck.Result, autoStart bool) bool {
	return res.StartElapsed && !res.Overdue && !autoStart
}

func (s *taskService) editable(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is in the trash")
	}
	if !s.access.CanEditTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot edit this task")
	}
	return task, nil
}

// resolveOwnership checks the task's project, team and assignee against the
// acting user and fills in the team of a team project. Tasks outside any
// team or project always belong to their creator.
func (s *taskService) resolveOwnership(ctx context.Context, actor Actor, task *models.Task) error {
	var project *models.Project
	if task.ProjectID != "" {
		p, err := s.projects.FindByID(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		if p.IsDeleted {
			return apperr.Validation("project %q is in the trash", p.Name)
		}
		if !s.access.CanEditProject(ctx, actor.ID, p) {
			return apperr.PermissionDenied("you cannot add tasks to this project")
		}
		if p.TeamID != "" {
			if task.TeamID != "" && task.TeamID != p.TeamID {
				return apperr.Validation("task team does not match the project team")
			}
			task.TeamID = p.TeamID
		}
		project = p
	}

	if task.TeamID != "" {
		team, err := s.teams.FindByID(ctx, task.TeamID)
		if err != nil {
			return err
		}
		if team.IsDeleted {
			return apperr.Validation("team %q is in the trash", team.Name)
		}
		switch authz.TeamRole(team, actor.ID) {
		case "":
			return apperr.PermissionDenied("you are not a member of this team")
		case models.TeamRoleViewer:
			return apperr.PermissionDenied("viewers cannot manage team tasks")
		}
		if task.AssigneeID != "" && !authz.IsTeamMember(team, task.AssigneeID) {
			return apperr.Validation("assignee is not a member of the team")
		}
		return nil
	}

	if project != nil {
		if a := task.AssigneeID; a != "" && a != project.OwnerID && a != project.AssigneeID {
			if _, ok := project.MemberRole(a); !ok {
				return apperr.Validation("assignee is not a member of the project")
			}
		}
		return nil
	}
	task.AssigneeID = task.CreatorID
	return nil
}

func (s *taskService) deleteChildren(ctx context.Context, parentID string) error {
	children, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return err
		}
	}
	if len(children) > 0 {
		s.log.Info().Str("task_id", parentID).Int("children", len(children)).Msg("[task][delete] series instances removed")
	}
	return nil
}

// recalculate is fire-and-forget: a stale counter is fixed by the next change.
func (s *taskService) recalculate(ctx context.Context, projectID string) {
	if projectID == "" || s.recalc == nil {
		return
	}
	if _, err := s.recalc.RecalculateCompletion(ctx, projectID); err != nil {
		s.log.Warn().Err(err).Str("project_id", projectID).Msg("[task][recalc] project completion not updated")
	}
}

func (s *taskService) notifyAssigned(ctx context.Context, actor Actor, task *models.Task) {
	if task.AssigneeID == "" {
		return
	}
	s.notifier.Notify(ctx, models.Notification{
		UserID:    task.AssigneeID,
		Type:      models.NotifyTaskAssigned,
		Title:     "New task assigned",
		Message:   fmt.Sprintf("%s assigned you %q", actor.Name, task.Title),
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		TeamID:    task.TeamID,
	})
}

func validateTask(t *models.Task) error {
	if t.Title == "" {
		return apperr.Validation("title is required")
	}
	if t.StartDate.IsZero() {
		return apperr.Validation("start date is required")
	}
	if t.EndDate.Before(t.StartDate) {
		return apperr.Validation("end date must not be before the start date")
	}
	if !t.Priority.Valid() {
		return apperr.Validation("unknown priority %q", t.Priority)
	}
	if !t.Status.Valid() {
		return apperr.Validation("unknown status %q", t.Status)
	}
	if !t.Recurrence.Valid() {
		return apperr.Validation("unknown recurrence type %q", t.Recurrence)
	}
	for _, r := range t.Reminders {
		if err := datecheck.ValidateReminder(r); err != nil {
			return err
		}
	}
	for _, st := range t.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return apperr.Validation("subtask title is required")
		}
	}
	if t.IsRecurrenceParent || t.ParentTaskID == "" {
		return recurrence.ValidateEndDate(t.Recurrence, t.StartDate, t.RecurrenceEndDate)
	}
	return nil
}

func changeStatus(t *models.Task, to models.TaskStatus, now time.Time) error {
	if !to.Valid() {
		return apperr.Validation("unknown status %q", to)
	}
	if to == models.StatusOverdue && t.Status != models.StatusOverdue {
		return apperr.Validation("overdue status is set automatically")
	}
	if !canTransition(t.Status, to, TaskTransitions) {
		return apperr.Validation("cannot change status from %s to %s", t.Status, to)
	}
	t.Status = to
	if to == models.StatusCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	return nil
}

func restoreTask(t *models.Task, now time.Time) {
	t.Status = t.StatusBeforeDeletion
	if t.Status == "" {
		t.Status = models.StatusNotStarted
	}
	t.IsDeleted = false
	t.DeletedAt = nil
	t.DeletedBy = ""
	t.StatusBeforeDeletion = ""
	t.UpdatedAt = now
}

// normalizeItems gives new subtasks and reminders an id.
func normalizeItems(t *models.Task) {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = uuid.NewString()
		}
		t.Subtasks[i].Title = strings.TrimSpace(t.Subtasks[i].Title)
	}
	for i := range t.Reminders {
		if t.Reminders[i].ID == "" {
			t.Reminders[i].ID = uuid.NewString()
		}
		if t.Reminders[i].Type == models.ReminderRelative && t.Reminders[i].Anchor == "" {
			t.Reminders[i].Anchor = models.AnchorStart
		}
	}
}

// rearmRelativeReminders clears the sent flag of reminders that move with
// the task dates.
func rearmRelativeReminders(t *models.Task) {
	for i := range t.Reminders {
		if t.Reminders[i].Type == models.ReminderRelative {
			t.Reminders[i].Sent = false
			t.Reminders[i].SentAt = nil
		}
	}
}

// mergeTasks unions task lists by id in id order.
func mergeTasks(lists ...[]models.Task) []models.Task {
	seen := make(map[string]bool)
	var out []models.Task
	for _, list := range lists {
		for _, t := range list {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Task) int { return strings.Compare(a.ID, b.ID) })
	return out
}
