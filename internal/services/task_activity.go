package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
)

// WorkSessionEdit corrects a finished session. Nil fields stay unchanged.
type WorkSessionEdit struct {
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	BreakMinutes *int       `json:"breakMinutes"`
}

func (s *taskService) AddComment(ctx context.Context, actor Actor, id, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text is required")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is in the trash")
	}
	if !s.access.CanViewTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you do not have access to this task")
	}

	now := s.clock()
	task.Comments = append(task.Comments, models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
		CreatedAt:  now,
	})
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	for _, userID := range uniqueExcept(actor.ID, task.CreatorID, task.EffectiveAssignee()) {
		s.notifier.Notify(ctx, models.Notification{
			UserID:  userID,
			Type:    models.NotifyTaskComment,
			Title:   "New comment",
			Message: fmt.Sprintf("%s commented on %q", actor.Name, task.Title),
			TaskID:  task.ID,
		})
	}
	return task, nil
}

// ToggleSubtask flips a subtask; its own assignee may do so without edit
// rights on the task.
func (s *taskService) ToggleSubtask(ctx context.Context, actor Actor, id, subtaskID string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is in the trash")
	}
	idx := -1
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("subtask not found")
	}
	sub := &task.Subtasks[idx]
	if sub.AssigneeID != actor.ID && !s.access.CanEditTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot edit this task")
	}

	sub.Completed = !sub.Completed
	task.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) StartWorkSession(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.workable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if openSession(task, actor.ID) != nil {
		return nil, apperr.StaleState("a work session is already running on this task")
	}

	now := s.clock()
	task.WorkSessions = append(task.WorkSessions, models.WorkSession{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		StartTime: now,
	})
	if task.Status == models.StatusNotStarted {
		task.Status = models.StatusInProgress
	}
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) EndWorkSession(ctx context.Context, actor Actor, id string, breakMinutes int) (*models.Task, error) {
	if breakMinutes < 0 {
		return nil, apperr.Validation("break must not be negative")
	}
	task, err := s.workable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ws := openSession(task, actor.ID)
	if ws == nil {
		return nil, apperr.StaleState("no work session is running on this task")
	}

	now := s.clock()
	ws.EndTime = &now
	ws.BreakMinutes = breakMinutes
	ws.ComputeActual()
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// EditWorkSession applies corrections to a finished session and appends one
// change record per modified field.
func (s *taskService) EditWorkSession(ctx context.Context, actor Actor, id, sessionID string, edit WorkSessionEdit) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is in the trash")
	}
	var ws *models.WorkSession
	for i := range task.WorkSessions {
		if task.WorkSessions[i].ID == sessionID {
			ws = &task.WorkSessions[i]
			break
		}
	}
	if ws == nil {
		return nil, apperr.NotFound("work session not found")
	}
	if ws.UserID != actor.ID && !s.access.CanEditTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot edit this work session")
	}
	if ws.EndTime == nil {
		return nil, apperr.StaleState("work session is still running")
	}

	start, end, brk := ws.StartTime, *ws.EndTime, ws.BreakMinutes
	if edit.StartTime != nil {
		start = *edit.StartTime
	}
	if edit.EndTime != nil {
		end = *edit.EndTime
	}
	if edit.BreakMinutes != nil {
		brk = *edit.BreakMinutes
	}
	if end.Before(start) {
		return nil, apperr.Validation("session end must not be before its start")
	}
	if brk < 0 {
		return nil, apperr.Validation("break must not be negative")
	}

	now := s.clock()
	record := func(field, from, to string) {
		if from == to {
			return
		}
		ws.Changes = append(ws.Changes, models.WorkSessionChange{
			ChangedAt: now,
			ChangedBy: actor.ID,
			Field:     field,
			From:      from,
			To:        to,
		})
	}
	record("startTime", ws.StartTime.Format(time.RFC3339), start.Format(time.RFC3339))
	record("endTime", ws.EndTime.Format(time.RFC3339), end.Format(time.RFC3339))
	record("breakMinutes", strconv.Itoa(ws.BreakMinutes), strconv.Itoa(brk))

	ws.StartTime = start
	ws.EndTime = &end
	ws.BreakMinutes = brk
	ws.ComputeActual()
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// workable loads a live task the actor may log time on: its effective
// assignee or anyone who can edit it.
func (s *taskService) workable(ctx context.Context, actor Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.StaleState("task is in the trash")
	}
	if task.EffectiveAssignee() != actor.ID && !s.access.CanEditTask(ctx, actor.ID, task) {
		return nil, apperr.PermissionDenied("you cannot log time on this task")
	}
	return task, nil
}

func openSession(t *models.Task, userID string) *models.WorkSession {
	for i := range t.WorkSessions {
		if t.WorkSessions[i].UserID == userID && t.WorkSessions[i].EndTime == nil {
			return &t.WorkSessions[i]
		}
	}
	return nil
}

func uniqueExcept(skip string, ids ...string) []string {
	seen := map[string]bool{skip: true, "": true}
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
