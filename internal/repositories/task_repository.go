package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error

	ListChildren(ctx context.Context, parentID string) ([]models.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)
	// ListDueForReminder returns live tasks that still have an unsent reminder.
	ListDueForReminder(ctx context.Context) ([]models.Task, error)
}

type taskRepository struct {
	db docstore.Store
}

func NewTaskRepository(db docstore.Store) TaskRepository {
	return &taskRepository{db: db}
}

// Store assigns an id when the task has none.
func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		task.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.Tasks, task.ID, task), "task")
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := docstore.Load[models.Task](ctx, r.db, docstore.Tasks, id)
	if err != nil {
		return nil, mapErr(err, "task")
	}
	return t, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	f := docstore.Filter{}
	if filter.CreatorID != nil {
		f["creatorId"] = *filter.CreatorID
	}
	if filter.AssigneeID != nil {
		f["assigneeId"] = *filter.AssigneeID
	}
	if filter.ProjectID != nil {
		f["projectId"] = *filter.ProjectID
	}
	if filter.TeamID != nil {
		f["teamId"] = *filter.TeamID
	}
	if filter.ParentTaskID != nil {
		f["parentTaskId"] = *filter.ParentTaskID
	}
	if filter.Status != nil {
		f["status"] = *filter.Status
	}
	if filter.IsDeleted != nil {
		f["isDeleted"] = *filter.IsDeleted
	}
	if filter.IsRecurrenceParent != nil {
		f["isRecurrenceParent"] = *filter.IsRecurrenceParent
	}

	tasks, err := docstore.Query[models.Task](ctx, r.db, docstore.Tasks, f)
	return tasks, mapErr(err, "task")
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.Tasks, task.ID, task), "task")
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.db.Delete(ctx, docstore.Tasks, id), "task")
}

func (r *taskRepository) ListChildren(ctx context.Context, parentID string) ([]models.Task, error) {
	return r.FindAll(ctx, models.TaskFilter{ParentTaskID: &parentID})
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return r.FindAll(ctx, models.TaskFilter{ProjectID: &projectID})
}

func (r *taskRepository) ListDueForReminder(ctx context.Context) ([]models.Task, error) {
	live := false
	tasks, err := r.FindAll(ctx, models.TaskFilter{IsDeleted: &live})
	if err != nil {
		return nil, err
	}
	out := tasks[:0]
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			continue
		}
		for _, rem := range t.Reminders {
			if !rem.Sent {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}
