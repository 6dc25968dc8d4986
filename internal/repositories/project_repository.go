package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type ProjectRepository interface {
	Store(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id string) error
}

type projectRepository struct {
	db docstore.Store
}

func NewProjectRepository(db docstore.Store) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Store(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		p.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.Projects, p.ID, p), "project")
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := docstore.Load[models.Project](ctx, r.db, docstore.Projects, id)
	if err != nil {
		return nil, mapErr(err, "project")
	}
	return p, nil
}

func (r *projectRepository) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	f := docstore.Filter{}
	if filter.OwnerID != nil {
		f["ownerId"] = *filter.OwnerID
	}
	if filter.TeamID != nil {
		f["teamId"] = *filter.TeamID
	}
	if filter.IsDeleted != nil {
		f["isDeleted"] = *filter.IsDeleted
	}
	projects, err := docstore.Query[models.Project](ctx, r.db, docstore.Projects, f)
	return projects, mapErr(err, "project")
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.Projects, p.ID, p), "project")
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.db.Delete(ctx, docstore.Projects, id), "project")
}
