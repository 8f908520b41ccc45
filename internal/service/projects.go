package service

import (
	"context"
	"strings"

	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
)

// ProjectService lists and creates projects.
type ProjectService interface {
	List(ctx context.Context) ([]model.Project, error)
	// Create stores a project; a blank description is stored as NULL.
	Create(ctx context.Context, name, description string) (*model.Project, error)
}

type ProjectServiceImpl struct {
	projects repository.ProjectRepository
}

// NewProjectService constructs ProjectService over a project repository.
func NewProjectService(projects repository.ProjectRepository) *ProjectServiceImpl {
	return &ProjectServiceImpl{projects: projects}
}

// List returns all projects ordered by name.
func (s *ProjectServiceImpl) List(ctx context.Context) ([]model.Project, error) {
	return s.projects.List(ctx)
}

// Create trims and validates the name and stores the project.
func (s *ProjectServiceImpl) Create(ctx context.Context, name, description string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("project name is required")
	}
	if len(name) > maxColumnLen {
		return nil, invalid("project name is too long")
	}
	var desc *string
	if d := strings.TrimSpace(description); d != "" {
		desc = &d
	}
	return s.projects.Create(ctx, name, desc)
}
