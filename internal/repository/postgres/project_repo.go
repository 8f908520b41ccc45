package postgres

import (
	"context"

	"github.com/and161185/pocketfile/internal/model"
)

// ProjectRepo implements ProjectRepository using PostgreSQL.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

// List returns all projects ordered by name.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	const q = `SELECT id, name, description, created_at FROM projects ORDER BY name ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a project; a nil description is stored as NULL.
func (r *ProjectRepo) Create(ctx context.Context, name string, description *string) (*model.Project, error) {
	const q = `
INSERT INTO projects (name, description)
VALUES ($1, $2)
RETURNING id, name, description, created_at`
	var p model.Project
	if err := r.db.Pool.QueryRow(ctx, q, name, description).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
