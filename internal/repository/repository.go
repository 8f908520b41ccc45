// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/pocketfile/internal/model"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Register inserts a self-registered user. The role is admin if no admin exists yet,
	// user otherwise; the decision is serialized across concurrent registrations.
	Register(ctx context.Context, username, email, pwdHash string) (*model.User, error)
	// Create inserts a user with an explicit role.
	Create(ctx context.Context, u model.User) (*model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]model.User, error)
	// Update applies the non-nil fields of p.
	Update(ctx context.Context, id int64, p model.UserPatch) (*model.User, error)
	// Delete removes a user.
	Delete(ctx context.Context, id int64) error
	// UsernameTaken reports whether another row (id != excludeID) uses username.
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	// EmailTaken reports whether another row (id != excludeID) uses email.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

// ProjectRepository provides access to projects.
type ProjectRepository interface {
	// List returns all projects ordered by name.
	List(ctx context.Context) ([]model.Project, error)
	// Create inserts a project.
	Create(ctx context.Context, name string, description *string) (*model.Project, error)
}

// FileRepository provides access to file metadata.
type FileRepository interface {
	// Create inserts a file row and fills ID and UploadTime.
	Create(ctx context.Context, f model.File) (*model.File, error)
	// List returns all files joined with display fields, newest first.
	List(ctx context.Context) ([]model.FileView, error)
	// Get returns a single file joined with display fields.
	Get(ctx context.Context, id int64) (*model.FileView, error)
	// Delete removes the metadata row.
	Delete(ctx context.Context, id int64) error
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
