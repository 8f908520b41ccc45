package service

import (
	"context"
	"fmt"

	pkgcrypto "github.com/and161185/pocketfile/internal/crypto"
	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
)

// NewUser is an admin-created account.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserUpdate carries optional changes; nil fields are left as they are.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

// UserService is the admin-only account management surface.
// Every method fails with errs.ErrForbidden unless actor is an admin.
type UserService interface {
	List(ctx context.Context, actor model.Principal) ([]model.User, error)
	Get(ctx context.Context, actor model.Principal, id int64) (*model.User, error)
	Create(ctx context.Context, actor model.Principal, in NewUser) (*model.User, error)
	Update(ctx context.Context, actor model.Principal, id int64, in UserUpdate) (*model.User, error)
	// Delete removes an account other than actor's own.
	Delete(ctx context.Context, actor model.Principal, id int64) error
}

type UserServiceImpl struct {
	users repository.UserRepository
}

// NewUserService constructs UserService over a user repository.
func NewUserService(users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// List returns all accounts, newest first.
func (s *UserServiceImpl) List(ctx context.Context, actor model.Principal) ([]model.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Get loads one account by id.
func (s *UserServiceImpl) Get(ctx context.Context, actor model.Principal, id int64) (*model.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.users.GetByID(ctx, id)
}

// Create validates and stores an account with an explicit role.
func (s *UserServiceImpl) Create(ctx context.Context, actor model.Principal, in NewUser) (*model.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	username, err := checkUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := checkEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := checkRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.users, username, email, 0); err != nil {
		return nil, err
	}

	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, model.User{Username: username, Email: email, PwdHash: hash, Role: role})
}

// Update validates the present fields and applies them as one patch.
func (s *UserServiceImpl) Update(ctx context.Context, actor model.Principal, id int64, in UserUpdate) (*model.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var patch model.UserPatch
	if in.Username != nil {
		u, err := checkUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		patch.Username = &u
	}
	if in.Email != nil {
		e, err := checkEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &e
	}
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Role != nil {
		r, err := checkRole(*in.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &r
	}
	if patch.Empty() && in.Password == nil {
		return nil, invalid("no fields to update")
	}

	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var username, email string
	if patch.Username != nil {
		username = *patch.Username
	}
	if patch.Email != nil {
		email = *patch.Email
	}
	if err := ensureUnique(ctx, s.users, username, email, id); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := pkgcrypto.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PwdHash = &hash
	}
	return s.users.Update(ctx, id, patch)
}

// Delete removes an account; deleting oneself is rejected before the lookup.
func (s *UserServiceImpl) Delete(ctx context.Context, actor model.Principal, id int64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return fmt.Errorf("%w: cannot delete your own account", errs.ErrValidation)
	}
	if id <= 0 {
		return errs.ErrNotFound
	}
	return s.users.Delete(ctx, id)
}
