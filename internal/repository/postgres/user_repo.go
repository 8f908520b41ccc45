package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// bootstrapLockKey serializes role decisions of concurrent registrations.
const bootstrapLockKey int64 = 0x706f636b6574 // "pocket"

const userColumns = `id, username, email, password, role, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PwdHash, &role, &u.CreatedAt); err != nil {
		return nil, translate(err)
	}
	u.Role = model.Role(role)
	return &u, nil
}

// Register inserts a self-registered user, granting admin only when no admin exists.
func (r *UserRepo) Register(ctx context.Context, username, email, pwdHash string) (*model.User, error) {
	const lock = `SELECT pg_advisory_xact_lock($1)`
	const ins = `
INSERT INTO users (username, email, password, role)
SELECT $1, $2, $3,
       CASE WHEN EXISTS (SELECT 1 FROM users WHERE role = 'admin') THEN 'user' ELSE 'admin' END
RETURNING ` + userColumns

	var out *model.User
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lock, bootstrapLockKey); err != nil {
			return err
		}
		u, err := scanUser(tx.QueryRow(ctx, ins, username, email, pwdHash))
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Create inserts a user with an explicit role.
func (r *UserRepo) Create(ctx context.Context, u model.User) (*model.User, error) {
	const q = `
INSERT INTO users (username, email, password, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	return scanUser(r.db.Pool.QueryRow(ctx, q, u.Username, u.Email, u.PwdHash, string(u.Role)))
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of p in a single parameterized statement.
func (r *UserRepo) Update(ctx context.Context, id int64, p model.UserPatch) (*model.User, error) {
	if p.Empty() {
		return nil, errs.ErrValidation
	}
	const q = `
UPDATE users SET
  username = COALESCE($2, username),
  email    = COALESCE($3, email),
  password = COALESCE($4, password),
  role     = COALESCE($5, role)
WHERE id = $1
RETURNING ` + userColumns

	var role *string
	if p.Role != nil {
		s := string(*p.Role)
		role = &s
	}
	return scanUser(r.db.Pool.QueryRow(ctx, q, id, p.Username, p.Email, p.PwdHash, role))
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether a row other than excludeID uses username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1 AND id<>$2)`
	var taken bool
	err := r.db.Pool.QueryRow(ctx, q, username, excludeID).Scan(&taken)
	return taken, err
}

// EmailTaken reports whether a row other than excludeID uses email.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 AND id<>$2)`
	var taken bool
	err := r.db.Pool.QueryRow(ctx, q, email, excludeID).Scan(&taken)
	return taken, err
}
