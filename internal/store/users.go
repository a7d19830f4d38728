package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
)

const userColumns = `id, email, name, password_hash, role, status, created_at`

// UserRepository stores marketplace accounts.
type UserRepository struct {
	conn
}

// NewUserRepository returns a repository bound to the given pool.
func NewUserRepository(pool *sql.DB, dialect db.Dialect) *UserRepository {
	return &UserRepository{conn{pool: pool, dialect: dialect}}
}

// Create inserts a new user. The email must already be normalized.
func (r *UserRepository) Create(ctx context.Context, email, name, passwordHash, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, apperr.Validation("invalid role")
	}

	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role) VALUES (?, ?, ?, ?) RETURNING id`,
		email, name, passwordHash, role,
	).Scan(&id)
	if err != nil {
		if classifyConstraint(err) == unique {
			return nil, apperr.Constraint("email already registered", err)
		}
		return nil, apperr.Persistence("failed to create user", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a user or an apperr.ErrNotFound error.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail looks a user up by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// List returns all users ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, apperr.Persistence("failed to list users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to read user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list users", err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	if !model.ValidRole(role) {
		return apperr.Validation("invalid role")
	}
	result, err := r.exec(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return apperr.Persistence("failed to update user", err)
	}
	return requireAffected(result, "user not found")
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return apperr.Persistence("failed to update password", err)
	}
	return requireAffected(result, "user not found")
}

// UpdateName changes the display name. Email and role are not editable here.
func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("name must not be empty")
	}
	result, err := r.exec(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return apperr.Persistence("failed to update user", err)
	}
	return requireAffected(result, "user not found")
}

// SetStatus activates or blocks an account.
func (r *UserRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if !model.ValidUserStatus(status) {
		return apperr.Validation("status must be 'active' or 'blocked'")
	}
	result, err := r.exec(ctx, `UPDATE users SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return apperr.Persistence("failed to update user", err)
	}
	return requireAffected(result, "user not found")
}

// Delete removes an account together with its favorites and notifications.
// Users who still own listings or applications cannot be deleted.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		if classifyConstraint(err) == foreignKey {
			return false, apperr.Constraint("user still owns listings or applications", err)
		}
		return false, apperr.Persistence("failed to delete user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("failed to delete user", err)
	}
	return n > 0, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, apperr.Persistence("failed to count users", err)
	}
	return n, nil
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.queryRow(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to get user", err)
	}
	return u, nil
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
