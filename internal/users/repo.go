package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// foreignKeyViolation is the Postgres error code raised when a role
// row references a user that does not exist.
const foreignKeyViolation = "23503"

// Role is the capability level of a user. Missing role row means
// RoleUser.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// CanAdminister reports whether the role grants access to the admin
// operation surface.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin || r == RoleModerator
}

type User struct {
	ID          string    `json:"id"`
	ProviderUID string    `json:"-"`
	Email       *string   `json:"email"`
	DisplayName *string   `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// EnsureUser upserts the user row for an identity-provider UID and
// returns the internal user id. Runs on every authenticated request,
// keyed on the provider UID so repeat logins are cheap updates.
func (r *Repo) EnsureUser(ctx context.Context, providerUID, email, displayName string) (string, error) {
	if providerUID == "" {
		return "", fmt.Errorf("provider uid required")
	}

	const q = `
INSERT INTO users (provider_uid, email, display_name, updated_at)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), now())
ON CONFLICT (provider_uid) DO UPDATE
SET
  email        = COALESCE(EXCLUDED.email, users.email),
  display_name = COALESCE(EXCLUDED.display_name, users.display_name),
  updated_at   = now()
RETURNING id::text;
`
	var id string
	if err := r.db.QueryRowContext(ctx, q, providerUID, email, displayName).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// List returns every registered user with their role, newest first.
func (r *Repo) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT u.id::text, u.provider_uid, u.email, u.display_name,
       COALESCE(ur.role, 'user'), u.created_at
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
ORDER BY u.created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0, 16)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.ProviderUID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetRole returns the user's role, defaulting to RoleUser when no
// role row exists.
func (r *Repo) GetRole(ctx context.Context, userID string) (Role, error) {
	const q = `
SELECT role
FROM user_roles
WHERE user_id = $1::uuid;
`
	var role Role
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// SetRole upserts the user's role row. An unknown user id maps to
// ErrNotFound so the admin surface answers 404 rather than a raw
// persistence error.
func (r *Repo) SetRole(ctx context.Context, userID string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}

	const q = `
INSERT INTO user_roles (user_id, role)
VALUES ($1::uuid, $2)
ON CONFLICT (user_id) DO UPDATE
SET role = EXCLUDED.role, updated_at = now();
`
	if _, err := r.db.ExecContext(ctx, q, userID, role); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
