package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/monitordb/auth/internal/auth/domain"
	"github.com/monitordb/auth/internal/auth/rbac"
	"github.com/monitordb/auth/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, role, status,
	failed_login_attempts, locked_until, last_login,
	password_changed_at, must_change_password, email_verified,
	created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u                 domain.User
		role, status      string
		lockedUntil       sql.NullTime
		lastLogin         sql.NullTime
		passwordChangedAt sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &role, &status,
		&u.FailedLoginAttempts, &lockedUntil, &lastLogin,
		&passwordChangedAt, &u.Metadata.MustChangePassword, &u.Metadata.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = rbac.Role(role)
	u.Status = domain.Status(status)
	u.LockedUntil = mapNullTimePtr(lockedUntil)
	u.LastLogin = mapNullTimePtr(lastLogin)
	u.Metadata.PasswordChangedAt = mapNullTimePtr(passwordChangedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, role, status,
			failed_login_attempts, locked_until, last_login,
			password_changed_at, must_change_password, email_verified,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), string(u.Status),
		u.FailedLoginAttempts, mapOptionalTime(u.LockedUntil), mapOptionalTime(u.LastLogin),
		mapOptionalTime(u.Metadata.PasswordChangedAt), u.Metadata.MustChangePassword,
		u.Metadata.EmailVerified, u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RecordFailedLogin is one atomic UPDATE so the increment and the threshold
// check cannot race with a concurrent failed attempt. locked_until is set
// exactly when the new count reaches maxAttempts.
func (r *usersRepo) RecordFailedLogin(ctx context.Context, userID string, maxAttempts int, lockUntil time.Time) (store.LockoutState, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= ? THEN ?
		        ELSE locked_until
		    END,
		    updated_at = ?
		WHERE id = ?
		RETURNING failed_login_attempts, locked_until`,
		maxAttempts, lockUntil, time.Now().UTC(), userID,
	)

	var (
		state       store.LockoutState
		lockedUntil sql.NullTime
	)
	if err := row.Scan(&state.FailedAttempts, &lockedUntil); err != nil {
		return store.LockoutState{}, mapNotFound(err)
	}

	state.LockedUntil = mapNullTimePtr(lockedUntil)
	return state, nil
}

func (r *usersRepo) ResetLockout(ctx context.Context, userID string, lastLogin time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = 0,
		    locked_until = NULL,
		    last_login = ?,
		    updated_at = ?
		WHERE id = ?`,
		lastLogin, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) ClearExpiredLock(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = 0,
		    locked_until = NULL,
		    updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = ?,
		    password_changed_at = ?,
		    must_change_password = 0,
		    updated_at = ?
		WHERE id = ?`,
		newHash, changedAt, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role rbac.Role) error {
	return r.exec(ctx, `
		UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), time.Now().UTC(), userID,
	)
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status domain.Status) error {
	return r.exec(ctx, `
		UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), userID,
	)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// exec runs an UPDATE that must touch exactly one row.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
