package store

import (
	"context"
	"errors"
	"time"

	"github.com/monitordb/auth/internal/auth/domain"
	"github.com/monitordb/auth/internal/auth/rbac"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories to keep concerns separated and testable.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Users() Users
	Sessions() Sessions
}

// LockoutState is what RecordFailedLogin returns: the counter and lock as
// they stand after the atomic increment.
type LockoutState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A duplicate email fails with ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// RecordFailedLogin atomically increments failed_login_attempts and, iff
	// the new count reaches maxAttempts, sets locked_until. It returns the
	// post-increment state. The increment and threshold check happen in one
	// statement so concurrent failures never lose an increment.
	RecordFailedLogin(ctx context.Context, userID string, maxAttempts int, lockUntil time.Time) (LockoutState, error)

	// ResetLockout clears failed_login_attempts and locked_until and stamps
	// last_login. Called on successful authentication.
	ResetLockout(ctx context.Context, userID string, lastLogin time.Time) error

	// ClearExpiredLock clears the lock and counter without touching
	// last_login. Called when a lock is found expired on read.
	ClearExpiredLock(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password hash, stamps
	// metadata.password_changed_at, and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string, changedAt time.Time) error

	// UpdateRole sets the user's role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role rbac.Role) error

	// UpdateStatus sets the account status and bumps updated_at.
	UpdateStatus(ctx context.Context, userID string, status domain.Status) error

	// IsEmpty reports whether there are no users yet (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession inserts a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByID returns a session by id.
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)

	// ListActiveSessions returns the user's sessions with is_active=1,
	// newest first.
	ListActiveSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// InvalidateAllSessions bulk-updates every active session of the user to
	// is_active=0 with logout_at=now. Idempotent.
	InvalidateAllSessions(ctx context.Context, userID string, logoutAt time.Time) error

	// DeactivateExpiredSessions flips is_active=0 on sessions whose
	// expires_at has passed (housekeeping).
	DeactivateExpiredSessions(ctx context.Context, now time.Time) error

	// DeleteStaleSessions removes inactive sessions older than cutoff
	// (housekeeping).
	DeleteStaleSessions(ctx context.Context, cutoff time.Time) error
}
