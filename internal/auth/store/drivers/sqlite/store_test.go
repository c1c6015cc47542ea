package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/monitordb/auth/internal/auth/domain"
	"github.com/monitordb/auth/internal/auth/rbac"
	"github.com/monitordb/auth/internal/auth/store"
	"github.com/monitordb/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser() domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         rbac.RoleAnalyst,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, rbac.RoleAnalyst, byID.Role)
	require.Equal(t, domain.StatusActive, byID.Status)
	require.Zero(t, byID.FailedLoginAttempts)
	require.Nil(t, byID.LockedUntil)

	byEmail, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := newTestUser()
	dup.ID = idx.New().String()
	err := s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRecordFailedLoginSetsLockAtThreshold(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	lockUntil := time.Now().UTC().Add(30 * time.Minute)

	for i := 1; i < 5; i++ {
		state, err := s.Users().RecordFailedLogin(ctx, u.ID, 5, lockUntil)
		require.NoError(t, err)
		require.Equal(t, i, state.FailedAttempts)
		require.Nil(t, state.LockedUntil, "no lock before the threshold")
	}

	state, err := s.Users().RecordFailedLogin(ctx, u.ID, 5, lockUntil)
	require.NoError(t, err)
	require.Equal(t, 5, state.FailedAttempts)
	require.NotNil(t, state.LockedUntil)
	require.WithinDuration(t, lockUntil, *state.LockedUntil, time.Second)
}

func TestRecordFailedLoginConcurrentNeverLosesIncrements(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	const attempts = 10
	lockUntil := time.Now().UTC().Add(30 * time.Minute)

	errCh := make(chan error, attempts)
	for range attempts {
		go func() {
			_, err := s.Users().RecordFailedLogin(ctx, u.ID, 5, lockUntil)
			errCh <- err
		}()
	}
	for range attempts {
		require.NoError(t, <-errCh)
	}

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, attempts, got.FailedLoginAttempts)
	require.NotNil(t, got.LockedUntil)
}

func TestResetLockout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	lockUntil := time.Now().UTC().Add(30 * time.Minute)
	for range 5 {
		_, err := s.Users().RecordFailedLogin(ctx, u.ID, 5, lockUntil)
		require.NoError(t, err)
	}

	lastLogin := time.Now().UTC()
	require.NoError(t, s.Users().ResetLockout(ctx, u.ID, lastLogin))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, got.FailedLoginAttempts)
	require.Nil(t, got.LockedUntil)
	require.NotNil(t, got.LastLogin)
	require.WithinDuration(t, lastLogin, *got.LastLogin, time.Second)
}

func TestUpdatePasswordHashStampsMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	changedAt := time.Now().UTC()
	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash", changedAt))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.NotNil(t, got.Metadata.PasswordChangedAt)
	require.WithinDuration(t, changedAt, *got.Metadata.PasswordChangedAt, time.Second)

	require.ErrorIs(t,
		s.Users().UpdatePasswordHash(ctx, "missing", "x", changedAt),
		store.ErrNotFound)
}

func TestUpdateRoleAndStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().UpdateRole(ctx, u.ID, rbac.RoleManager))
	require.NoError(t, s.Users().UpdateStatus(ctx, u.ID, domain.StatusSuspended))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleManager, got.Role)
	require.Equal(t, domain.StatusSuspended, got.Status)
}

func TestSessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	for i := range 3 {
		sess := domain.Session{
			ID:               idx.New().String(),
			UserID:           u.ID,
			TokenFingerprint: "fp",
			IsActive:         true,
			ExpiresAt:        now.Add(24 * time.Hour),
			CreatedAt:        now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	}

	active, err := s.Sessions().ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 3)

	logoutAt := time.Now().UTC()
	require.NoError(t, s.Sessions().InvalidateAllSessions(ctx, u.ID, logoutAt))

	active, err = s.Sessions().ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, active)

	// Idempotent on an already logged-out user.
	require.NoError(t, s.Sessions().InvalidateAllSessions(ctx, u.ID, logoutAt))
}

func TestSessionsHousekeeping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	expired := domain.Session{
		ID:               idx.New().String(),
		UserID:           u.ID,
		TokenFingerprint: "fp",
		IsActive:         true,
		ExpiresAt:        now.Add(-time.Hour),
		CreatedAt:        now.Add(-25 * time.Hour),
	}
	live := domain.Session{
		ID:               idx.New().String(),
		UserID:           u.ID,
		TokenFingerprint: "fp",
		IsActive:         true,
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, expired))
	require.NoError(t, s.Sessions().CreateSession(ctx, live))

	require.NoError(t, s.Sessions().DeactivateExpiredSessions(ctx, now))

	active, err := s.Sessions().ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, live.ID, active[0].ID)

	require.NoError(t, s.Sessions().DeleteStaleSessions(ctx, now))
	_, err = s.Sessions().GetSessionByID(ctx, expired.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newTestUser()
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
