package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/monitordb/auth/internal/auth/domain"
	"github.com/monitordb/auth/internal/auth/metrics"
	"github.com/monitordb/auth/internal/auth/rbac"
	"github.com/monitordb/auth/internal/auth/store"
	"github.com/monitordb/auth/pkg/cryptox"
	"github.com/monitordb/auth/pkg/idx"
	"github.com/monitordb/auth/pkg/jwtx"
)

// Defaults applied when the corresponding AuthService field is zero.
const (
	DefaultMaxFailedAttempts = 5
	DefaultLockoutDuration   = 30 * time.Minute
	DefaultSessionTTL        = 24 * time.Hour
)

// AuthService composes the password hasher, token signer, role registry,
// lockout bookkeeping, and session registry into the login, refresh, logout,
// and password flows. It owns the error taxonomy: everything below it speaks
// store/crypto errors, everything above it sees only the Err* sentinels.
type AuthService struct {
	Store    store.Store
	Tokens   *jwtx.HS256
	Policy   cryptox.Policy
	Notifier Notifier
	Logger   *slog.Logger

	MaxFailedAttempts int
	LockoutDuration   time.Duration
	SessionTTL        time.Duration
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// SessionMeta is the optional request metadata recorded on a session.
type SessionMeta struct {
	IP        string
	UserAgent string
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) maxAttempts() int {
	if s.MaxFailedAttempts > 0 {
		return s.MaxFailedAttempts
	}
	return DefaultMaxFailedAttempts
}

func (s *AuthService) lockoutDuration() time.Duration {
	if s.LockoutDuration > 0 {
		return s.LockoutDuration
	}
	return DefaultLockoutDuration
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *AuthService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Register validates and persists a new Active user. Password-policy
// violations fail with WeakPasswordError, an unknown role with
// ErrInvalidRole, and an email already in use with ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, createdBy string) (domain.UserPublic, error) {
	if violations := cryptox.ValidateStrength(in.Password, s.Policy); len(violations) > 0 {
		return domain.UserPublic{}, &WeakPasswordError{Violations: violations}
	}

	role, err := rbac.ParseRole(in.Role)
	if err != nil {
		return domain.UserPublic{}, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.UserPublic{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.UserPublic{}, ErrDuplicateEmail
		}
		return domain.UserPublic{}, fmt.Errorf("create user: %w", err)
	}

	s.notify(ctx, Event{
		Type:     EventUserCreated,
		Priority: PriorityNormal,
		UserID:   user.ID,
		Email:    user.Email,
		Message:  fmt.Sprintf("user %s created by %s with role %s", user.Email, createdBy, role),
		At:       now,
	})

	s.logger().Info("user registered", "user_id", user.ID, "role", role, "created_by", createdBy)
	return user.Public(), nil
}

// Login runs the credential check in a fixed order: lookup, lock check,
// password verify, status check. Only then are counters reset, tokens
// issued, and a session recorded.
func (s *AuthService) Login(ctx context.Context, email, password string, meta SessionMeta) (domain.TokenBundle, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			return domain.TokenBundle{}, ErrInvalidCredentials
		}
		return domain.TokenBundle{}, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now().UTC()

	if user.Locked(now) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return domain.TokenBundle{}, &AccountLockedError{Until: *user.LockedUntil}
	}

	// Lock state is evaluated on read: an expired lock is cleared here, on
	// the next attempt, rather than by a background sweep.
	if user.LockedUntil != nil {
		if err := s.Store.Users().ClearExpiredLock(ctx, user.ID); err != nil {
			return domain.TokenBundle{}, fmt.Errorf("clear expired lock: %w", err)
		}
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return domain.TokenBundle{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		if err := s.recordFailure(ctx, user); err != nil {
			s.logger().Error("failed to record failed login", "user_id", user.ID, "err", err)
		}
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return domain.TokenBundle{}, ErrInvalidCredentials
	}

	if user.Status != domain.StatusActive {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		return domain.TokenBundle{}, ErrAccountInactive
	}

	if err := s.Store.Users().ResetLockout(ctx, user.ID, now); err != nil {
		return domain.TokenBundle{}, fmt.Errorf("reset lockout: %w", err)
	}

	bundle, refreshToken, err := s.issueTokens(user)
	if err != nil {
		return domain.TokenBundle{}, err
	}

	session := domain.Session{
		ID:               idx.New().String(),
		UserID:           user.ID,
		TokenFingerprint: cryptox.FingerprintToken(refreshToken),
		IP:               meta.IP,
		UserAgent:        meta.UserAgent,
		IsActive:         true,
		ExpiresAt:        now.Add(s.sessionTTL()),
		CreatedAt:        now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.TokenBundle{}, fmt.Errorf("create session: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.logger().Info("login succeeded", "user_id", user.ID, "role", user.Role)
	return bundle, nil
}

// recordFailure applies the atomic failed-attempt increment and, when the
// account just transitioned to locked, emits the best-effort notification.
func (s *AuthService) recordFailure(ctx context.Context, user domain.User) error {
	lockUntil := time.Now().UTC().Add(s.lockoutDuration())

	state, err := s.Store.Users().RecordFailedLogin(ctx, user.ID, s.maxAttempts(), lockUntil)
	if err != nil {
		return err
	}

	if state.LockedUntil != nil && state.FailedAttempts == s.maxAttempts() {
		metrics.Lockouts.Inc()
		s.logger().Warn("account locked",
			"user_id", user.ID,
			"failed_attempts", state.FailedAttempts,
			"locked_until", state.LockedUntil,
		)
		s.notify(ctx, Event{
			Type:     EventAccountLocked,
			Priority: PriorityHigh,
			UserID:   user.ID,
			Email:    user.Email,
			Message:  fmt.Sprintf("account %s locked until %s after %d failed logins", user.Email, state.LockedUntil.Format(time.RFC3339), state.FailedAttempts),
			At:       time.Now().UTC(),
		})
	}

	return nil
}

// Refresh verifies the refresh token and mints a new access token with the
// user's current role and permissions, not the snapshot in the refresh
// claims. The refresh token is returned unchanged; there is no rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenBundle, error) {
	claims, err := s.Tokens.Verify(refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return domain.TokenBundle{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenBundle{}, ErrUserNotFound
		}
		return domain.TokenBundle{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.Status != domain.StatusActive {
		return domain.TokenBundle{}, ErrAccountInactive
	}

	access, _, err := s.Tokens.Issue(s.identity(user), jwtx.TokenTypeAccess)
	if err != nil {
		return domain.TokenBundle{}, fmt.Errorf("issue access token: %w", err)
	}
	metrics.TokensIssued.WithLabelValues("access").Inc()

	return domain.TokenBundle{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.Tokens.TTL(jwtx.TokenTypeAccess).Seconds()),
		UserID:       user.ID,
		Role:         user.Role,
	}, nil
}

// Logout invalidates every session owned by the user. Idempotent: logging
// out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Store.Sessions().InvalidateAllSessions(ctx, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}

	s.logger().Info("logout", "user_id", userID)
	return nil
}

// ChangePassword verifies the current password before accepting the new one.
// A wrong current password fails with ErrInvalidCredentials and reveals
// nothing more.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if violations := cryptox.ValidateStrength(newPassword, s.Policy); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	metrics.PasswordChanges.Inc()
	s.logger().Info("password changed", "user_id", userID)
	return nil
}

// UpdateRole moves the user to a new role. Tokens already issued keep their
// permission snapshot until they expire or are refreshed.
func (s *AuthService) UpdateRole(ctx context.Context, userID, newRole, updatedBy string) error {
	role, err := rbac.ParseRole(newRole)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRole, newRole)
	}

	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}

	s.logger().Info("role updated", "user_id", userID, "role", role, "updated_by", updatedBy)
	return nil
}

// GetUser returns the public projection of one user.
func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.UserPublic, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserPublic{}, ErrUserNotFound
		}
		return domain.UserPublic{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Public(), nil
}

// ListUsers returns the public projection of every user, newest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.UserPublic, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.UserPublic, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// issueTokens mints the access/refresh pair for a user and returns the
// bundle plus the raw refresh token for session fingerprinting.
func (s *AuthService) issueTokens(user domain.User) (domain.TokenBundle, string, error) {
	id := s.identity(user)

	access, _, err := s.Tokens.Issue(id, jwtx.TokenTypeAccess)
	if err != nil {
		return domain.TokenBundle{}, "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.Tokens.Issue(id, jwtx.TokenTypeRefresh)
	if err != nil {
		return domain.TokenBundle{}, "", fmt.Errorf("issue refresh token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues("access").Inc()
	metrics.TokensIssued.WithLabelValues("refresh").Inc()

	return domain.TokenBundle{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.Tokens.TTL(jwtx.TokenTypeAccess).Seconds()),
		UserID:       user.ID,
		Role:         user.Role,
	}, refresh, nil
}

func (s *AuthService) identity(user domain.User) jwtx.Identity {
	return jwtx.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		Permissions: rbac.Strings(rbac.PermissionsOf(user.Role)),
	}
}

// notify delivers an event best-effort. Failures are logged and discarded,
// never surfaced to the caller.
func (s *AuthService) notify(ctx context.Context, ev Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, ev); err != nil {
		s.logger().Warn("notification failed", "type", ev.Type, "err", err)
	}
}
