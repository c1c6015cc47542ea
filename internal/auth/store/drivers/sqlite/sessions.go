package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/monitordb/auth/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, token_fingerprint, ip, user_agent,
	is_active, expires_at, logout_at, created_at`

func scanSession(row interface{ Scan(dest ...any) error }) (domain.Session, error) {
	var (
		s        domain.Session
		logoutAt sql.NullTime
	)

	err := row.Scan(
		&s.ID, &s.UserID, &s.TokenFingerprint, &s.IP, &s.UserAgent,
		&s.IsActive, &s.ExpiresAt, &logoutAt, &s.CreatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}

	s.LogoutAt = mapNullTimePtr(logoutAt)
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, token_fingerprint, ip, user_agent,
			is_active, expires_at, logout_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenFingerprint, s.IP, s.UserAgent,
		s.IsActive, s.ExpiresAt, mapOptionalTime(s.LogoutAt), s.CreatedAt,
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) ListActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// InvalidateAllSessions is a bulk update; zero affected rows is fine, which
// makes logout idempotent.
func (r *sessionsRepo) InvalidateAllSessions(ctx context.Context, userID string, logoutAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET is_active = 0, logout_at = ?
		WHERE user_id = ? AND is_active = 1`,
		logoutAt, userID,
	)
	return err
}

func (r *sessionsRepo) DeactivateExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET is_active = 0, logout_at = ?
		WHERE is_active = 1 AND expires_at <= ?`,
		now, now,
	)
	return err
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE is_active = 0 AND expires_at <= ?`,
		cutoff,
	)
	return err
}
