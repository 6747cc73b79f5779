package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakura-events/sakura-backend/internal/timers/domain"
)

const sessionColumns = `id::text, owner_id, project_id::text, start_time, end_time, duration, created_at, updated_at`

// SessionRepository stores timer sessions in Postgres.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s   domain.Session
		end sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.OwnerID, &s.ProjectID, &s.StartTime, &end, &s.Duration, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return &s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	q := `
INSERT INTO timer_sessions (id, owner_id, project_id, start_time)
VALUES ($1, $2, $3, $4)
RETURNING ` + sessionColumns + `;`

	created, err := scanSession(r.db.QueryRowContext(ctx, q, uuid.NewString(), s.OwnerID, s.ProjectID, s.StartTime))
	if err != nil {
		return nil, fmt.Errorf("insert timer session: %w", err)
	}
	return created, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	q := `SELECT ` + sessionColumns + ` FROM timer_sessions WHERE id = $1;`
	s, err := scanSession(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select timer session: %w", err)
	}
	return s, nil
}

// FindOpenByOwner returns the owner's running session, or nil when none is running.
func (r *SessionRepository) FindOpenByOwner(ctx context.Context, ownerID string) (*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM timer_sessions
WHERE owner_id = $1 AND end_time IS NULL
ORDER BY start_time DESC
LIMIT 1;`

	s, err := scanSession(r.db.QueryRowContext(ctx, q, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select open timer session: %w", err)
	}
	return s, nil
}

// ListByProject returns a project's sessions, newest first.
func (r *SessionRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM timer_sessions WHERE project_id = $1 ORDER BY start_time DESC;`
	return r.list(ctx, q, projectID)
}

// StaleOpen returns running sessions started before cutoff.
func (r *SessionRepository) StaleOpen(ctx context.Context, cutoff time.Time) ([]domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM timer_sessions WHERE end_time IS NULL AND start_time < $1 ORDER BY start_time;`
	return r.list(ctx, q, cutoff)
}

func (r *SessionRepository) list(ctx context.Context, q string, arg interface{}) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("list timer sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Session, 0, 8)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stop closes a running session and adds its duration to the project's total
// in one transaction. A session that is already closed yields ErrSessionClosed
// and changes nothing. The returned total is 0 when the project no longer exists.
func (r *SessionRepository) Stop(ctx context.Context, id, ownerID string, end time.Time, hours float64) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin stop: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var projectID string
	err = tx.QueryRowContext(ctx, `
UPDATE timer_sessions
SET end_time = $3, duration = $4, updated_at = now()
WHERE id = $1 AND owner_id = $2 AND end_time IS NULL
RETURNING project_id::text;`, id, ownerID, end, hours).Scan(&projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrSessionClosed
		}
		return 0, fmt.Errorf("close timer session: %w", err)
	}

	var total float64
	err = tx.QueryRowContext(ctx, `
UPDATE projects
SET total_hours = total_hours + $2, updated_at = now()
WHERE id = $1
RETURNING total_hours;`, projectID, hours).Scan(&total)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("add project hours: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit stop: %w", err)
	}
	return total, nil
}

// CloseAbandoned ends a running session with zero duration. Returns false if it was already closed.
func (r *SessionRepository) CloseAbandoned(ctx context.Context, id string, end time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE timer_sessions
SET end_time = $2, duration = 0, updated_at = now()
WHERE id = $1 AND end_time IS NULL;`, id, end)
	if err != nil {
		return false, fmt.Errorf("close abandoned session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
