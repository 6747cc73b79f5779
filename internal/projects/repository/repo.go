package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sakura-events/sakura-backend/internal/projects/domain"
)

const projectColumns = `id::text, owner_id, owner_display_name, title, description,
       coalesce(repository_url, ''), coalesce(live_url, ''), technologies, status,
       total_hours, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p      domain.Project
		techs  pq.StringArray
		status string
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.OwnerDisplayName, &p.Title, &p.Description,
		&p.RepositoryURL, &p.LiveURL, &techs, &status,
		&p.TotalHours, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Technologies = []string(techs)
	p.Status = domain.Status(status)
	return &p, nil
}

// Create inserts a project. Status always starts as pending.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if p.OwnerID == "" {
		return nil, fmt.Errorf("owner id required")
	}

	q := `
INSERT INTO projects (id, owner_id, owner_display_name, title, description,
                      repository_url, live_url, technologies, status)
VALUES ($1, $2, $3, $4, $5, nullif($6, ''), nullif($7, ''), $8, $9)
RETURNING ` + projectColumns + `;`

	created, err := scanProject(r.db.QueryRowContext(ctx, q,
		uuid.NewString(), p.OwnerID, p.OwnerDisplayName, p.Title, p.Description,
		p.RepositoryURL, p.LiveURL, pq.Array(p.Technologies), string(domain.StatusPending),
	))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return created, nil
}

// FindByID returns domain.ErrNotFound for unknown or malformed ids.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select project: %w", err)
	}
	return p, nil
}

// FindByOwner lists an owner's projects, newest first.
func (r *ProjectRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the owner-editable fields. Owner, status and hours are untouched.
func (r *ProjectRepository) Update(ctx context.Context, id string, p *domain.Project) (*domain.Project, error) {
	q := `
UPDATE projects
SET title = $2, description = $3, repository_url = nullif($4, ''), live_url = nullif($5, ''),
    technologies = $6, updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns + `;`

	updated, err := scanProject(r.db.QueryRowContext(ctx, q,
		id, p.Title, p.Description, p.RepositoryURL, p.LiveURL, pq.Array(p.Technologies),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
