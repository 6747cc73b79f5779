package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is a person who signed in at least once.
type User struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"externalId"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	ExternalID  string
	Email       string
	DisplayName string
	PhotoURL    string
	Login       bool // stamp last_login_at
}

// EnsureUser inserts or refreshes the user and returns its row id.
// Empty fields never overwrite stored values.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.ExternalID == "" {
		return "", fmt.Errorf("external_id required")
	}

	const q = `
insert into users (external_id, email, display_name, photo_url, updated_at, last_login_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now(), case when $5 then now() end)
on conflict (external_id) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  last_login_at = coalesce(excluded.last_login_at, users.last_login_at),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRowContext(ctx, q, u.ExternalID, u.Email, u.DisplayName, u.PhotoURL, u.Login).Scan(&id); err != nil {
		return "", fmt.Errorf("ensure user: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	const q = `
select id::text, external_id, coalesce(email,''), coalesce(display_name,''), coalesce(photo_url,''),
       created_at, updated_at, last_login_at
from users
where external_id = $1;
`
	var (
		u         User
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, externalID).Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.PhotoURL,
		&u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}
