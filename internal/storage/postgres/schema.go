package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// RequiredTables are the tables the API reads and writes.
var RequiredTables = []string{"users", "projects", "timer_sessions"}

var schema = []string{
	`create table if not exists users (
  id uuid primary key default gen_random_uuid(),
  external_id text not null unique,
  email text,
  display_name text,
  photo_url text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  last_login_at timestamptz
)`,
	`create table if not exists projects (
  id uuid primary key default gen_random_uuid(),
  owner_id text not null,
  owner_display_name text not null default '',
  title varchar(100) not null check (length(btrim(title)) > 0),
  description varchar(1000) not null check (length(btrim(description)) > 0),
  repository_url text,
  live_url text,
  technologies text[] not null check (cardinality(technologies) > 0),
  status text not null default 'pending' check (status in ('pending', 'approved', 'rejected')),
  total_hours double precision not null default 0,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
)`,
	`create index if not exists projects_owner_created_idx on projects (owner_id, created_at desc)`,
	`create table if not exists timer_sessions (
  id uuid primary key default gen_random_uuid(),
  owner_id text not null,
  project_id uuid not null,
  start_time timestamptz not null,
  end_time timestamptz,
  duration double precision not null default 0 check (duration >= 0),
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
)`,
	`create index if not exists timer_sessions_project_idx on timer_sessions (project_id, start_time desc)`,
	`create index if not exists timer_sessions_open_idx on timer_sessions (owner_id, start_time) where end_time is null`,
}

// EnsureSchema creates missing tables and indexes. It runs once at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type TableStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// CheckTables reports every required table. The error lists all missing
// tables and lookup failures together.
func CheckTables(ctx context.Context, db *sql.DB) ([]TableStatus, error) {
	const q = `
select exists (
  select 1 from information_schema.tables
  where table_schema = current_schema() and table_name = $1
);`

	var result *multierror.Error
	out := make([]TableStatus, 0, len(RequiredTables))
	for _, name := range RequiredTables {
		st := TableStatus{Name: name}
		if err := db.QueryRowContext(ctx, q, name).Scan(&st.Exists); err != nil {
			result = multierror.Append(result, fmt.Errorf("check table %s: %w", name, err))
		} else if !st.Exists {
			result = multierror.Append(result, fmt.Errorf("table %s is missing", name))
		}
		out = append(out, st)
	}
	return out, result.ErrorOrNil()
}
