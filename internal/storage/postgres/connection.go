package postgres

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// NewConnection exposes the application pool as a *sql.DB for the repositories.
// Closing the returned DB does not close the pool.
func NewConnection(pool *pgxpool.Pool) *sql.DB {
	db := stdlib.OpenDBFromPool(pool)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db
}
