package db

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (creating if missing) the local SQLite database file and
// verifies it is reachable. The returned *sql.DB is the shared pool for
// the whole process; callers must Close it on shutdown.
func Open(path string) (*sql.DB, error) {
	// busy_timeout keeps concurrent writers queued instead of failing
	// with SQLITE_BUSY; WAL lets readers proceed during a write.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	pool, err := sql.Open("sqlite", dsn)

	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	err = pool.PingContext(ctx)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// EnsureSchema creates the users table if it does not exist yet.
// Idempotent; runs once at startup instead of on every request.
func EnsureSchema(ctx context.Context, pool *sql.DB) error {
	_, err := pool.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT,
			email TEXT UNIQUE,
			password TEXT
		)
	`)

	return err
}
