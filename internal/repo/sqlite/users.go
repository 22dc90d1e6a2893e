package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Nikita7465/React-TS-server/internal/domain/user"
	"github.com/Nikita7465/React-TS-server/internal/observability"
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailAlreadyUsed = errors.New("email already used")

type UsersRepo struct {
	pool *sql.DB
	prom *observability.Prom
}

func NewUsersRepo(pool *sql.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRowContext(
			ctx,
			`SELECT id, username, email, password
			 FROM users
			 WHERE email = ?`,
			email,
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
		)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create appends a new user row. The UNIQUE constraint on email is the
// authoritative duplicate guard; a constraint rejection surfaces as
// ErrEmailAlreadyUsed so the handler can answer the race loser cleanly.
func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	var res sql.Result

	err := r.observe("users.create", func() error {
		var e error
		res, e = r.pool.ExecContext(
			ctx,
			`INSERT INTO users (username, email, password)
			 VALUES (?, ?, ?)`,
			username, email, passwordHash,
		)
		return e
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	id, err := res.LastInsertId()

	if err != nil {
		return user.User{}, err
	}

	return user.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite3.Error

	if errors.As(err, &se) {
		code := se.Code()

		return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT
	}

	return false
}
