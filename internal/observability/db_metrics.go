package observability

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err

}

func classifyDBErr(err error) string {
	if errors.Is(err, sql.ErrNoRows) {
		return "no_rows"
	}

	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return "unique_violation"
		case sqlite3lib.SQLITE_BUSY:
			return "busy"
		case sqlite3lib.SQLITE_LOCKED:
			return "locked"
		default:
			return "sqlite_" + strconv.Itoa(se.Code())
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "database is locked"):
		return "locked"
	default:
		return "unknown"
	}
}
