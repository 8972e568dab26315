// Package store owns persistence for the Event Board application: the
// credential store consumed by the auth core and the event/date records the
// backend manages. Backed by bun over sqlite.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ErrEmailRegistered is the distinguishable conflict surfaced when a sign-up
// races or repeats an existing email. The store never overwrites the
// existing record.
var ErrEmailRegistered = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode("EMAIL_REGISTERED").
	WithCode(errors.CodeConflict)

// ErrRecordNotFound is returned for lookups that match nothing.
var ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// Open connects to the sqlite database at dsn and returns a bun handle.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates the schema if it does not exist. Email uniqueness is a
// database constraint so concurrent sign-ups with the same email serialize
// at the store rather than in application code.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Event)(nil),
		(*EventDate)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}

	return nil
}

// Ping verifies the database is reachable, used by the health endpoint.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}

// isUniqueViolation detects the sqlite unique-constraint error. The driver
// does not expose a typed error, so this matches the message the same way
// the rest of the ecosystem does.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: users.email")
}

// isNoRows reports whether err is the database/sql empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
