package store

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store: lookup and insert, nothing else. Password
// verification lives in the auth package; this repository never sees a
// plaintext password.
type Users struct {
	db *bun.DB
}

// NewUsers returns a Users repository over db.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

type identifierOption struct {
	column string
	value  string
}

// resolveUserIdentifier maps an opaque identifier onto the columns it could
// match: a UUID hits the primary key, an email hits the unique email column.
func resolveUserIdentifier(identifier string) []identifierOption {
	identifier = strings.TrimSpace(identifier)
	options := []identifierOption{}

	if _, err := uuid.Parse(identifier); err == nil {
		options = append(options, identifierOption{column: "id", value: identifier})
	}

	if _, err := mail.ParseAddress(identifier); err == nil {
		options = append(options, identifierOption{column: "email", value: strings.ToLower(identifier)})
	}

	return options
}

// GetByIdentifier finds a user by id or email.
func (u *Users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	options := resolveUserIdentifier(identifier)
	if len(options) == 0 {
		return nil, ErrRecordNotFound
	}

	for _, opt := range options {
		record := &User{}
		err := u.db.NewSelect().
			Model(record).
			Where("?TableAlias."+opt.column+" = ?", opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if isNoRows(err) {
				continue
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
		}

		return record, nil
	}

	return nil, ErrRecordNotFound
}

// GetByID finds a user by primary key.
func (u *Users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := u.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
	}

	return record, nil
}

// Create inserts a new user. A duplicate email surfaces ErrEmailRegistered
// from the unique constraint; the existing record is left untouched.
func (u *Users) Create(ctx context.Context, record *User) (*User, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}

	if _, err := u.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailRegistered
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user insert failed")
	}

	return record, nil
}

// TrackAttemptedLogin increments the failed-attempt counter and stamps the
// attempt time.
func (u *Users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	_, err := u.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"login_attempts" = "login_attempts" + 1,
			"login_attempt_at" = ?
		WHERE "usr"."id" = ?`,
		time.Now(), user.ID.String(),
	).Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to track login attempt")
	}

	return nil
}

// TrackSuccessfulLogin resets the attempt counter and records the login time.
func (u *Users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	_, err := u.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"login_attempts" = 0,
			"login_attempt_at" = NULL,
			"loggedin_at" = ?
		WHERE "usr"."id" = ?`,
		time.Now(), user.ID.String(),
	).Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to track successful login")
	}

	return nil
}
