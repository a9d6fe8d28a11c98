package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

// User is a stored local account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo manages local accounts.
type UserRepo interface {
	// Create inserts a new user. Emails are unique; a clash returns ErrDuplicate.
	Create(ctx context.Context, u *User) error

	// ByEmail looks up a user by email, or returns ErrNotFound.
	ByEmail(ctx context.Context, email string) (*User, error)

	// ByID looks up a user by id, or returns ErrNotFound.
	ByID(ctx context.Context, id string) (*User, error)
}

type userRepo struct {
	drv *entsql.Driver
}

type userRow struct {
	ID           string `sql:"id"`
	Email        string `sql:"email"`
	PasswordHash string `sql:"password_hash"`
	CreatedAt    int64  `sql:"created_at"`
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(UsersTable.Name).
		Columns("id", "email", "password_hash", "created_at").
		Values(u.ID, u.Email, u.PasswordHash, u.CreatedAt.Unix()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, entsql.EQ("email", email))
}

func (r *userRepo) ByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "email", "password_hash", "created_at").
		From(b.Table(UsersTable.Name)).
		Where(p).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	var recs []userRow
	if err := entsql.ScanSlice(&rows, &recs); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	rec := recs[0]
	return &User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    time.Unix(rec.CreatedAt, 0),
	}, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
