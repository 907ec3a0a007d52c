package repository

import (
	"context"
	"errors"

	"usersvc/internal/domain"
)

var (
	// ErrNotFound is returned when the requested user id has no row.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when a write collides with the unique name
	// constraint. Detection relies on the backing store's constraint, not an
	// application-level check-then-insert.
	ErrConflict = errors.New("user already exists")
)

// UserChanges carries the mutable fields of a user. Only non-nil fields are
// applied; PasswordHash must already be hashed by the caller.
type UserChanges struct {
	Name         *string
	PasswordHash *string
}

// UserStore owns the persisted user rows and hands out one transactional
// scope per request.
type UserStore interface {
	// Init ensures the schema exists. Called once before serving traffic.
	Init(ctx context.Context) error
	// Begin opens a new transactional scope. Scopes are independent; writes
	// are invisible to other scopes until Commit.
	Begin(ctx context.Context) (UserTx, error)
	// Close releases the underlying connection pool.
	Close()
}

// UserTx is a single unit of work. It moves from open to exactly one of
// committed or rolled back; Rollback after Commit is a no-op so a deferred
// Rollback always finalizes the scope safely.
type UserTx interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, name, passwordHash string) (*domain.User, error)
	Update(ctx context.Context, id int64, changes UserChanges) (*domain.User, error)
	// Delete removes the row and returns the pre-deletion snapshot.
	Delete(ctx context.Context, id int64) (*domain.User, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
