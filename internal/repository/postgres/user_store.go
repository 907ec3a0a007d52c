package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"usersvc/internal/domain"
	"usersvc/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *UserStore) Begin(ctx context.Context) (repository.UserTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &userTx{tx: tx}, nil
}

func (s *UserStore) Close() {
	s.pool.Close()
}

type userTx struct {
	tx pgx.Tx
}

func (t *userTx) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return t.get(ctx, id, false)
}

// get reads one row; forUpdate takes the row lock so concurrent mutations of
// the same user serialize on the database.
func (t *userTx) get(ctx context.Context, id int64, forUpdate bool) (*domain.User, error) {
	q := `
SELECT id, name, password_hash, created_at
FROM users
WHERE id = $1`
	if forUpdate {
		q += `
FOR UPDATE`
	}

	var user domain.User
	err := t.tx.QueryRow(ctx, q, id).Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
		&user.CreationTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (t *userTx) Create(ctx context.Context, name, passwordHash string) (*domain.User, error) {
	user := domain.User{
		Name:         name,
		PasswordHash: passwordHash,
	}
	err := t.tx.QueryRow(ctx, `
INSERT INTO users (name, password_hash)
VALUES ($1, $2)
RETURNING id, created_at`,
		name,
		passwordHash,
	).Scan(&user.ID, &user.CreationTime)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (t *userTx) Update(ctx context.Context, id int64, changes repository.UserChanges) (*domain.User, error) {
	user, err := t.get(ctx, id, true)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}

	if _, err := t.tx.Exec(ctx, `
UPDATE users
SET name = $1, password_hash = $2
WHERE id = $3`,
		user.Name,
		user.PasswordHash,
		id,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func (t *userTx) Delete(ctx context.Context, id int64) (*domain.User, error) {
	user, err := t.get(ctx, id, true)
	if err != nil {
		return nil, err
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return user, nil
}

func (t *userTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *userTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
