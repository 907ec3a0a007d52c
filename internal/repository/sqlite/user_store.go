package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"usersvc/internal/domain"
	"usersvc/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *UserStore) Begin(ctx context.Context) (repository.UserTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &userTx{tx: tx}, nil
}

func (s *UserStore) Close() {
	_ = s.db.Close()
}

type userTx struct {
	tx *sql.Tx
}

func (t *userTx) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, name, password_hash, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (t *userTx) Create(ctx context.Context, name, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx, `
INSERT INTO users (name, password_hash, created_at)
VALUES (?, ?, ?)`,
		name,
		passwordHash,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user last insert id: %w", err)
	}

	return &domain.User{
		ID:           id,
		Name:         name,
		PasswordHash: passwordHash,
		CreationTime: now,
	}, nil
}

func (t *userTx) Update(ctx context.Context, id int64, changes repository.UserChanges) (*domain.User, error) {
	user, err := t.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}

	if _, err := t.tx.ExecContext(ctx, `
UPDATE users
SET name = ?, password_hash = ?
WHERE id = ?`,
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
	user, err := t.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return user, nil
}

func (t *userTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *userTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
		&user.CreationTime,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
