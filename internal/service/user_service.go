package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"usersvc/internal/domain"
	"usersvc/internal/password"
	"usersvc/internal/repository"
)

// ErrInvalidInput indicates a missing or blank required field.
var ErrInvalidInput = errors.New("invalid input")

// UserUpdate carries the plaintext-level mutable fields of a user. Only
// non-nil fields are applied. This is a deliberate allow-list: clients can
// never touch id or creation time.
type UserUpdate struct {
	Name     *string
	Password *string
}

// UserService performs user operations inside a caller-supplied transactional
// scope, hashing passwords before they ever reach the store.
type UserService interface {
	Create(ctx context.Context, tx repository.UserTx, name, plaintext string) (*domain.User, error)
	Get(ctx context.Context, tx repository.UserTx, id int64) (*domain.User, error)
	Update(ctx context.Context, tx repository.UserTx, id int64, update UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, tx repository.UserTx, id int64) (*domain.User, error)
}

type userService struct {
	hasher password.Hasher
}

func NewUserService(hasher password.Hasher) UserService {
	return &userService{hasher: hasher}
}

func (s *userService) Create(ctx context.Context, tx repository.UserTx, name, plaintext string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if plaintext == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	return tx.Create(ctx, name, hash)
}

func (s *userService) Get(ctx context.Context, tx repository.UserTx, id int64) (*domain.User, error) {
	return tx.GetByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, tx repository.UserTx, id int64, update UserUpdate) (*domain.User, error) {
	var changes repository.UserChanges

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
		}
		changes.Name = &name
	}
	if update.Password != nil {
		if *update.Password == "" {
			return nil, fmt.Errorf("%w: password must not be blank", ErrInvalidInput)
		}
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	return tx.Update(ctx, id, changes)
}

func (s *userService) Delete(ctx context.Context, tx repository.UserTx, id int64) (*domain.User, error) {
	return tx.Delete(ctx, id)
}
