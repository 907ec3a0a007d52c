package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"usersvc/internal/password"
	"usersvc/internal/repository"
	"usersvc/internal/repository/sqlite"
)

func newTestService(t *testing.T) (UserService, repository.UserStore, password.Hasher) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := sqlite.NewUserStore(db)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	return NewUserService(hasher), store, hasher
}

func TestCreateStoresHashNotPlaintext(t *testing.T) {
	svc, store, hasher := newTestService(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	user, err := svc.Create(ctx, tx, "user_6", "1234")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if user.PasswordHash == "1234" {
		t.Fatalf("plaintext stored as hash")
	}
	if !hasher.Check("1234", user.PasswordHash) {
		t.Fatalf("stored hash does not verify against the password")
	}
}

func TestCreateRejectsBlankFields(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := svc.Create(ctx, tx, "  ", "1234"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, tx, "user_6", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
}

func TestUpdateRehashesPasswordAndKeepsName(t *testing.T) {
	svc, store, hasher := newTestService(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	created, err := svc.Create(ctx, tx, "user_6", "1234")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	newPassword := "5678"
	tx, err = store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	updated, err := svc.Update(ctx, tx, created.ID, UserUpdate{Password: &newPassword})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if updated.Name != "user_6" {
		t.Fatalf("password update changed name: %+v", updated)
	}
	if updated.PasswordHash == created.PasswordHash {
		t.Fatalf("password update left the hash unchanged")
	}
	if !hasher.Check("5678", updated.PasswordHash) {
		t.Fatalf("new hash does not verify against new password")
	}
	if hasher.Check("1234", updated.PasswordHash) {
		t.Fatalf("old password still verifies after update")
	}
}

func TestUpdateNameOnlyKeepsHash(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	created, err := svc.Create(ctx, tx, "user_6", "1234")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	newName := "user_7"
	tx, err = store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	updated, err := svc.Update(ctx, tx, created.ID, UserUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if updated.Name != "user_7" || updated.PasswordHash != created.PasswordHash {
		t.Fatalf("name-only update touched the hash: %+v", updated)
	}
}
