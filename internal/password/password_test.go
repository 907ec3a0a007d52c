package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashIsSaltedAndVerifiable(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct hashes for the same password, got %q twice", first)
	}
	if first == "1234" || strings.Contains(first, "1234") {
		t.Fatalf("hash leaks the plaintext: %q", first)
	}
	if !h.Check("1234", first) || !h.Check("1234", second) {
		t.Fatalf("both hashes should verify against the original password")
	}
}

func TestCheckRejectsWrongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h.Check("wrong horse", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestCheckMalformedHashFailsClosed(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if h.Check("1234", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash verified")
	}
	if h.Check("1234", "") {
		t.Fatalf("empty hash verified")
	}
}
