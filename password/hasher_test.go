package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "Abcdef12" {
		t.Fatal("hash must not equal plaintext")
	}
	if strings.Contains(hash, "Abcdef12") {
		t.Fatal("hash must not embed plaintext")
	}
	if !h.Verify("Abcdef12", hash) {
		t.Fatal("Verify rejected correct password")
	}
	if h.Verify("Abcdef13", hash) {
		t.Fatal("Verify accepted wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of one password must differ")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	for _, stored := range []string{"", "not-a-hash", "$2a$broken"} {
		if h.Verify("Abcdef12", stored) {
			t.Fatalf("Verify accepted malformed hash %q", stored)
		}
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h := newTestHasher(t)

	if _, err := h.Hash(""); err == nil {
		t.Fatal("Hash accepted empty password")
	}
}

func TestNewHasherCostBounds(t *testing.T) {
	if _, err := NewHasher(Config{Cost: bcrypt.MaxCost + 1}); err == nil {
		t.Fatal("NewHasher accepted cost above maximum")
	}
	h, err := NewHasher(Config{})
	if err != nil {
		t.Fatalf("NewHasher rejected zero cost: %v", err)
	}
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("zero cost should default, got %d", h.cost)
	}
}
