package application

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPIN(t *testing.T) {
	t.Parallel()

	t.Run("produces a distinct salted hash per call", func(t *testing.T) {
		t.Parallel()

		first, err := HashPIN("1234")
		if err != nil {
			t.Fatalf("HashPIN failed: %v", err)
		}
		second, err := HashPIN("1234")
		if err != nil {
			t.Fatalf("HashPIN failed: %v", err)
		}

		if first == second {
			t.Fatalf("expected distinct hashes for the same pin")
		}
		if !strings.HasPrefix(first, "$2a$") && !strings.HasPrefix(first, "$2b$") {
			t.Fatalf("expected a bcrypt hash, got %q", first)
		}
	})

	t.Run("uses cost 10", func(t *testing.T) {
		t.Parallel()

		hash, err := HashPIN("123456")
		if err != nil {
			t.Fatalf("HashPIN failed: %v", err)
		}
		cost, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("failed to read cost: %v", err)
		}
		if cost != 10 {
			t.Fatalf("expected cost 10, got %d", cost)
		}
	})
}

func TestVerifyPIN(t *testing.T) {
	t.Parallel()

	hash, err := HashPIN("4321")
	if err != nil {
		t.Fatalf("HashPIN failed: %v", err)
	}

	if !VerifyPIN("4321", hash) {
		t.Fatalf("expected matching pin to verify")
	}
	if VerifyPIN("4322", hash) {
		t.Fatalf("expected mismatched pin to fail")
	}
	if VerifyPIN("4321", "not-a-hash") {
		t.Fatalf("expected malformed hash to fail verification")
	}
}

func TestValidPINFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pin  string
		want bool
	}{
		{"1234", true},
		{"123456", true},
		{"12345", true},
		{"123", false},
		{"1234567", false},
		{"12a4", false},
		{"", false},
		{"12 34", false},
		{"１２３４", false},
	}

	for _, tc := range cases {
		if got := ValidPINFormat(tc.pin); got != tc.want {
			t.Errorf("ValidPINFormat(%q) = %v, want %v", tc.pin, got, tc.want)
		}
	}
}
