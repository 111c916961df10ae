package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashFormat(t *testing.T) {
	hash, err := NewPasswordHasher(DefaultHashParams()).Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[2] != "v=19" {
		t.Errorf("version = %q, want %q", parts[2], "v=19")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
}

func TestHashSalted(t *testing.T) {
	h := NewPasswordHasher(DefaultHashParams())
	first, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	second, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	if first == second {
		t.Error("Hash() produced identical hashes for the same input")
	}
}

func TestCompare(t *testing.T) {
	h := NewPasswordHasher(DefaultHashParams())
	hash, err := h.Hash("my-secure-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct", password: "my-secure-password", want: true},
		{name: "wrong", password: "not-my-password", want: false},
		{name: "empty", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Compare(tt.password, hash)
			if err != nil {
				t.Fatalf("Compare() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() unexpected error: %v", err)
	}

	h := NewPasswordHasher(DefaultHashParams())
	if !h.Verify("admin123", string(legacy)) {
		t.Error("Verify() = false for matching bcrypt hash")
	}
	if h.Verify("admin124", string(legacy)) {
		t.Error("Verify() = true for mismatching bcrypt hash")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher(DefaultHashParams())

	for _, encoded := range []string{
		"",
		"invalid-hash-format",
		"$argon2id$v=19$m=65536,t=3,p=2$$",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$2b$10$short",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=4294967295,t=3,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=65536,t=100000,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
	} {
		if h.Verify("password", encoded) {
			t.Errorf("Verify() = true for malformed hash %q", encoded)
		}
		if _, err := h.Compare("password", encoded); err == nil {
			t.Errorf("Compare() expected error for malformed hash %q", encoded)
		}
	}
}
