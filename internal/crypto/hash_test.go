package crypto

import (
	"strings"
	"testing"
)

func TestHashPINFormat(t *testing.T) {
	hash, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN() unexpected error: %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("HashPIN() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("HashPIN() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[3] != "m=19456,t=2,p=1" {
		t.Errorf("HashPIN() params = %q, want %q", parts[3], "m=19456,t=2,p=1")
	}
}

func TestVerifyPIN(t *testing.T) {
	hash, err := HashPIN("4821")
	if err != nil {
		t.Fatalf("HashPIN() unexpected error: %v", err)
	}

	tests := []struct {
		pin  string
		want bool
	}{
		{pin: "4821", want: true},
		{pin: "4822", want: false},
		{pin: "", want: false},
	}

	for _, tt := range tests {
		got, err := VerifyPIN(tt.pin, hash)
		if err != nil {
			t.Fatalf("VerifyPIN(%q) unexpected error: %v", tt.pin, err)
		}
		if got != tt.want {
			t.Errorf("VerifyPIN(%q) = %v, want %v", tt.pin, got, tt.want)
		}
	}
}

func TestHashPINSalted(t *testing.T) {
	h1, _ := HashPIN("0000")
	h2, _ := HashPIN("0000")
	if h1 == h2 {
		t.Error("HashPIN() produced identical hashes for same PIN (salt should differ)")
	}
}

func TestVerifyPINInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want error
	}{
		{name: "garbage", hash: "invalid-hash-format", want: ErrInvalidHashFormat},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidHashFormat},
		{name: "wrong version", hash: "$argon2id$v=16$m=1,t=1,p=1$c2FsdA$aGFzaA", want: ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPIN("1234", tt.hash); err != tt.want {
				t.Errorf("VerifyPIN() error = %v, want %v", err, tt.want)
			}
		})
	}
}
