package crypto

import (
	"strings"
	"testing"
)

func TestGenerateSignupCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateSignupCode()
		if err != nil {
			t.Fatalf("GenerateSignupCode() unexpected error: %v", err)
		}
		if len(code) != SignupCodeLength {
			t.Fatalf("GenerateSignupCode() length = %d, want %d", len(code), SignupCodeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(SignupCodeChars, ch) {
				t.Errorf("code %q contains unexpected character %q", code, string(ch))
			}
		}
	}
}

func TestGeneratePIN(t *testing.T) {
	pin, err := GeneratePIN()
	if err != nil {
		t.Fatalf("GeneratePIN() unexpected error: %v", err)
	}
	if len(pin) != PINLength {
		t.Fatalf("GeneratePIN() length = %d, want %d", len(pin), PINLength)
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			t.Errorf("pin %q contains non-digit %q", pin, string(ch))
		}
	}
}

func TestGenerateCodeEmptyCharset(t *testing.T) {
	if _, err := GenerateCode(4, ""); err != ErrEmptyCharset {
		t.Errorf("GenerateCode() error = %v, want %v", err, ErrEmptyCharset)
	}
}
