package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// SignupCodeChars omits I, O, 0 and 1 so handed-out codes read unambiguously.
	SignupCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	PINChars        = "0123456789"

	SignupCodeLength = 4
	PINLength        = 4
)

var ErrEmptyCharset = errors.New("charset must not be empty")

// GenerateSignupCode returns a random 4-character invitation code.
func GenerateSignupCode() (string, error) {
	return GenerateCode(SignupCodeLength, SignupCodeChars)
}

// GeneratePIN returns a random 4-digit PIN.
func GeneratePIN() (string, error) {
	return GenerateCode(PINLength, PINChars)
}

// GenerateCode returns length characters drawn uniformly from charset using crypto/rand.
func GenerateCode(length int, charset string) (string, error) {
	if charset == "" {
		return "", ErrEmptyCharset
	}
	result := make([]byte, length)
	for i := range result {
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}
	return string(result), nil
}

func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
