package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is enforced at registration.
const MinPasswordLen = 8

// ErrPasswordTooShort is returned by CheckPassword.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// CheckPassword applies the registration password policy.
func CheckPassword(plain string) error {
	if len(plain) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
