package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password doesn't match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// MinPasswordLength is the minimum number of bytes a password must have.
const MinPasswordLength = 8

// RandomData returns a slice of the specified size containing random data.
func RandomData(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.New("size cannot be negative")
	}

	data := make([]byte, size)
	_, err := rand.Read(data)
	if err != nil {
		return nil, fmt.Errorf("failed generating random data: %w", err)
	}

	return data, nil
}

// NewSecret returns size bytes of random data encoded as a base58 string.
func NewSecret(size int) (string, error) {
	data, err := RandomData(size)
	if err != nil {
		return "", err
	}

	return base58.Encode(data), nil
}

// DecodeSecret decodes a secret created by NewSecret.
func DecodeSecret(secret string) ([]byte, error) {
	data, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("failed decoding secret: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("secret is empty")
	}

	return data, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed hashing password: %w", err)
	}

	return hash, nil
}

// ComparePassword checks password against a hash created by HashPassword. It
// returns ErrPasswordMismatch if they don't match.
func ComparePassword(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed comparing password: %w", err)
	}

	return nil
}
