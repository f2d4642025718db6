package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go.hackfix.me/todo/db/models"
)

const tokenIssuer = "todo"

// InvalidTokenError is returned when an access token can't be verified.
type InvalidTokenError struct {
	Err error
}

// Error returns a string representation of the error.
func (e InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid access token: %s", e.Err)
}

// Unwrap returns the underlying error.
func (e InvalidTokenError) Unwrap() error {
	return e.Err
}

type claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 signed access tokens.
type Tokens struct {
	secret     []byte
	expiration time.Duration
	timeNow    func() time.Time
}

// NewTokens returns a new Tokens that signs with secret. Issued tokens are
// valid for expiration.
func NewTokens(secret []byte, expiration time.Duration, timeNow func() time.Time) (*Tokens, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("invalid token expiration '%s'", expiration)
	}

	return &Tokens{secret: secret, expiration: expiration, timeNow: timeNow}, nil
}

// Issue returns a signed token for the user and its expiration time.
func (t *Tokens) Issue(user *models.User) (string, time.Time, error) {
	now := t.timeNow().UTC().Truncate(time.Second)
	expiresAt := now.Add(t.expiration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:  user.Name,
		Roles: models.RoleNames(user.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token signature and validity period, and returns the ID
// of the user it was issued for.
func (t *Tokens) Verify(token string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.timeNow),
	)
	if err != nil {
		return "", InvalidTokenError{Err: err}
	}
	if c.Subject == "" {
		return "", InvalidTokenError{Err: errors.New("token has no subject")}
	}

	return c.Subject, nil
}
