package identity

import (
	"context"
	"errors"

	"go.hackfix.me/todo/crypto"
	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/db/types"
	"go.hackfix.me/todo/mediator"
)

// ErrInvalidCredentials is returned when a user name or password is wrong.
var ErrInvalidCredentials = errors.New("invalid user name or password")

// Service answers identity questions using the users and roles stored in the
// database, and the authorization policies in the policy set.
type Service struct {
	d        types.Querier
	policies *PolicySet
}

var _ mediator.Identity = (*Service)(nil)

// NewService returns a new identity Service.
func NewService(d types.Querier, policies *PolicySet) *Service {
	return &Service{d: d, policies: policies}
}

// IsInRole implements mediator.Identity. Unknown users aren't in any role.
func (s *Service) IsInRole(ctx context.Context, userID, role string) (bool, error) {
	user, err := s.user(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}

	return user.HasRole(role), nil
}

// Authorize implements mediator.Identity. Unknown users don't satisfy any
// policy, and unknown policies return an UnknownPolicyError.
func (s *Service) Authorize(ctx context.Context, userID, policy string) (bool, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		user = &models.User{ID: userID}
	}

	return s.policies.Evaluate(ctx, policy, user)
}

// UserName implements mediator.Identity. It returns an empty name for unknown
// users.
func (s *Service) UserName(ctx context.Context, userID string) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil || user == nil {
		return "", err
	}

	return user.Name, nil
}

// Authenticate returns the user with the given name if password matches. It
// returns ErrInvalidCredentials if the user doesn't exist or the password is
// wrong.
func (s *Service) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user := &models.User{Name: name}
	if err := user.Load(ctx, s.d); err != nil {
		var nrErr types.NoResultError
		if errors.As(err, &nrErr) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) user(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, nil //nolint:nilnil // No user.
	}

	user := &models.User{ID: userID}
	if err := user.Load(ctx, s.d); err != nil {
		var nrErr types.NoResultError
		if errors.As(err, &nrErr) {
			return nil, nil //nolint:nilnil // Unknown user.
		}
		return nil, err
	}

	return user, nil
}
