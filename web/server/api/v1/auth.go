package api

import (
	"context"
	"errors"
	"fmt"

	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/mediator"
	"go.hackfix.me/todo/web/server/types"
)

func (h Handler) issueToken(ctx context.Context, req types.TokenRequest) (*types.TokenResponse, error) {
	if req.Name == "" || req.Password == "" {
		return nil, mediator.ArgumentError{Msg: "name and password are required"}
	}

	user, err := h.svc.Users.Authenticate(ctx, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.logger.Warn("failed authentication", "user_name", req.Name)
			return nil, mediator.UnauthorizedError{}
		}
		return nil, err
	}

	token, expiresAt, err := h.svc.Tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed issuing access token: %w", err)
	}

	return &types.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
