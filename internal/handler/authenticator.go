package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/datapulse/datapulse-go/internal/middleware"
	"github.com/datapulse/datapulse-go/internal/service"
)

// TokenAuthenticator adapts TokenService to the request gate.
type TokenAuthenticator struct {
	tokens *service.TokenService
}

// NewTokenAuthenticator creates a new TokenAuthenticator.
func NewTokenAuthenticator(tokens *service.TokenService) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (middleware.Identity, error) {
	record, err := a.tokens.Authenticate(ctx, token)
	if errors.Is(err, service.ErrUnauthorized) {
		return middleware.Identity{}, middleware.ErrUnauthenticated
	}
	if err != nil {
		return middleware.Identity{}, fmt.Errorf("token lookup: %w", err)
	}

	return middleware.Identity{
		UserID:  record.UserID,
		TokenID: record.ID,
		Token:   token,
	}, nil
}
