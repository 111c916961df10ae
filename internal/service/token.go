package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/datapulse/datapulse-go/internal/crypto"
	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/repository"
)

// TokenService issues bearer tokens and, when persistence is enabled, keeps a
// record of each so it can be listed and revoked before it expires.
type TokenService struct {
	repo    *repository.TokenRepository
	manager *crypto.TokenManager
	persist bool
	now     func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(repo *repository.TokenRepository, manager *crypto.TokenManager, persist bool) *TokenService {
	return &TokenService{
		repo:    repo,
		manager: manager,
		persist: persist,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for expiry checks on stored records.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a new token for userID and stores it when persistence is on.
func (s *TokenService) Issue(ctx context.Context, userID string) (*model.AuthToken, error) {
	issued, err := s.manager.Issue(userID)
	if err != nil {
		return nil, err
	}

	record := &model.AuthToken{
		ID:        issued.ID,
		Token:     issued.Token,
		UserID:    userID,
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if !s.persist {
		return record, nil
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Authenticate verifies token and returns the record it resolves to. With
// persistence on, the token must also still be stored, unexpired and owned by
// the user named in its claims.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*model.AuthToken, error) {
	claims, err := s.manager.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if !s.persist {
		return &model.AuthToken{
			ID:        claims.ID,
			Token:     token,
			UserID:    claims.UserID(),
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	record, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if record.UserID != claims.UserID() || record.Expired(s.now()) {
		return nil, ErrUnauthorized
	}
	return record, nil
}

// Revoke deletes the stored record for token. Revoking an unknown token is
// not an error.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if !s.persist {
		return nil
	}
	_, err := s.repo.DeleteByToken(ctx, token)
	return err
}

// List returns the user's stored tokens, newest first.
func (s *TokenService) List(ctx context.Context, userID string) ([]model.AuthTokenResponse, error) {
	tokens, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]model.AuthTokenResponse, 0, len(tokens))
	for i := range tokens {
		resp = append(resp, tokens[i].ToResponse())
	}
	return resp, nil
}

// Get returns one of the user's stored tokens.
func (s *TokenService) Get(ctx context.Context, userID, id string) (model.AuthTokenResponse, error) {
	token, err := s.repo.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return model.AuthTokenResponse{}, ErrTokenNotFound
		}
		return model.AuthTokenResponse{}, err
	}
	return token.ToResponse(), nil
}

// Delete revokes one of the user's stored tokens by ID.
func (s *TokenService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteForUser(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	return nil
}

// PurgeExpired removes stored tokens that can no longer authenticate.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	if !s.persist {
		return 0, nil
	}
	return s.repo.DeleteExpired(ctx, s.now())
}

// RunPurge calls PurgeExpired every interval until ctx is cancelled.
func (s *TokenService) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Error("purge expired tokens failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired tokens", "count", n)
			}
		}
	}
}
