package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/datapulse/datapulse-go/internal/crypto"
	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/repository"
)

// AuthService handles registration, login and logout.
type AuthService struct {
	users  *repository.UserRepository
	tokens *TokenService
	hasher *crypto.PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserRepository, tokens *TokenService, hasher *crypto.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// Register creates a new customer account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  optional(req.DisplayName),
		Role:         model.RoleCustomer,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	resp, err := s.session(ctx, user)
	if err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			slog.Error("failed to remove user after token error", "user_id", user.ID, "error", delErr)
		}
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.session(ctx, user)
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *AuthService) session(ctx context.Context, user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      user.ToResponse(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optional returns nil for blank strings.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
