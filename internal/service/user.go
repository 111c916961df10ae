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

// UserService manages user accounts. Callers may only read or change their
// own account.
type UserService struct {
	repo   *repository.UserRepository
	hasher *crypto.PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.UserRepository, hasher *crypto.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, callerID string) (model.UserResponse, error) {
	user, err := s.load(ctx, callerID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// List returns the users visible to the caller, which is only the caller.
func (s *UserService) List(ctx context.Context, callerID string) ([]model.UserResponse, error) {
	me, err := s.Me(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return []model.UserResponse{me}, nil
}

// Create adds a customer account without issuing a token.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.UserResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  optional(req.DisplayName),
		Role:         model.RoleCustomer,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// Get returns the user with id if it is the caller.
func (s *UserService) Get(ctx context.Context, callerID, id string) (model.UserResponse, error) {
	if callerID != id {
		return model.UserResponse{}, ErrForbidden
	}
	return s.Me(ctx, id)
}

// Update applies a partial profile update to the caller's own account.
func (s *UserService) Update(ctx context.Context, callerID, id string, req model.UpdateUserRequest) (model.UserResponse, error) {
	if callerID != id {
		return model.UserResponse{}, ErrForbidden
	}
	if req.Empty() {
		return model.UserResponse{}, ErrEmptyUpdate
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validateRequest(req); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DisplayName != nil {
		user.DisplayName = optional(*req.DisplayName)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// Delete removes the caller's own account with its tasks and tokens.
func (s *UserService) Delete(ctx context.Context, callerID, id string) error {
	if callerID != id {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless the caller holds the admin role.
func (s *UserService) RequireAdmin(ctx context.Context, callerID string) error {
	user, err := s.load(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// EnsureAdmin creates the admin account, or promotes an existing account with
// the same email. An existing password is left unchanged.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	user, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return nil
		}
		user.Role = model.RoleAdmin
		if err := s.repo.Update(ctx, user); err != nil {
			return err
		}
		slog.Info("promoted user to admin", "user_id", user.ID)
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}

	if err := validateRequest(model.CreateUserRequest{Email: email, Password: password}); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  optional(strings.SplitN(email, "@", 2)[0]),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	slog.Info("created admin user", "user_id", admin.ID)
	return nil
}

func (s *UserService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
