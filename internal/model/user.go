package model

import "time"

// Roles a user may hold.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user in the database.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CreateUserRequest is the body of registration and user creation requests.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest carries a partial profile update; nil fields are left as is.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=128"`
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=100"`
}

// Empty reports whether the request changes nothing.
func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Password == nil && r.DisplayName == nil
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of a user; it never includes the hash.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse converts a stored user to its public view.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ListResponse wraps a list payload.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}
