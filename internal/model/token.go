package model

import "time"

// AuthToken is a persisted bearer token. Deleting the row revokes the token
// even if its signature is still within the validity window.
type AuthToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t *AuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// AuthTokenResponse is the API view of a persisted token.
type AuthTokenResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *AuthToken) ToResponse() AuthTokenResponse {
	return AuthTokenResponse{
		ID:        t.ID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}
