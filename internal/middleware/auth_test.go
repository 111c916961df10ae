package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubAuthenticator struct {
	tokens map[string]Identity
	err    error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	if s.err != nil {
		return Identity{}, s.err
	}
	id, ok := s.tokens[token]
	if !ok {
		return Identity{}, fmt.Errorf("unknown token: %w", ErrUnauthenticated)
	}
	return id, nil
}

// echoUser writes the user ID found in the context, or "anonymous".
func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		userID = "anonymous"
	}
	w.Write([]byte(userID))
}

func TestGate(t *testing.T) {
	auth := stubAuthenticator{tokens: map[string]Identity{
		"good": {UserID: "user-1", TokenID: "tok-1", Token: "good"},
	}}
	public := NewPublicRoutes([]string{"/api/health", "POST /api/leads"}, false)
	h := Gate(auth, public)(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{name: "public path", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "public method and path", method: http.MethodPost, path: "/api/leads", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "method not public", method: http.MethodGet, path: "/api/leads", wantStatus: http.StatusUnauthorized, wantError: "missing authorization header"},
		{name: "exact match only", method: http.MethodGet, path: "/api/health/db", wantStatus: http.StatusUnauthorized, wantError: "missing authorization header"},
		{name: "missing header", method: http.MethodGet, path: "/api/tasks", wantStatus: http.StatusUnauthorized, wantError: "missing authorization header"},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/tasks", authHeader: "Basic good", wantStatus: http.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "empty token", method: http.MethodGet, path: "/api/tasks", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "no separator", method: http.MethodGet, path: "/api/tasks", authHeader: "Bearergood", wantStatus: http.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "unknown token", method: http.MethodGet, path: "/api/tasks", authHeader: "Bearer bad", wantStatus: http.StatusUnauthorized, wantError: "invalid or expired token"},
		{name: "valid token", method: http.MethodGet, path: "/api/tasks", authHeader: "Bearer good", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "lowercase scheme", method: http.MethodGet, path: "/api/tasks", authHeader: "bearer good", wantStatus: http.StatusOK, wantBody: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body["error"] != tt.wantError {
					t.Errorf("error = %q, want %q", body["error"], tt.wantError)
				}
				return
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestGateAttachesIdentity(t *testing.T) {
	want := Identity{UserID: "user-1", TokenID: "tok-1", Token: "good"}
	auth := stubAuthenticator{tokens: map[string]Identity{"good": want}}

	var got Identity
	h := Gate(auth, NewPublicRoutes(nil, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != want {
		t.Errorf("IdentityFromContext() = %+v, want %+v", got, want)
	}
}

func TestGateAuthenticatorFailure(t *testing.T) {
	auth := stubAuthenticator{err: errors.New("sql: database is closed")}
	called := false
	h := Gate(auth, NewPublicRoutes(nil, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("error = %q, want %q", body["error"], "internal server error")
	}
	if called {
		t.Error("expected handler not to run")
	}
}

func TestPublicRoutesMatch(t *testing.T) {
	entries := []string{"/api/health", " post /api/leads ", "", "/api/docs/"}

	tests := []struct {
		name   string
		prefix bool
		method string
		path   string
		want   bool
	}{
		{name: "exact", method: http.MethodGet, path: "/api/health", want: true},
		{name: "exact rejects child", method: http.MethodGet, path: "/api/health/db", want: false},
		{name: "prefix accepts child", prefix: true, method: http.MethodGet, path: "/api/health/db", want: true},
		{name: "prefix rejects sibling", prefix: true, method: http.MethodGet, path: "/api/healthz", want: false},
		{name: "method normalised", method: http.MethodPost, path: "/api/leads", want: true},
		{name: "method mismatch", method: http.MethodDelete, path: "/api/leads", want: false},
		{name: "prefix keeps method", prefix: true, method: http.MethodGet, path: "/api/leads/123", want: false},
		{name: "trailing slash prefix", prefix: true, method: http.MethodGet, path: "/api/docs/index", want: true},
		{name: "unlisted", method: http.MethodGet, path: "/api/tasks", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublicRoutes(entries, tt.prefix)
			if got := p.Match(tt.method, tt.path); got != tt.want {
				t.Errorf("Match(%s, %s) = %v, want %v", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestUserIDFromContextMissing(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("UserIDFromContext() on empty context reported ok")
	}
	ctx := WithIdentity(context.Background(), Identity{})
	if _, ok := UserIDFromContext(ctx); ok {
		t.Error("UserIDFromContext() with empty user ID reported ok")
	}
}
