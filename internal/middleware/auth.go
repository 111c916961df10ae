package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID  string
	TokenID string
	Token   string
}

// ErrUnauthenticated is returned by an Authenticator when the token is not
// acceptable. Any other error is treated as an internal failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// PublicRoutes decides which requests bypass authentication. Each entry is
// either "PATH" (any method) or "METHOD PATH".
type PublicRoutes struct {
	routes []publicRoute
	prefix bool
}

type publicRoute struct {
	method string
	path   string
}

// NewPublicRoutes parses entries. With prefix set, a route also matches any
// path below it.
func NewPublicRoutes(entries []string, prefix bool) *PublicRoutes {
	p := &PublicRoutes{prefix: prefix}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		route := publicRoute{path: e}
		if method, path, found := strings.Cut(e, " "); found {
			route = publicRoute{method: strings.ToUpper(method), path: strings.TrimSpace(path)}
		}
		p.routes = append(p.routes, route)
	}
	return p
}

// Match reports whether the method and path are public.
func (p *PublicRoutes) Match(method, path string) bool {
	for _, route := range p.routes {
		if route.method != "" && route.method != method {
			continue
		}
		if path == route.path {
			return true
		}
		if p.prefix && strings.HasPrefix(path, strings.TrimSuffix(route.path, "/")+"/") {
			return true
		}
	}
	return false
}

// Gate returns middleware that requires a valid Bearer token on every request
// not matched by public.
func Gate(auth Authenticator, public *PublicRoutes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.Match(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, ErrUnauthenticated) {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if err != nil {
				slog.Error("authentication failed", "error", err, "path", r.URL.Path)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
