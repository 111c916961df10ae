package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/datapulse/datapulse-go/internal/middleware"
	"github.com/datapulse/datapulse-go/internal/ratelimit"
	"github.com/datapulse/datapulse-go/internal/service"
)

// RouterConfig collects everything the HTTP layer depends on.
type RouterConfig struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Tasks  *service.TaskService
	Tokens *service.TokenService
	Leads  *service.LeadService

	DB      Pinger
	Version string

	PublicRoutes *middleware.PublicRoutes
	LeadLimiter  ratelimit.Limiter
	// AuthThrottle wraps login and registration; nil disables it.
	AuthThrottle func(http.Handler) http.Handler
}

// NewRouter wires the API routes behind the request gate.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Users)
	userHandler := NewUserHandler(cfg.Users)
	taskHandler := NewTaskHandler(cfg.Tasks)
	tokenHandler := NewTokenHandler(cfg.Tokens)
	leadHandler := NewLeadHandler(cfg.Leads, cfg.Users)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Version)

	throttle := cfg.AuthThrottle
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Gate(NewTokenAuthenticator(cfg.Tokens), cfg.PublicRoutes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.With(throttle).Post("/register", authHandler.HandleRegister)
			r.With(throttle).Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.HandleList)
			r.Post("/", userHandler.HandleCreate)
			r.Get("/me", userHandler.HandleMe)
			r.Get("/{id}", userHandler.HandleGet)
			r.Put("/{id}", userHandler.HandleUpdate)
			r.Delete("/{id}", userHandler.HandleDelete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.HandleList)
			r.Post("/", taskHandler.HandleCreate)
			r.Get("/{id}", taskHandler.HandleGet)
			r.Put("/{id}", taskHandler.HandleUpdate)
			r.Delete("/{id}", taskHandler.HandleDelete)
		})

		r.Route("/auth-tokens", func(r chi.Router) {
			r.Get("/", tokenHandler.HandleList)
			r.Post("/", tokenHandler.HandleCreate)
			r.Get("/{id}", tokenHandler.HandleGet)
			r.Delete("/{id}", tokenHandler.HandleDelete)
		})

		r.Route("/leads", func(r chi.Router) {
			r.With(middleware.FixedWindow(cfg.LeadLimiter, middleware.ClientKey)).Post("/", leadHandler.HandleCreate)
			r.Get("/", leadHandler.HandleList)
			r.Get("/{id}", leadHandler.HandleGet)
			r.Delete("/{id}", leadHandler.HandleDelete)
		})

		r.Get("/dashboard/summary", leadHandler.HandleSummary)
	})

	return r
}
