package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, on request, uptime and version.
type HealthHandler struct {
	db      Pinger
	version string
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, started: time.Now()}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds *int64 `json:"uptime_seconds,omitempty"`
	Version       string `json:"version,omitempty"`
	Database      string `json:"database,omitempty"`
}

// HandleHealth handles GET /api/health requests. With ?full=true it also
// reports uptime, version and database reachability.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("full") != "true" {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	uptime := int64(time.Since(h.started).Seconds())
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: &uptime,
		Version:       h.version,
		Database:      "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
