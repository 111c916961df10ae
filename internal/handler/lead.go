package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/service"
)

// LeadHandler handles lead capture and the admin views over captured leads.
type LeadHandler struct {
	leads *service.LeadService
	users *service.UserService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leads *service.LeadService, users *service.UserService) *LeadHandler {
	return &LeadHandler{leads: leads, users: users}
}

// HandleCreate handles POST /api/leads requests.
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.leads.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateLeadResponse{ID: lead.ID, Status: "created", Lead: lead})
}

// HandleList handles GET /api/leads requests.
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	leads, err := h.leads.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse[model.LeadResponse]{Items: leads})
}

// HandleGet handles GET /api/leads/{id} requests.
func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	lead, err := h.leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// HandleDelete handles DELETE /api/leads/{id} requests.
func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.leads.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// HandleSummary handles GET /api/dashboard/summary requests.
func (h *LeadHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	summary, err := h.leads.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *LeadHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := requireUser(w, r)
	if !ok {
		return false
	}
	if err := h.users.RequireAdmin(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return false
	}
	return true
}
