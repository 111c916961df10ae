package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/service"
)

// TokenHandler handles HTTP requests for the caller's bearer tokens.
type TokenHandler struct {
	tokens *service.TokenService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// HandleList handles GET /api/auth-tokens requests.
func (h *TokenHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tokens, err := h.tokens.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse[model.AuthTokenResponse]{Items: tokens})
}

// HandleCreate handles POST /api/auth-tokens requests.
func (h *TokenHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	token, err := h.tokens.Issue(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, token.ToResponse())
}

// HandleGet handles GET /api/auth-tokens/{id} requests.
func (h *TokenHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	token, err := h.tokens.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// HandleDelete handles DELETE /api/auth-tokens/{id} requests.
func (h *TokenHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.tokens.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("token revoked"))
}
