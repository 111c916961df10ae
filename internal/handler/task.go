package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/service"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList handles GET /api/tasks requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, msg := parseTaskFilter(r.URL.Query())
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse(msg))
		return
	}

	resp, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.TaskResponse{Task: task})
}

// HandleGet handles GET /api/tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TaskResponse{Task: task})
}

// HandleUpdate handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TaskResponse{Task: task})
}

// HandleDelete handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("task deleted"))
}

// parseTaskFilter reads listing options from the query string. It returns a
// non-empty message when a parameter is malformed.
func parseTaskFilter(q url.Values) (model.TaskFilter, string) {
	var filter model.TaskFilter

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, "page must be a positive integer"
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, "limit must be a positive integer"
		}
		filter.Limit = limit
	}

	filter.Status = model.TaskStatus(q.Get("status"))
	filter.Search = q.Get("search")

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"dueBefore", &filter.DueBefore},
		{"dueAfter", &filter.DueAfter},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, ok := parseDate(v)
		if !ok {
			return filter, p.name + " must be an RFC 3339 date"
		}
		*p.dst = &t
	}

	return filter, ""
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
