package model

import (
	"bytes"
	"encoding/json"
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"ownerId"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	DueDate     *time.Time   `json:"dueDate"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time   `json:"dueDate"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      TaskStatus   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
}

// UpdateTaskRequest is a partial update. Description and DueDate may be set
// to null to clear them.
type UpdateTaskRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description Nullable[string]    `json:"description"`
	DueDate     Nullable[time.Time] `json:"dueDate"`
	Priority    *TaskPriority       `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *TaskStatus         `json:"status" validate:"omitempty,oneof=todo in_progress done"`
}

// Empty reports whether the request changes nothing.
func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && !r.Description.Set && !r.DueDate.Set && r.Priority == nil && r.Status == nil
}

// TaskFilter narrows a task listing. Zero values mean no constraint.
type TaskFilter struct {
	Status    TaskStatus
	DueBefore *time.Time
	DueAfter  *time.Time
	Search    string
	Page      int
	Limit     int
}

// Offset returns the number of rows skipped for the current page.
func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type TaskListResponse struct {
	Items []Task   `json:"items"`
	Meta  PageMeta `json:"meta"`
}

type TaskResponse struct {
	Task Task `json:"task"`
}

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value as a pointer, or nil when null.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
