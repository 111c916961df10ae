package service

import (
	"context"
	"errors"
	"strings"

	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/repository"
)

// Pagination bounds for task listings.
const (
	DefaultTaskLimit = 20
	MaxTaskLimit     = 100
)

// TaskService handles task business logic. Tasks belonging to other users are
// reported as not found.
type TaskService struct {
	repo *repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create adds a task for ownerID, defaulting priority to medium and status to todo.
func (s *TaskService) Create(ctx context.Context, ownerID string, req model.CreateTaskRequest) (model.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// List returns one page of the owner's tasks. Page and limit are clamped to
// sane bounds.
func (s *TaskService) List(ctx context.Context, ownerID string, filter model.TaskFilter) (model.TaskListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return model.TaskListResponse{}, invalid("status must be one of: todo, in_progress, done")
	}
	if filter.DueBefore != nil && filter.DueAfter != nil && filter.DueBefore.Before(*filter.DueAfter) {
		return model.TaskListResponse{}, invalid("dueBefore must not be earlier than dueAfter")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit < 1:
		filter.Limit = DefaultTaskLimit
	case filter.Limit > MaxTaskLimit:
		filter.Limit = MaxTaskLimit
	}

	tasks, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return model.TaskListResponse{}, err
	}

	return model.TaskListResponse{
		Items: tasks,
		Meta:  model.PageMeta{Page: filter.Page, Limit: filter.Limit, Total: total},
	}, nil
}

// Get returns a single task owned by ownerID.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (model.Task, error) {
	task, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return model.Task{}, mapTaskErr(err)
	}
	return *task, nil
}

// Update applies a partial update to a task owned by ownerID.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, req model.UpdateTaskRequest) (model.Task, error) {
	if req.Empty() {
		return model.Task{}, ErrEmptyUpdate
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return model.Task{}, invalid("title must not be empty")
		}
		req.Title = &title
	}
	if err := validateRequest(req); err != nil {
		return model.Task{}, err
	}
	if req.Description.Valid && len(req.Description.Value) > 2000 {
		return model.Task{}, invalid("description must be at most 2000 characters")
	}

	task, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return model.Task{}, mapTaskErr(err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description.Set {
		task.Description = req.Description.Ptr()
	}
	if req.DueDate.Set {
		task.DueDate = req.DueDate.Ptr()
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return model.Task{}, mapTaskErr(err)
	}
	return *task, nil
}

// Delete removes a task owned by ownerID.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	return mapTaskErr(s.repo.DeleteForOwner(ctx, ownerID, id))
}

func mapTaskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}
