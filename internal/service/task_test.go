package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/datapulse/datapulse-go/internal/model"
)

func TestTaskService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	owner := env.register(t, "owner@example.com")

	task, err := env.tasks.Create(ctx, owner.User.ID, model.CreateTaskRequest{Title: "  Write tests  "})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if task.Title != "Write tests" {
		t.Errorf("Title = %q, want trimmed", task.Title)
	}
	if task.Priority != model.PriorityMedium || task.Status != model.StatusTodo {
		t.Errorf("defaults = %s/%s, want medium/todo", task.Priority, task.Status)
	}
	if task.OwnerID != owner.User.ID {
		t.Errorf("OwnerID = %q, want %q", task.OwnerID, owner.User.ID)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, true)
	owner := env.register(t, "owner@example.com")

	tests := []struct {
		name string
		req  model.CreateTaskRequest
	}{
		{name: "blank title", req: model.CreateTaskRequest{Title: "   "}},
		{name: "bad priority", req: model.CreateTaskRequest{Title: "t", Priority: "urgent"}},
		{name: "bad status", req: model.CreateTaskRequest{Title: "t", Status: "blocked"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.Create(context.Background(), owner.User.ID, tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTaskService_OwnerScoping(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	owner := env.register(t, "owner@example.com")
	other := env.register(t, "other@example.com")

	task, err := env.tasks.Create(ctx, owner.User.ID, model.CreateTaskRequest{Title: "private"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if _, err := env.tasks.Get(ctx, other.User.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get(): expected ErrTaskNotFound, got %v", err)
	}
	if _, err := env.tasks.Update(ctx, other.User.ID, task.ID, model.UpdateTaskRequest{Title: ptr("x")}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update(): expected ErrTaskNotFound, got %v", err)
	}
	if err := env.tasks.Delete(ctx, other.User.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Delete(): expected ErrTaskNotFound, got %v", err)
	}

	list, err := env.tasks.List(ctx, other.User.ID, model.TaskFilter{})
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if list.Meta.Total != 0 {
		t.Errorf("other user's total = %d, want 0", list.Meta.Total)
	}

	if err := env.tasks.Delete(ctx, owner.User.ID, task.ID); err != nil {
		t.Errorf("Delete() unexpected error: %v", err)
	}
}

func TestTaskService_Update(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	owner := env.register(t, "owner@example.com")

	due := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	task, err := env.tasks.Create(ctx, owner.User.ID, model.CreateTaskRequest{
		Title:       "draft",
		Description: ptr("details"),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if _, err := env.tasks.Update(ctx, owner.User.ID, task.ID, model.UpdateTaskRequest{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}
	if _, err := env.tasks.Update(ctx, owner.User.ID, task.ID, model.UpdateTaskRequest{Title: ptr(" ")}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank title: expected ErrValidation, got %v", err)
	}

	var req model.UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"status":"done","description":null}`), &req); err != nil {
		t.Fatalf("unmarshal update: %v", err)
	}
	updated, err := env.tasks.Update(ctx, owner.User.ID, task.ID, req)
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.Status != model.StatusDone {
		t.Errorf("Status = %s, want done", updated.Status)
	}
	if updated.Description != nil {
		t.Errorf("Description = %q, want cleared", *updated.Description)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want unchanged %s", updated.DueDate, due)
	}
	if updated.Title != "draft" {
		t.Errorf("Title = %q, want unchanged", updated.Title)
	}

	stored, err := env.tasks.Get(ctx, owner.User.ID, task.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if stored.Status != model.StatusDone || stored.Description != nil {
		t.Errorf("stored task = %+v, want done with no description", stored)
	}
}

func TestTaskService_ListPagination(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	owner := env.register(t, "owner@example.com")

	for i := 0; i < 5; i++ {
		if _, err := env.tasks.Create(ctx, owner.User.ID, model.CreateTaskRequest{Title: "task"}); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    model.TaskFilter
		wantPage  int
		wantLimit int
		wantItems int
	}{
		{name: "defaults", filter: model.TaskFilter{}, wantPage: 1, wantLimit: DefaultTaskLimit, wantItems: 5},
		{name: "limit capped", filter: model.TaskFilter{Limit: 500}, wantPage: 1, wantLimit: MaxTaskLimit, wantItems: 5},
		{name: "second page", filter: model.TaskFilter{Page: 2, Limit: 2}, wantPage: 2, wantLimit: 2, wantItems: 2},
		{name: "past the end", filter: model.TaskFilter{Page: 4, Limit: 2}, wantPage: 4, wantLimit: 2, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.tasks.List(ctx, owner.User.ID, tt.filter)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			if got.Meta.Page != tt.wantPage || got.Meta.Limit != tt.wantLimit || got.Meta.Total != 5 {
				t.Errorf("Meta = %+v, want page %d limit %d total 5", got.Meta, tt.wantPage, tt.wantLimit)
			}
			if len(got.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(got.Items), tt.wantItems)
			}
		})
	}
}

func TestTaskService_ListValidation(t *testing.T) {
	env := newTestEnv(t, true)
	owner := env.register(t, "owner@example.com")
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	tests := []struct {
		name   string
		filter model.TaskFilter
	}{
		{name: "unknown status", filter: model.TaskFilter{Status: "archived"}},
		{name: "inverted due range", filter: model.TaskFilter{DueBefore: &early, DueAfter: &late}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.List(context.Background(), owner.User.ID, tt.filter)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}
