package model

import (
	"encoding/json"
	"testing"
)

func TestUpdateTaskRequestNullable(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantEmpty bool
	}{
		{"absent", `{}`, false, false, true},
		{"null", `{"description":null}`, true, false, false},
		{"value", `{"description":"notes"}`, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if req.Description.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.Description.Set, tt.wantSet)
			}
			if req.Description.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", req.Description.Valid, tt.wantValid)
			}
			if req.Empty() != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", req.Empty(), tt.wantEmpty)
			}
			if tt.wantValid && *req.Description.Ptr() != "notes" {
				t.Errorf("expected notes, got %q", *req.Description.Ptr())
			}
			if !tt.wantValid && req.Description.Ptr() != nil {
				t.Error("expected nil pointer for null or absent value")
			}
		})
	}
}

func TestNullableRejectsWrongType(t *testing.T) {
	var req UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"dueDate":"not-a-date"}`), &req); err == nil {
		t.Error("expected error for malformed dueDate")
	}
}

func TestTaskFilterOffset(t *testing.T) {
	f := TaskFilter{Page: 3, Limit: 20}
	if got := f.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}
