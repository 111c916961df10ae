package service

import (
	"context"
	"errors"
	"testing"

	"github.com/datapulse/datapulse-go/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestUserService_SelfOnly(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	if _, err := env.users.Get(ctx, alice.User.ID, bob.User.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() other user: expected ErrForbidden, got %v", err)
	}
	if _, err := env.users.Update(ctx, alice.User.ID, bob.User.ID, model.UpdateUserRequest{DisplayName: ptr("x")}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update() other user: expected ErrForbidden, got %v", err)
	}
	if err := env.users.Delete(ctx, alice.User.ID, bob.User.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete() other user: expected ErrForbidden, got %v", err)
	}

	list, err := env.users.List(ctx, alice.User.ID)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != alice.User.ID {
		t.Errorf("List() = %+v, want only the caller", list)
	}
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	env.register(t, "bob@example.com")

	if _, err := env.users.Update(ctx, alice.User.ID, alice.User.ID, model.UpdateUserRequest{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}
	if _, err := env.users.Update(ctx, alice.User.ID, alice.User.ID, model.UpdateUserRequest{Email: ptr("nope")}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := env.users.Update(ctx, alice.User.ID, alice.User.ID, model.UpdateUserRequest{Email: ptr("BOB@example.com")}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	updated, err := env.users.Update(ctx, alice.User.ID, alice.User.ID, model.UpdateUserRequest{
		DisplayName: ptr("Alice"),
		Password:    ptr("new-password-1"),
	})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Alice" {
		t.Errorf("DisplayName = %v, want Alice", updated.DisplayName)
	}

	if _, err := env.auth.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := env.auth.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "new-password-1"}); err != nil {
		t.Errorf("new password Login() unexpected error: %v", err)
	}
}

func TestUserService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")

	if _, err := env.tasks.Create(ctx, alice.User.ID, model.CreateTaskRequest{Title: "one"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if err := env.users.Delete(ctx, alice.User.ID, alice.User.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	if _, err := env.tokens.Authenticate(ctx, alice.Token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("token after delete: expected ErrUnauthorized, got %v", err)
	}
	var tasks int
	if err := env.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&tasks); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if tasks != 0 {
		t.Errorf("tasks after delete = %d, want 0", tasks)
	}
	if _, err := env.users.Me(ctx, alice.User.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Me() after delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	created, err := env.users.Create(ctx, model.CreateUserRequest{Email: "new@example.com", Password: "password123", DisplayName: "  "})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if created.DisplayName != nil {
		t.Errorf("blank DisplayName stored as %q, want nil", *created.DisplayName)
	}

	if _, err := env.users.Create(ctx, model.CreateUserRequest{Email: "new@example.com", Password: "password123"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	if err := env.users.EnsureAdmin(ctx, "admin@datapulse.com", "admin-password"); err != nil {
		t.Fatalf("EnsureAdmin() unexpected error: %v", err)
	}
	if err := env.users.EnsureAdmin(ctx, "admin@datapulse.com", "ignored-password"); err != nil {
		t.Fatalf("second EnsureAdmin() unexpected error: %v", err)
	}

	admin, err := env.auth.Login(ctx, model.LoginRequest{Email: "admin@datapulse.com", Password: "admin-password"})
	if err != nil {
		t.Fatalf("admin Login() unexpected error: %v", err)
	}
	if admin.User.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", admin.User.Role, model.RoleAdmin)
	}
	if err := env.users.RequireAdmin(ctx, admin.User.ID); err != nil {
		t.Errorf("RequireAdmin(admin) unexpected error: %v", err)
	}

	customer := env.register(t, "customer@example.com")
	if err := env.users.RequireAdmin(ctx, customer.User.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireAdmin(customer): expected ErrForbidden, got %v", err)
	}

	if err := env.users.EnsureAdmin(ctx, "customer@example.com", "whatever-password"); err != nil {
		t.Fatalf("EnsureAdmin(existing) unexpected error: %v", err)
	}
	if err := env.users.RequireAdmin(ctx, customer.User.ID); err != nil {
		t.Errorf("RequireAdmin(promoted) unexpected error: %v", err)
	}
}
