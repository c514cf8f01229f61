package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/yourorg/tasktracker/internal/domain"
)

// promote grants the admin role directly through the service layer.
func promote(t *testing.T, env *testEnv, email string) int64 {
	t.Helper()
	user := env.userService.FindByEmail(email)
	if user == nil {
		t.Fatalf("no user for %s", email)
	}
	_, err := env.userService.Update(user.ID, domain.UserUpdate{
		Roles: []domain.Role{
			domain.NewRole(domain.DefaultRoleName),
			domain.NewRole(domain.AdminRoleName),
		},
	})
	if err != nil {
		t.Fatalf("promote %s: %v", email, err)
	}
	return user.ID
}

func TestListUsersRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com", "Passw0rd!")

	rec := env.do(t, http.MethodGet, "/api/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestAdminListsAndInspectsUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "Root", "root@example.com", "Passw0rd!")
	env.register(t, "Alice", "alice@example.com", "Passw0rd!")
	promote(t, env, "root@example.com")

	rec := env.do(t, http.MethodGet, "/api/users", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list users: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Users []UserResponse `json:"users"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp.Users))
	}

	alice := env.userService.FindByEmail("alice@example.com")
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user: status %d", rec.Code)
	}
	var got UserResponse
	decodeBody(t, rec, &got)
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestAdminDeletesUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "Root", "root@example.com", "Passw0rd!")
	env.register(t, "Alice", "alice@example.com", "Passw0rd!")
	adminID := promote(t, env, "root@example.com")

	alice := env.userService.FindByEmail("alice@example.com")
	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", alice.ID), admin, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete user: status %d", rec.Code)
	}
	if env.userService.FindByID(alice.ID) != nil {
		t.Fatalf("user should be gone")
	}

	// Self-deletion is refused.
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", adminID), admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self delete should be 400, got %d", rec.Code)
	}
}

func TestDemotionTakesEffectWithoutNewToken(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "Root", "root@example.com", "Passw0rd!")
	adminID := promote(t, env, "root@example.com")

	rec := env.do(t, http.MethodGet, "/api/users", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list as admin: status %d", rec.Code)
	}

	// Strip the admin role; the old token must no longer grant access.
	if _, err := env.userService.Update(adminID, domain.UserUpdate{
		Roles: []domain.Role{domain.NewRole(domain.DefaultRoleName)},
	}); err != nil {
		t.Fatalf("demote: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/api/users", admin, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demoted admin should get 403, got %d", rec.Code)
	}
}
