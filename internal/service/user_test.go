package service

import (
	"errors"
	"testing"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
)

const testPassword = "correct-horse-battery-staple"

func (e *testEnv) createUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user, err := e.userService.Create(UserUpdate{
		Username: username,
		Name:     username,
		Email:    username + "@example.com",
		Role:     role,
	}, testPassword)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func TestUserDeactivateIsSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", model.RoleUser)

	deactivated, err := env.userService.Deactivate(user.ID)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if deactivated.Activated {
		t.Error("Deactivate returned an activated user")
	}

	stored, err := env.userService.User(user.ID)
	if err != nil {
		t.Fatalf("row should still exist: %v", err)
	}
	if stored.Activated {
		t.Error("stored user is still activated")
	}

	_, err = env.auth.Login("alice", testPassword)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login after deactivation = %v, want ErrInvalidCredentials", err)
	}

	_, err = env.userService.Deactivate(user.ID + 100)
	assertKind(t, err, apperror.KindNotFound)
}

func TestActiveUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.RoleUser)

	got, err := env.userService.ActiveUser("alice")
	if err != nil {
		t.Fatalf("ActiveUser: %v", err)
	}
	if got.ID != alice.ID || got.Role != model.RoleUser {
		t.Errorf("ActiveUser = %+v", got)
	}

	_, err = env.userService.ActiveUser("nobody")
	assertKind(t, err, apperror.KindNotFound)

	if _, err := env.userService.Deactivate(alice.ID); err != nil {
		t.Fatal(err)
	}
	_, err = env.userService.ActiveUser("alice")
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("ActiveUser after deactivation = %v, want ErrUserInactive", err)
	}
}

func TestUserUpdate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.RoleUser)
	env.createUser(t, "bob", model.RoleUser)

	updated, err := env.userService.Update(alice.ID, UserUpdate{
		Username: "alice",
		Name:     "Alice Kim",
		Email:    "Alice@Example.com",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != model.RoleAdmin || updated.Name != "Alice Kim" || updated.Email != "alice@example.com" {
		t.Errorf("updated user = %+v", updated)
	}
	if !updated.Activated {
		t.Error("update must not touch the activated flag")
	}

	tests := []struct {
		name  string
		id    int64
		input UserUpdate
		want  apperror.Kind
	}{
		{"unknown role", alice.ID, UserUpdate{Username: "alice", Role: "ROOT"}, apperror.KindInvalidInput},
		{"bad email", alice.ID, UserUpdate{Username: "alice", Email: "nope", Role: model.RoleUser}, apperror.KindInvalidInput},
		{"missing username", alice.ID, UserUpdate{Role: model.RoleUser}, apperror.KindInvalidInput},
		{"taken username", alice.ID, UserUpdate{Username: "bob", Role: model.RoleUser}, apperror.KindConflict},
		{"missing user", alice.ID + 100, UserUpdate{Username: "zed", Role: model.RoleUser}, apperror.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.userService.Update(tt.id, tt.input)
			assertKind(t, err, tt.want)
		})
	}
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", model.RoleUser)

	_, err := env.userService.Create(UserUpdate{Username: "alice", Role: model.RoleUser}, testPassword)
	assertKind(t, err, apperror.KindConflict)

	_, err = env.userService.Create(UserUpdate{Username: "carol", Role: model.RoleUser}, "short")
	assertKind(t, err, apperror.KindInvalidInput)
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", model.RoleAdmin)

	_, err := env.auth.Login("admin", "wrong-password-entirely")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	_, err = env.auth.Login("nobody", testPassword)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user = %v, want ErrInvalidCredentials", err)
	}

	user, err := env.auth.Login("admin", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := env.auth.GenerateJWT(user)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := env.auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims["username"] != "admin" || claims["role"] != model.RoleAdmin {
		t.Errorf("claims = %v", claims)
	}
	if id, _ := claims["user_id"].(float64); int64(id) != user.ID {
		t.Errorf("user_id claim = %v, want %d", claims["user_id"], user.ID)
	}

	_, err = env.auth.VerifyJWT(token + "x")
	assertKind(t, err, apperror.KindUnauthorized)

	other := NewAuthService(env.users, "a-different-secret-of-sufficient-length", 0)
	_, err = other.VerifyJWT(token)
	assertKind(t, err, apperror.KindUnauthorized)
}
