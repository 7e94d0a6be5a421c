package auth

import "testing"

func TestPasswordIsHashedBeforeSaving(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	password := "Password@123"

	_, err := service.Register("Test User", "test@example.com", password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := repo.FindByEmail("test@example.com")
	if err != nil {
		t.Fatalf("user not saved: %v", err)
	}

	if user.Password == password {
		t.Fatalf("password was stored in plain text")
	}
}

func TestNewUsersStartAsViewer(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	user, err := service.Register("Test User", "viewer@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Role != RoleViewer {
		t.Fatalf("expected role %s, got %s", RoleViewer, user.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	if _, err := service.Register("Test User", "login@example.com", "correct-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.Login("login@example.com", "wrong-password"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := service.Login("login@example.com", "correct-password"); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
}

func TestUpdateUserRoleValidatesRole(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo)

	user, err := service.Register("Test User", "promote@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.UpdateUserRole(user.ID, "SUPERUSER"); err != ErrUnknownRole {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	if err := service.UpdateUserRole(user.ID, RoleEditor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.FindByEmail("promote@example.com")
	if stored.Role != RoleEditor {
		t.Fatalf("expected role %s, got %s", RoleEditor, stored.Role)
	}
}

func TestRolePrivilegeOrdering(t *testing.T) {
	cases := []struct {
		role     string
		required string
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleViewer, true},
		{RoleEditor, RoleAdmin, false},
		{RoleEditor, RoleEditor, true},
		{RoleViewer, RoleEditor, false},
		{RoleViewer, RoleViewer, true},
		{"BOGUS", RoleViewer, false},
	}

	for _, tc := range cases {
		if got := HasPrivilege(tc.role, tc.required); got != tc.want {
			t.Errorf("HasPrivilege(%s, %s) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}
