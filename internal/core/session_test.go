package core

import (
	"errors"
	"testing"

	"fleetcore/pkg/domain"
)

func TestLoginLogoutRoundTrip(t *testing.T) {
	session := NewSessionManager(nil)
	if session.IsAuthenticated() {
		t.Fatal("fresh session must be anonymous")
	}

	user, err := session.Login("admin@entnt.in", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("role: %s", user.Role)
	}
	if current, ok := session.CurrentUser(); !ok || current.Email != "admin@entnt.in" {
		t.Fatalf("current user: %+v ok=%v", current, ok)
	}

	session.Logout()
	if session.IsAuthenticated() {
		t.Fatal("logout must clear the session")
	}
	session.Logout() // logging out twice is a no-op
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	session := NewSessionManager(nil)

	if _, err := session.Login("admin@entnt.in", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := session.Login("nobody@entnt.in", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
	if session.IsAuthenticated() {
		t.Fatal("failed login must not install a user")
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	session := NewSessionManager(nil)
	user, err := session.Login("  Engineer@ENTNT.in ", "engine123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "engineer@entnt.in" || user.Role != domain.RoleEngineer {
		t.Fatalf("normalized user: %+v", user)
	}
}

func TestCustomCredentialDirectory(t *testing.T) {
	session := NewSessionManager(map[string]Credential{
		"ops@example.com": {Password: "secret", Role: domain.RoleAdmin},
	})
	if _, err := session.Login("admin@entnt.in", "admin123"); err == nil {
		t.Fatal("default directory must not leak into custom one")
	}
	if _, err := session.Login("ops@example.com", "secret"); err != nil {
		t.Fatalf("custom login: %v", err)
	}
}
