package core

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"fleetcore/pkg/domain"
)

// ErrInvalidCredentials is returned by Login when the email/password pair does
// not match the credential directory.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotAuthenticated is returned by operations that require a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

type credential struct {
	password string
	role     domain.Role
}

// DefaultCredentials returns the built-in demo directory: one account per
// role. The directory is a plain lookup table; there is no token exchange or
// server-side verification behind it.
func DefaultCredentials() map[string]Credential {
	return map[string]Credential{
		"admin@entnt.in":     {Password: "admin123", Role: domain.RoleAdmin},
		"inspector@entnt.in": {Password: "inspect123", Role: domain.RoleInspector},
		"engineer@entnt.in":  {Password: "engine123", Role: domain.RoleEngineer},
	}
}

// Credential pairs a password with the role granted on successful login.
type Credential struct {
	Password string
	Role     domain.Role
}

// SessionManager tracks the current user for one client session. It is safe
// for concurrent use.
type SessionManager struct {
	mu          sync.RWMutex
	credentials map[string]credential
	current     *domain.User
}

// NewSessionManager builds a session manager over the given credential
// directory. A nil directory uses DefaultCredentials.
func NewSessionManager(directory map[string]Credential) *SessionManager {
	if directory == nil {
		directory = DefaultCredentials()
	}
	creds := make(map[string]credential, len(directory))
	for email, c := range directory {
		creds[normalizeEmail(email)] = credential{password: c.Password, role: c.Role}
	}
	return &SessionManager{credentials: creds}
}

// Login verifies the email/password pair and installs the matching user as
// the current session identity.
func (m *SessionManager) Login(email, password string) (domain.User, error) {
	key := normalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.credentials[key]
	if !ok || subtle.ConstantTimeCompare([]byte(cred.password), []byte(password)) != 1 {
		return domain.User{}, ErrInvalidCredentials
	}
	user := domain.User{Email: key, Role: cred.role}
	m.current = &user
	return user, nil
}

// Logout clears the current session identity. Logging out while anonymous is
// a no-op.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// CurrentUser returns the logged-in user, or false when the session is
// anonymous.
func (m *SessionManager) CurrentUser() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domain.User{}, false
	}
	return *m.current, true
}

// IsAuthenticated reports whether a user is logged in.
func (m *SessionManager) IsAuthenticated() bool {
	_, ok := m.CurrentUser()
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
