// Package auth tracks the device's signed-in principal and its bearer
// credential. Identity itself is provisioned by the remote learning service;
// this package only holds the resulting ID token and hands it to the HTTP
// gateways.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"lingoclash/internal/security"
)

// ErrNotAuthenticated is returned when a remote call needs a bearer
// credential but no principal is signed in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Principal is the signed-in user: a stable identifier plus display claims
// from the ID token.
type Principal struct {
	ID    string
	Email string
	Name  string
}

type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// PrincipalFromIDToken extracts the principal from a bearer ID token. The
// signature is not verified here: the remote service validates the token on
// every call and is the only party that can act on it.
func PrincipalFromIDToken(idToken string) (Principal, error) {
	claims := &idTokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return Principal{}, fmt.Errorf("failed to parse ID token: %w", err)
	}
	if claims.Subject == "" {
		return Principal{}, errors.New("ID token has no subject claim")
	}
	return Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// Manager holds the current principal, its bearer token, and the browser
// sessions bound to it. It implements oauth2.TokenSource so gateways consume
// the credential without knowing how sign-in happened.
type Manager struct {
	mu         sync.RWMutex
	principal  *Principal
	token      *oauth2.Token
	sessions   map[string]time.Time // session ID -> expiry
	sessionTTL time.Duration
}

// NewManager creates a manager with no signed-in principal.
func NewManager(sessionTTL time.Duration) *Manager {
	return &Manager{
		sessions:   make(map[string]time.Time),
		sessionTTL: sessionTTL,
	}
}

// SignIn installs the principal encoded in the ID token as the device's
// signed-in user and returns it.
func (m *Manager) SignIn(idToken string) (Principal, error) {
	principal, err := PrincipalFromIDToken(idToken)
	if err != nil {
		return Principal{}, err
	}

	token := &oauth2.Token{AccessToken: idToken, TokenType: "Bearer"}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil && claims.ExpiresAt != nil {
		token.Expiry = claims.ExpiresAt.Time
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.principal = &principal
	m.token = token
	return principal, nil
}

// SignOut clears the principal, its token, and all browser sessions.
func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principal = nil
	m.token = nil
	m.sessions = make(map[string]time.Time)
}

// Principal returns the signed-in principal, if any.
func (m *Manager) Principal() (Principal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.principal == nil {
		return Principal{}, false
	}
	return *m.principal, true
}

// Token implements oauth2.TokenSource. It fails with ErrNotAuthenticated
// before any network attempt when no principal is signed in or the token
// has expired.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil || !m.token.Valid() {
		return nil, ErrNotAuthenticated
	}
	return m.token, nil
}

// CreateSession mints a browser session bound to the signed-in principal.
func (m *Manager) CreateSession() string {
	id := security.GenerateSessionID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = time.Now().Add(m.sessionTTL)
	return id
}

// ValidateSession reports whether a browser session is live. Expired
// sessions are removed lazily.
func (m *Manager) ValidateSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.sessions[id]
	if !ok || m.principal == nil {
		return false
	}
	if time.Now().After(expiry) {
		delete(m.sessions, id)
		return false
	}
	return true
}

// DeleteSession removes a browser session.
func (m *Manager) DeleteSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
