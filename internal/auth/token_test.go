package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func makeIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func TestPrincipalFromIDToken(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{
		"sub":   "user_42",
		"email": "learner@example.com",
		"name":  "Test Learner",
	})

	principal, err := PrincipalFromIDToken(idToken)
	if err != nil {
		t.Fatalf("PrincipalFromIDToken failed: %v", err)
	}

	if principal.ID != "user_42" {
		t.Errorf("ID = %q, expected user_42", principal.ID)
	}
	if principal.Email != "learner@example.com" {
		t.Errorf("Email = %q, expected learner@example.com", principal.Email)
	}
	if principal.Name != "Test Learner" {
		t.Errorf("Name = %q, expected Test Learner", principal.Name)
	}
}

func TestPrincipalFromIDTokenRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		idToken string
	}{
		{"not a JWT", "garbage"},
		{"missing subject", makeIDToken(t, jwt.MapClaims{"email": "a@b.c"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PrincipalFromIDToken(tt.idToken); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestManagerSignInAndToken(t *testing.T) {
	m := NewManager(time.Hour)

	// Before sign-in, the token source fails fast.
	if _, err := m.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() before sign-in = %v, expected ErrNotAuthenticated", err)
	}
	if _, ok := m.Principal(); ok {
		t.Error("Principal() reported a signed-in user before sign-in")
	}

	idToken := makeIDToken(t, jwt.MapClaims{
		"sub": "user_42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := m.SignIn(idToken)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if principal.ID != "user_42" {
		t.Errorf("SignIn principal ID = %q, expected user_42", principal.ID)
	}

	token, err := m.Token()
	if err != nil {
		t.Fatalf("Token() after sign-in failed: %v", err)
	}
	if token.AccessToken != idToken {
		t.Error("Token() does not carry the ID token as the bearer credential")
	}

	m.SignOut()
	if _, err := m.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() after sign-out = %v, expected ErrNotAuthenticated", err)
	}
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	m := NewManager(time.Hour)

	idToken := makeIDToken(t, jwt.MapClaims{
		"sub": "user_42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := m.SignIn(idToken); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if _, err := m.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() with expired credential = %v, expected ErrNotAuthenticated", err)
	}
}

func TestManagerSessions(t *testing.T) {
	m := NewManager(time.Hour)

	idToken := makeIDToken(t, jwt.MapClaims{"sub": "user_42"})
	if _, err := m.SignIn(idToken); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	id := m.CreateSession()
	if id == "" {
		t.Fatal("CreateSession returned an empty ID")
	}
	if !m.ValidateSession(id) {
		t.Error("fresh session did not validate")
	}
	if m.ValidateSession("unknown") {
		t.Error("unknown session validated")
	}

	m.DeleteSession(id)
	if m.ValidateSession(id) {
		t.Error("deleted session validated")
	}
}

func TestManagerSessionExpiry(t *testing.T) {
	m := NewManager(-time.Minute) // every session is born expired

	idToken := makeIDToken(t, jwt.MapClaims{"sub": "user_42"})
	if _, err := m.SignIn(idToken); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	id := m.CreateSession()
	if m.ValidateSession(id) {
		t.Error("expired session validated")
	}
}

func TestSignOutInvalidatesSessions(t *testing.T) {
	m := NewManager(time.Hour)

	idToken := makeIDToken(t, jwt.MapClaims{"sub": "user_42"})
	if _, err := m.SignIn(idToken); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	id := m.CreateSession()
	m.SignOut()

	if m.ValidateSession(id) {
		t.Error("session survived sign-out")
	}
}
