package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"lingoclash/internal/auth"
	"lingoclash/internal/events"
	"lingoclash/internal/models"
	"lingoclash/internal/security"
	"lingoclash/internal/service"
)

// SessionHandler signs the device's principal in and out. Sign-in also runs
// the XP reconciliation, the one well-defined lifecycle point where local
// and remote progress merge before any quiz flow can begin.
type SessionHandler struct {
	auth       *auth.Manager
	engine     *service.XPService
	bus        *events.Bus
	sessionTTL time.Duration
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authManager *auth.Manager, engine *service.XPService, bus *events.Bus, sessionTTL time.Duration) *SessionHandler {
	return &SessionHandler{auth: authManager, engine: engine, bus: bus, sessionTTL: sessionTTL}
}

type signInRequest struct {
	IDToken string `json:"idToken"`
}

type signInResponse struct {
	Principal principalView      `json:"principal"`
	Sync      *models.SyncResult `json:"sync,omitempty"`
	SyncError string             `json:"syncError,omitempty"`
}

type principalView struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// SignIn installs the ID token as the device credential, creates a browser
// session, and reconciles XP. A sync failure does not fail the sign-in but
// is reported in the response so it stays observable.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "Failed to decode sign-in request", err)
		return
	}

	principal, err := h.auth.SignIn(req.IDToken)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid ID token", "Sign-in rejected", err)
		return
	}

	sessionID := h.auth.CreateSession()
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, sessionID, time.Now().Add(h.sessionTTL)))

	resp := signInResponse{
		Principal: principalView{ID: principal.ID, Email: principal.Email, Name: principal.Name},
	}

	result, err := h.engine.Reconcile(r.Context())
	if err != nil {
		log.Printf("Sign-in sync failed for %s: %v", principal.ID, err)
		resp.SyncError = "sync failed"
	} else {
		publishSyncResult(h.bus, result)
		resp.Sync = &result
	}

	respondJSON(w, http.StatusOK, resp)
}

// SignOut clears the device credential and all browser sessions.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.auth.SignOut()
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusNoContent, nil)
}
